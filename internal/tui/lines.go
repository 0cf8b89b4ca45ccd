package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/alkime/audioscribe/internal/views"
)

// lineRange returns the rune selection covering lines from..to inclusive.
// Offsets match the text the views index into, where lines are joined by a
// single newline.
func lineRange(text string, from, to int) views.Selection {
	if from > to {
		from, to = to, from
	}

	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return views.Selection{}
	}
	from = max(from, 0)
	to = min(to, len(lines)-1)

	start := 0
	for i := range from {
		start += utf8.RuneCountInString(lines[i]) + 1
	}

	end := start
	for i := from; i <= to; i++ {
		end += utf8.RuneCountInString(lines[i])
		if i < to {
			end++
		}
	}

	return views.Selection{Start: start, End: end}
}

func lineCount(text string) int {
	return strings.Count(text, "\n") + 1
}
