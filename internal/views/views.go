// Package views holds the editable surfaces shown to the user: two plain
// text panes and the rich final document.
package views

import (
	"unicode/utf16"

	"github.com/alkime/audioscribe/internal/document"
)

// Selection is a half-open range of rune offsets into a view's content.
type Selection = document.Selection

// Editable is what every view exposes to its owner.
type Editable interface {
	Content() string
	// SetContent applies a user edit and reports it through OnChange.
	SetContent(content string)
	OnChange(fn func(content string))
}

// runeSlice returns content[sel.Start:sel.End] in runes, clamped to the
// content bounds.
func runeSlice(content string, sel Selection) string {
	rs := []rune(content)
	start := min(max(sel.Start, 0), len(rs))
	end := min(max(sel.End, start), len(rs))

	return string(rs[start:end])
}

// SelectionFromUTF16 converts offsets counted in UTF-16 code units, as
// browsers report them, to a rune Selection over content. An offset inside
// a surrogate pair maps to the start of that rune.
func SelectionFromUTF16(content string, start, end int) Selection {
	return Selection{Start: utf16ToRune(content, start), End: utf16ToRune(content, end)}
}

func utf16ToRune(content string, offset int) int {
	if offset <= 0 {
		return 0
	}

	units, runes := 0, 0
	for _, r := range content {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > offset {
			return runes
		}
		units += n
		runes++
	}

	return runes
}
