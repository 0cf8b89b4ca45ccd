package labeledspinner_test

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/alkime/audioscribe/internal/tui/components/labeledspinner"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLabeledSpinner(t *testing.T) {
	m := labeledspinner.New(spinner.Dot, "Analyzing audio file...", "talk.mp3", "Processing Audio...")
	t.Run("initial state", func(t *testing.T) {
		assert.Equal(t, "Analyzing audio file...", m.Title)
		assert.Equal(t, "talk.mp3", m.Subtitle)
		assert.Equal(t, spinner.Dot, m.Spinner.Spinner)
		assert.Zero(t, m.Elapsed())
	})

	v0 := m.View()
	t.Run("view output", func(t *testing.T) {
		assert.Contains(t, v0, "Analyzing audio file...")
		assert.Contains(t, v0, "talk.mp3")
		assert.Contains(t, v0, "Processing Audio...")
		assert.NotContains(t, v0, "(")
		assert.Contains(t, v0, spinner.Dot.Frames[0])
	})

	t.Run("check updates", func(t *testing.T) {
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[1])
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[2])
	})
}

func TestLabeledSpinner_Elapsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := labeledspinner.New(spinner.Line, "Working", "", "Please wait").
		WithClock(func() time.Time { return now }).
		Start()

	now = now.Add(12*time.Second + 300*time.Millisecond)

	assert.Equal(t, 12*time.Second, m.Elapsed())
	assert.Contains(t, m.View(), "Please wait (12s)")
}
