// Package labeledspinner shows a spinner with a title, subtitle and a help
// line that reports how long the wait has lasted.
package labeledspinner

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/audioscribe/internal/tui/style"
)

// Model displays a spinner with title, subtitle, and help text.
type Model struct {
	Spinner  spinner.Model
	Title    string
	Subtitle string
	Help     string

	started time.Time
	now     func() time.Time
}

// New creates a new labeled spinner with the given configuration.
func New(s spinner.Spinner, title, subtitle, help string) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{
		Spinner:  sp,
		Title:    title,
		Subtitle: subtitle,
		Help:     help,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (ls Model) WithClock(now func() time.Time) Model {
	ls.now = now
	return ls
}

// Start resets the elapsed timer.
func (ls Model) Start() Model {
	ls.started = ls.now()
	return ls
}

// Elapsed is the time since Start, rounded to seconds. Zero before Start.
func (ls Model) Elapsed() time.Duration {
	if ls.started.IsZero() {
		return 0
	}

	return ls.now().Sub(ls.started).Round(time.Second)
}

// Init returns the initial command for the spinner.
func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Update handles spinner tick messages.
func (ls Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if tickMsg, ok := teaMsg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		ls.Spinner, cmd = ls.Spinner.Update(tickMsg)

		return ls, cmd
	}

	return ls, nil
}

// View renders the labeled spinner. Once started, the help line carries
// the elapsed time.
func (ls Model) View() string {
	help := ls.Help
	if !ls.started.IsZero() {
		help = fmt.Sprintf("%s (%s)", help, ls.Elapsed())
	}

	return ls.ViewWithHelp(help)
}

// ViewWithHelp renders the labeled spinner with dynamic help text.
func (ls Model) ViewWithHelp(help string) string {
	var sb strings.Builder

	sb.WriteString(ls.Spinner.View())
	sb.WriteString(" ")
	sb.WriteString(style.Title.Render(ls.Title))
	sb.WriteString("\n\n")

	if ls.Subtitle != "" {
		sb.WriteString(style.Subtitle.Render(ls.Subtitle))
		sb.WriteString("\n\n")
	}

	sb.WriteString(style.Help.Render(help))

	return sb.String()
}
