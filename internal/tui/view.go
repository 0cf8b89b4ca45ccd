package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/internal/session"
	"github.com/alkime/audioscribe/internal/tui/style"
)

const (
	headerHeight = 9
	footerHeight = 4
)

var tabLabels = map[session.Tab]string{
	session.TabOriginal: "Original",
	session.TabRemix:    "AI Remix",
	session.TabFinal:    "Final Version",
}

// refresh re-renders the pane content into the viewport and keeps the
// cursor line visible.
func (m *Model) refresh() {
	m.viewport.Width = max(m.width-4, 10)
	m.viewport.Height = max(m.height-headerHeight-footerHeight, 5)

	lines := m.plainLines()
	if m.snap.Tab == session.TabFinal {
		lines = finalLines(m.ws.Final.Document())
	}

	from, to := m.cursor, m.cursor
	if m.anchor >= 0 {
		from, to = min(m.anchor, m.cursor), max(m.anchor, m.cursor)
	}

	var (
		sb        strings.Builder
		row       int
		cursorRow int
	)
	for i, line := range lines {
		prefix := "  "
		if i == m.cursor {
			prefix = style.Key.Render("> ")
			cursorRow = row
		}

		wrapped := wrapText(line, m.viewport.Width-2)
		if m.anchor >= 0 && i >= from && i <= to {
			wrapped = style.Selected.Render(wrapped)
		}

		for j, part := range strings.Split(wrapped, "\n") {
			if j == 0 {
				sb.WriteString(prefix)
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(part)
			sb.WriteString("\n")
			row++
		}
	}

	m.viewport.SetContent(strings.TrimSuffix(sb.String(), "\n"))

	switch {
	case cursorRow < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorRow)
	case cursorRow >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorRow - m.viewport.Height + 1)
	}
}

func (m *Model) plainLines() []string {
	return strings.Split(m.content(), "\n")
}

// finalLines renders the final document one line per paragraph or line
// break, with run styles applied.
func finalLines(doc *document.Document) []string {
	var lines []string
	for _, b := range doc.Blocks {
		var cur strings.Builder
		for _, r := range b.Runs {
			st := runStyle(r.Style)
			for i, part := range strings.Split(r.Text, "\n") {
				if i > 0 {
					lines = append(lines, cur.String())
					cur.Reset()
				}
				if part != "" {
					cur.WriteString(st.Render(part))
				}
			}
		}
		lines = append(lines, cur.String())
	}

	if len(lines) == 0 {
		return []string{""}
	}

	return lines
}

func runStyle(s document.Style) lipgloss.Style {
	st := lipgloss.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underline)
	if s.Size == document.FontSizeLarge {
		st = st.Bold(true).Foreground(lipgloss.Color("205"))
	}

	return st
}

// View renders the screen.
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("AudioScribe"))
	sb.WriteString("  ")
	sb.WriteString(style.Subtitle.Render("AI-Powered Transcription"))
	sb.WriteString("\n\n")

	if m.snap.State.Status == session.StatusError {
		sb.WriteString(style.Error.Render("Transcription Failed: " + m.snap.State.Message))
		sb.WriteString("  ")
		sb.WriteString(renderKeyHelp(m.keys.Dismiss, "\n\n"))
	}

	sb.WriteString(m.fileLine())
	sb.WriteString("\n\n")

	switch {
	case m.snap.Busy():
		m.spinner.Subtitle = m.snap.File.Name
		sb.WriteString(m.spinner.View())
		sb.WriteString("\n")
	case m.snap.HasResult():
		sb.WriteString(m.resultView())
	case m.snap.CanTranscribe():
		sb.WriteString(renderKeyHelp(m.keys.Transcribe, "\n"))
	}

	if m.mode != modeNormal {
		label := "Open file"
		if m.mode == modeInstruction {
			label = "Refine with AI"
		}
		sb.WriteString("\n")
		sb.WriteString(style.Label.Render(label + ": "))
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString("\n")
		if m.statusErr {
			sb.WriteString(style.Error.Render(m.status))
		} else {
			sb.WriteString(style.Success.Render(m.status))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpView())

	return sb.String()
}

func (m *Model) fileLine() string {
	if m.snap.File == nil {
		return style.Muted.Render("No file selected. " + media.SizeHint)
	}

	kind := "Audio"
	if m.snap.File.IsVideo {
		kind = "Video"
	}

	return style.Label.Render(kind+": ") +
		m.snap.File.Name + " " +
		style.Muted.Render(m.snap.File.SizeLabel)
}

func (m *Model) resultView() string {
	var sb strings.Builder

	for _, tab := range tabs {
		label := " " + tabLabels[tab] + " "
		if tab == m.snap.Tab {
			sb.WriteString(style.ActiveTab.Render(label))
		} else {
			sb.WriteString(style.Tab.Render(label))
		}
		sb.WriteString(" ")
	}
	sb.WriteString("\n\n")

	if m.snap.Tab == session.TabRemix {
		if m.snap.Refining {
			sb.WriteString(style.Progress.Render("Generating..."))
			sb.WriteString("\n")
		}
		if m.snap.Instruction != "" {
			sb.WriteString(style.Label.Render("Prompt: "))
			sb.WriteString(style.Muted.Render(m.snap.Instruction))
			sb.WriteString("\n")
		}
		if m.snap.Remix == "" {
			sb.WriteString(style.Muted.Render("Enter a prompt above to generate a new version of your text."))
			sb.WriteString("\n")
			return sb.String()
		}
	}

	sb.WriteString(style.Viewport.Render(m.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(style.Muted.Render(fmt.Sprintf("%d words", m.wordCount())))
	sb.WriteString("\n")

	return sb.String()
}

func (m *Model) wordCount() int {
	switch m.snap.Tab {
	case session.TabRemix:
		return m.ws.Remix.WordCount()
	case session.TabFinal:
		return m.ws.Final.WordCount()
	default:
		return m.ws.Original.WordCount()
	}
}

func (m *Model) helpView() string {
	var bindings []key.Binding

	switch {
	case m.mode != modeNormal:
		return style.Help.Render("[enter] submit  [esc] cancel")
	case m.snap.Busy():
	case m.snap.HasResult():
		bindings = append(bindings, m.keys.NextTab, m.keys.Select, m.keys.Refine, m.keys.Edit)
		if m.snap.Tab == session.TabFinal {
			bindings = append(bindings, m.keys.Bold, m.keys.Italic, m.keys.Underline, m.keys.Large, m.keys.Standard, m.keys.Undo, m.keys.Redo)
		} else {
			bindings = append(bindings, m.keys.Capture)
		}
		bindings = append(bindings, m.keys.ExportTXT, m.keys.ExportPDF, m.keys.ExportDOCX, m.keys.Open, m.keys.Clear)
	default:
		bindings = append(bindings, m.keys.Open)
		if m.snap.File != nil {
			bindings = append(bindings, m.keys.Clear)
		}
	}

	var sb strings.Builder
	for _, b := range bindings {
		sb.WriteString(renderKeyHelp(b, "  "))
	}
	sb.WriteString(renderKeyHelp(m.keys.Quit, "  "))
	sb.WriteString(renderKeyHelp(m.keys.ForceQuit))

	return sb.String()
}

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	s := style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)

	s += strings.Join(suffix, "")

	return s
}

// wrapText wraps the given text to fit within the specified width using lipgloss.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	return lipgloss.NewStyle().Width(width).Render(text)
}
