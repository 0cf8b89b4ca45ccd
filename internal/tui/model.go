// Package tui is the terminal front end for one transcription workspace.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/internal/session"
	"github.com/alkime/audioscribe/internal/tui/components/labeledspinner"
	"github.com/alkime/audioscribe/internal/views"
)

// Config holds the front end's collaborators.
type Config struct {
	// Cancel is called on quit.
	Cancel context.CancelFunc
	// Launcher opens panes in an external editor.
	Launcher EditorLauncher
	// OutputDir receives exports.
	OutputDir string
	// InitialFile is selected on start when set.
	InitialFile string
}

type inputMode int

const (
	modeNormal inputMode = iota
	modePath
	modeInstruction
)

var tabs = []session.Tab{session.TabOriginal, session.TabRemix, session.TabFinal}

// eventMsg carries a session event into the update loop.
type eventMsg struct {
	event session.Event
}

type exportDoneMsg struct {
	path string
	err  error
}

// Model is the workspace screen.
type Model struct {
	ws     *session.Workspace
	config Config
	keys   KeyMap

	events <-chan session.Event
	stop   func()

	snap     session.Snapshot
	viewport viewport.Model
	spinner  labeledspinner.Model
	input    textinput.Model
	mode     inputMode

	cursor int
	anchor int

	status    string
	statusErr bool

	width  int
	height int
}

// New creates the screen for ws. Events are subscribed immediately so
// none are missed before Init runs.
func New(ws *session.Workspace, config Config) *Model {
	if config.Launcher == nil {
		config.Launcher = &DefaultEditorLauncher{}
	}

	events, stop := ws.Subscribe()

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 0

	m := &Model{
		ws:       ws,
		config:   config,
		keys:     DefaultKeyMap(),
		events:   events,
		stop:     stop,
		snap:     ws.Sync(),
		viewport: viewport.New(76, 12),
		spinner:  labeledspinner.New(spinner.Dot, session.ProcessingMessage, "", "Processing Audio..."),
		input:    input,
		anchor:   -1,
		width:    80,
		height:   24,
	}
	m.refresh()

	return m
}

// Init starts the event listener and the spinner.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen(), m.spinner.Init()}
	if m.config.InitialFile != "" {
		path := m.config.InitialFile
		cmds = append(cmds, func() tea.Msg { return openFileMsg{path: path} })
	}

	return tea.Batch(cmds...)
}

type openFileMsg struct {
	path string
}

func (m *Model) listen() tea.Cmd {
	events := m.events

	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}

		return eventMsg{event: ev}
	}
}

// Update handles all messages.
func (m *Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()

		return m, nil

	case eventMsg:
		m.onEvent(msg.event)

		return m, m.listen()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case openFileMsg:
		m.openFile(msg.path)

		return m, nil

	case editorCompleteMsg:
		m.finishEdit(msg)

		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Saved " + msg.path)
		}

		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, m.quit()
		}
		if m.mode != modeNormal {
			return m, m.updateInput(msg)
		}

		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(teaMsg)

	return m, cmd
}

func (m *Model) quit() tea.Cmd {
	if m.config.Cancel != nil {
		m.config.Cancel()
	}
	m.stop()

	return tea.Quit
}

func (m *Model) onEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventRefineFailed:
		m.setError(errors.New(ev.Message))
	case session.EventRefineCompleted:
		m.setStatus("Remix ready")
	case session.EventTranscribeStarted:
		m.spinner = m.spinner.Start()
		m.cursor = 0
		m.anchor = -1
	case session.EventCleared, session.EventFileSelected:
		m.cursor = 0
		m.anchor = -1
	}

	m.sync()
}

func (m *Model) sync() {
	m.snap = m.ws.Sync()
	m.cursor = min(m.cursor, max(lineCount(m.content())-1, 0))
	if m.anchor >= 0 {
		m.anchor = min(m.anchor, max(lineCount(m.content())-1, 0))
	}
	m.refresh()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	hasResult := m.snap.HasResult()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Open):
		if m.snap.Busy() {
			m.setError(session.ErrBusy)
			return nil
		}
		m.startInput(modePath, "", "path to an audio or video file")

		return textinput.Blink

	case key.Matches(msg, m.keys.Transcribe):
		if !m.snap.CanTranscribe() {
			return nil
		}
		if err := m.ws.Transcribe(); err != nil {
			m.setError(err)
		}

	case key.Matches(msg, m.keys.Dismiss):
		m.ws.Dismiss()

	case key.Matches(msg, m.keys.Clear):
		if m.snap.Busy() {
			m.setError(session.ErrBusy)
			return nil
		}
		m.ws.Clear()
		m.cursor, m.anchor = 0, -1

	case key.Matches(msg, m.keys.NextTab) && hasResult:
		m.switchTab(tabs[(tabIndex(m.snap.Tab)+1)%len(tabs)])
	case key.Matches(msg, m.keys.Original) && hasResult:
		m.switchTab(session.TabOriginal)
	case key.Matches(msg, m.keys.Remix) && hasResult:
		m.switchTab(session.TabRemix)
	case key.Matches(msg, m.keys.Final) && hasResult:
		m.switchTab(session.TabFinal)

	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(lineCount(m.content())-1, 0))

	case key.Matches(msg, m.keys.Select) && hasResult:
		if m.anchor >= 0 {
			m.anchor = -1
		} else {
			m.anchor = m.cursor
		}

	case key.Matches(msg, m.keys.Capture) && hasResult:
		m.capture()

	case key.Matches(msg, m.keys.Refine) && hasResult:
		if m.snap.Refining {
			m.setError(session.ErrBusy)
			return nil
		}
		m.startInput(modeInstruction, m.snap.Instruction, `e.g. "Summarize paragraphs 3-10", "Fix spelling errors"`)

		return textinput.Blink

	case key.Matches(msg, m.keys.Edit) && hasResult:
		return m.edit()

	case hasResult && m.snap.Tab == session.TabFinal && m.formatKey(msg) != "":
		m.format(m.formatKey(msg))

	case key.Matches(msg, m.keys.ExportTXT) && hasResult:
		return m.export(export.TXT)
	case key.Matches(msg, m.keys.ExportPDF) && hasResult:
		return m.export(export.PDF)
	case key.Matches(msg, m.keys.ExportDOCX) && hasResult:
		return m.export(export.DOCX)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return cmd
	}

	m.sync()

	return nil
}

func (m *Model) formatKey(msg tea.KeyMsg) document.Command {
	switch {
	case key.Matches(msg, m.keys.Bold):
		return document.Bold
	case key.Matches(msg, m.keys.Italic):
		return document.Italic
	case key.Matches(msg, m.keys.Underline):
		return document.Underline
	case key.Matches(msg, m.keys.Standard):
		return document.SizeStandard
	case key.Matches(msg, m.keys.Large):
		return document.SizeLarge
	case key.Matches(msg, m.keys.Undo):
		return document.Undo
	case key.Matches(msg, m.keys.Redo):
		return document.Redo
	default:
		return ""
	}
}

func tabIndex(t session.Tab) int {
	for i, tab := range tabs {
		if tab == t {
			return i
		}
	}

	return 0
}

func (m *Model) switchTab(tab session.Tab) {
	if err := m.ws.SetTab(tab); err != nil {
		m.setError(err)
		return
	}
	m.cursor, m.anchor = 0, -1
}

func (m *Model) startInput(mode inputMode, value, placeholder string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()

		return nil

	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.mode = modeNormal
		m.input.Blur()

		switch mode {
		case modePath:
			m.openFile(value)
		case modeInstruction:
			m.ws.SetInstruction(value)
			if err := m.ws.Refine(value); err != nil {
				m.setError(err)
			}
			m.sync()
		}

		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return cmd
}

func (m *Model) openFile(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	f, err := media.FromPath(path)
	if err != nil {
		m.setError(err)
		return
	}

	if err := m.ws.Picker.Pick(f); err != nil {
		m.setError(err)
		return
	}

	m.sync()
}

// selection is the rune range of the selected lines, or empty when no
// lines are selected.
func (m *Model) selection() views.Selection {
	if m.anchor < 0 {
		return views.Selection{}
	}

	return lineRange(m.content(), m.anchor, m.cursor)
}

func (m *Model) capture() {
	var view *views.PlainView
	switch m.snap.Tab {
	case session.TabOriginal:
		view = m.ws.Original
	case session.TabRemix:
		view = m.ws.Remix
	default:
		return
	}

	if view.Capture(m.selection()) {
		m.setStatus(views.ConfirmedLabel)
	}
	m.anchor = -1
}

func (m *Model) format(cmd document.Command) {
	sel := m.selection()
	if sel.Empty() {
		sel = lineRange(m.content(), m.cursor, m.cursor)
	}

	if err := m.ws.Final.Exec(cmd, sel); err != nil {
		m.setError(err)
	}
}

func (m *Model) content() string {
	switch m.snap.Tab {
	case session.TabRemix:
		return m.snap.Remix
	case session.TabFinal:
		return m.ws.Final.Text()
	default:
		return m.snap.Transcript
	}
}

// edit writes the current pane to a temp file and opens it in the editor.
// The final document is edited as markup so formatting survives.
func (m *Model) edit() tea.Cmd {
	text, ext := m.snap.Transcript, ".txt"
	switch m.snap.Tab {
	case session.TabRemix:
		text = m.snap.Remix
	case session.TabFinal:
		text, ext = m.ws.Final.Content(), ".html"
	}

	f, err := os.CreateTemp("", "audioscribe-"+string(m.snap.Tab)+"-*"+ext)
	if err != nil {
		m.setError(fmt.Errorf("failed to create temp file: %w", err))
		return nil
	}
	_, err = f.WriteString(text)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.setError(fmt.Errorf("failed to write temp file: %w", err))
		return nil
	}

	if m.snap.Tab == session.TabFinal {
		// Keep pushed updates from replacing the document under the editor.
		m.ws.Final.Focus()
	}

	return m.config.Launcher.Launch(f.Name())
}

func (m *Model) finishEdit(msg editorCompleteMsg) {
	defer os.Remove(msg.path)
	m.ws.Final.Blur()

	if msg.err != nil {
		slog.Error("Editor closed with error", "error", msg.err)
		m.setError(msg.err)
		return
	}

	data, err := os.ReadFile(msg.path)
	if err != nil {
		m.setError(fmt.Errorf("failed to read edited file: %w", err))
		return
	}

	switch tab := tabFromEditPath(msg.path); tab {
	case session.TabRemix:
		m.ws.Remix.SetContent(string(data))
	case session.TabFinal:
		m.ws.Final.SetContent(string(data))
	default:
		if err := m.ws.SetTranscript(string(data)); err != nil {
			m.setError(err)
		}
	}

	m.sync()
}

func tabFromEditPath(path string) session.Tab {
	name := strings.TrimPrefix(filepath.Base(path), "audioscribe-")
	for _, tab := range tabs {
		if strings.HasPrefix(name, string(tab)+"-") {
			return tab
		}
	}

	return session.TabOriginal
}

func (m *Model) export(format export.Format) tea.Cmd {
	text, suffix := m.snap.Export(m.snap.Tab)
	name := export.FileName(m.snap.BaseName, suffix, format)
	dir := m.config.OutputDir

	return func() tea.Msg {
		data, err := export.Render(text, format)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		path, err := export.Save(dir, name, data)

		return exportDoneMsg{path: path, err: err}
	}
}

// Snapshot returns the state last rendered.
func (m *Model) Snapshot() session.Snapshot {
	return m.snap
}
