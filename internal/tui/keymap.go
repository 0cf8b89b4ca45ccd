package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the workspace screen.
type KeyMap struct {
	Open       key.Binding
	Transcribe key.Binding
	Dismiss    key.Binding
	Clear      key.Binding
	NextTab    key.Binding
	Original   key.Binding
	Remix      key.Binding
	Final      key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Capture    key.Binding
	Refine     key.Binding
	Edit       key.Binding
	Bold       key.Binding
	Italic     key.Binding
	Underline  key.Binding
	Standard   key.Binding
	Large      key.Binding
	Undo       key.Binding
	Redo       key.Binding
	ExportTXT  key.Binding
	ExportPDF  key.Binding
	ExportDOCX key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		Transcribe: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "transcribe"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		Original: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "original"),
		),
		Remix: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "ai remix"),
		),
		Final: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "final"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "select lines"),
		),
		Capture: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to final"),
		),
		Refine: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "refine with ai"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit in $EDITOR"),
		),
		Bold: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bold"),
		),
		Italic: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "italic"),
		),
		Underline: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "underline"),
		),
		Standard: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "normal size"),
		),
		Large: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "large"),
		),
		Undo: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "redo"),
		),
		ExportTXT: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save txt"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "save pdf"),
		),
		ExportDOCX: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "save docx"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Transcribe, k.Clear, k.Quit}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Transcribe, k.Dismiss, k.Clear},
		{k.NextTab, k.Original, k.Remix, k.Final},
		{k.Up, k.Down, k.Select, k.Capture, k.Refine, k.Edit},
		{k.Bold, k.Italic, k.Underline, k.Standard, k.Large, k.Undo, k.Redo},
		{k.ExportTXT, k.ExportPDF, k.ExportDOCX, k.Quit, k.ForceQuit},
	}
}
