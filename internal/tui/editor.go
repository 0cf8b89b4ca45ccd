package tui

import (
	"context"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

// EditorLauncher opens files in an external editor.
type EditorLauncher interface {
	Launch(filePath string) tea.Cmd
}

// DefaultEditorLauncher runs EditorCmd, falling back to $EDITOR and then vi.
type DefaultEditorLauncher struct {
	EditorCmd string
}

// Launch suspends the TUI while the editor runs.
//
//nolint:gosec // subprocess launching
func (d *DefaultEditorLauncher) Launch(filePath string) tea.Cmd {
	editor := d.EditorCmd
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	c := exec.CommandContext(context.Background(), editor, filePath)

	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorCompleteMsg{path: filePath, err: err}
	})
}

type editorCompleteMsg struct {
	path string
	err  error
}
