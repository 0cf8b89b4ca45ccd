package document_test

import (
	"testing"

	"github.com/alkime/audioscribe/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, markup string) *document.Editor {
	t.Helper()

	e, err := document.NewEditor(markup, 0)
	require.NoError(t, err)

	return e
}

func TestEditor_Bold(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p>Hello World</p>")

	changed, err := e.Exec(document.Bold, document.Selection{Start: 0, End: 5})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "<p><b>Hello</b> World</p>", e.Markup())

	// applying again toggles off
	changed, err = e.Exec(document.Bold, document.Selection{Start: 0, End: 5})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "<p>Hello World</p>", e.Markup())
}

func TestEditor_StylesAcrossBlocks(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p>ab</p><p>cd</p>")

	// "ab\ncd": select "b\nc"
	_, err := e.Exec(document.Italic, document.Selection{Start: 1, End: 4})
	require.NoError(t, err)
	assert.Equal(t, "<p>a<i>b</i></p><p><i>c</i>d</p>", e.Markup())
}

func TestEditor_Sizes(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p>big small</p>")

	_, err := e.Exec(document.SizeLarge, document.Selection{Start: 0, End: 3})
	require.NoError(t, err)
	assert.Equal(t, `<p><font size="4">big</font> small</p>`, e.Markup())
	assert.Equal(t, document.FontSizeLarge, e.Document().Blocks[0].Runs[0].Style.Size)

	_, err = e.Exec(document.SizeStandard, document.Selection{Start: 0, End: 9})
	require.NoError(t, err)
	assert.Equal(t, "<p>big small</p>", e.Markup())
}

func TestEditor_UnderlineMixedSelection(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p><u>ab</u>cd</p>")

	// not all underlined, so the whole selection becomes underlined
	_, err := e.Exec(document.Underline, document.Selection{Start: 0, End: 4})
	require.NoError(t, err)
	assert.Equal(t, "<p><u>abcd</u></p>", e.Markup())
}

func TestEditor_EmptySelectionIsNoop(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p>abc</p>")

	changed, err := e.Exec(document.Bold, document.Selection{Start: 2, End: 2})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, e.CanUndo())
}

func TestEditor_UndoRedo(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "<p>abc</p>")

	_, err := e.Exec(document.Bold, document.Selection{Start: 0, End: 1})
	require.NoError(t, err)
	_, err = e.Exec(document.Italic, document.Selection{Start: 2, End: 3})
	require.NoError(t, err)
	assert.Equal(t, "<p><b>a</b>b<i>c</i></p>", e.Markup())

	changed, err := e.Exec(document.Undo, document.Selection{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "<p><b>a</b>bc</p>", e.Markup())

	_, _ = e.Exec(document.Undo, document.Selection{})
	assert.Equal(t, "<p>abc</p>", e.Markup())

	changed, _ = e.Exec(document.Undo, document.Selection{})
	assert.False(t, changed, "history exhausted")

	_, _ = e.Exec(document.Redo, document.Selection{})
	assert.Equal(t, "<p><b>a</b>bc</p>", e.Markup())
	assert.True(t, e.CanRedo())

	// a new edit drops the redo branch
	_, err = e.Exec(document.Underline, document.Selection{Start: 1, End: 2})
	require.NoError(t, err)
	assert.False(t, e.CanRedo())
}

func TestEditor_LoadIsUndoable(t *testing.T) {
	t.Parallel()

	e := newEditor(t, document.Placeholder)

	require.NoError(t, e.Load(document.Placeholder+"<p>A</p>"))
	assert.Equal(t, document.Placeholder+"<p>A</p>", e.Markup())

	require.NoError(t, e.Load(document.Placeholder+"<p>A</p>"))

	_, _ = e.Exec(document.Undo, document.Selection{})
	assert.Equal(t, document.Placeholder, e.Markup())
	assert.False(t, e.CanUndo(), "identical load is not recorded")
}

func TestEditor_HistoryDepth(t *testing.T) {
	t.Parallel()

	e, err := document.NewEditor("<p>abcdef</p>", 2)
	require.NoError(t, err)

	for i := range 4 {
		_, err := e.Exec(document.Bold, document.Selection{Start: i, End: i + 1})
		require.NoError(t, err)
	}

	undos := 0
	for e.CanUndo() {
		_, _ = e.Exec(document.Undo, document.Selection{})
		undos++
	}
	assert.Equal(t, 2, undos)
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cmd, err := document.ParseCommand("size-large")
	require.NoError(t, err)
	assert.Equal(t, document.SizeLarge, cmd)

	_, err = document.ParseCommand("strike")
	require.ErrorIs(t, err, document.ErrUnknownCommand)

	_, err = newEditor(t, "<p>x</p>").Exec("strike", document.Selection{Start: 0, End: 1})
	require.ErrorIs(t, err, document.ErrUnknownCommand)
}
