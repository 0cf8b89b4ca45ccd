package views

import (
	"sync"

	"github.com/alkime/audioscribe/internal/document"
)

// RichView is the final document editor. While focused it is the source of
// truth and ignores content pushed from the owner.
type RichView struct {
	mu       sync.Mutex
	editor   *document.Editor
	focused  bool
	onChange func(string)
}

var _ Editable = (*RichView)(nil)

// NewRichView starts the view on markup.
func NewRichView(markup string) (*RichView, error) {
	editor, err := document.NewEditor(markup, document.DefaultHistoryDepth)
	if err != nil {
		return nil, err
	}

	return &RichView{editor: editor}, nil
}

// OnChange registers the edit callback. It receives serialized markup.
func (v *RichView) OnChange(fn func(string)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.onChange = fn
}

// Content returns the current markup.
func (v *RichView) Content() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.editor.Markup()
}

// Text returns the text that selections index into.
func (v *RichView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.editor.Text()
}

// Document returns a copy of the current document.
func (v *RichView) Document() *document.Document {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.editor.Document()
}

// SetContent applies a user edit and reports the normalized markup.
func (v *RichView) SetContent(markup string) {
	v.mu.Lock()
	if err := v.editor.Load(markup); err != nil {
		v.mu.Unlock()
		return
	}
	out := v.editor.Markup()
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(out)
	}
}

// Exec runs a toolbar command over sel and reports the result upward when
// the document changed.
func (v *RichView) Exec(cmd document.Command, sel Selection) error {
	v.mu.Lock()
	changed, err := v.editor.Exec(cmd, sel)
	if err != nil || !changed {
		v.mu.Unlock()
		return err
	}
	out := v.editor.Markup()
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(out)
	}

	return nil
}

// Sync shows markup pushed down from the owner, unless the view is focused
// or already shows it. It reports whether the content was replaced.
func (v *RichView) Sync(markup string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.focused {
		return false
	}

	before := v.editor.Markup()
	if err := v.editor.Load(markup); err != nil {
		return false
	}

	return v.editor.Markup() != before
}

// Focus marks the view as being edited. The terminal UI holds focus while
// the final document is open in an external editor; the browser keeps its
// own focus state client-side.
func (v *RichView) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.focused = true
}

// Blur ends editing. The next Sync applies again.
func (v *RichView) Blur() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.focused = false
}

// Focused reports whether the view is being edited.
func (v *RichView) Focused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.focused
}

// WordCount counts words in the plain-text reduction of the markup.
func (v *RichView) WordCount() int {
	return document.WordCount(document.PlainText(v.Content()))
}
