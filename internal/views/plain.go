package views

import (
	"sync"
	"time"

	"github.com/alkime/audioscribe/internal/document"
)

// ConfirmationWindow is how long the capture confirmation stays visible.
const ConfirmationWindow = 2 * time.Second

const (
	CaptureLabel   = "Add to Final"
	ConfirmedLabel = "Added!"
)

// PlainView is a plain-text pane used for the transcript and the remix.
type PlainView struct {
	mu          sync.Mutex
	content     string
	onChange    func(string)
	addToFinal  func(string)
	confirmedAt time.Time
	now         func() time.Time
}

var _ Editable = (*PlainView)(nil)

// NewPlainView creates a pane. addToFinal receives captured text.
func NewPlainView(addToFinal func(string)) *PlainView {
	return &PlainView{
		addToFinal: addToFinal,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for the confirmation window.
func (v *PlainView) SetClock(now func() time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.now = now
}

// OnChange registers the edit callback.
func (v *PlainView) OnChange(fn func(string)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.onChange = fn
}

// Content returns the current text.
func (v *PlainView) Content() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.content
}

// SetContent applies a user edit verbatim and reports it upward.
func (v *PlainView) SetContent(content string) {
	v.mu.Lock()
	v.content = content
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(content)
	}
}

// Sync shows content pushed down from the owner. No callback fires.
func (v *PlainView) Sync(content string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.content = content
}

// Capture sends the selected text, or all text when nothing is selected,
// to the final document. It reports false when there was nothing to send.
func (v *PlainView) Capture(sel Selection) bool {
	v.mu.Lock()
	text := v.content
	if !sel.Empty() {
		text = runeSlice(v.content, sel)
	}
	fn := v.addToFinal
	if text == "" || fn == nil {
		v.mu.Unlock()
		return false
	}
	v.confirmedAt = v.now()
	v.mu.Unlock()

	fn(text)

	return true
}

// Confirming reports whether the capture confirmation is showing.
func (v *PlainView) Confirming() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return !v.confirmedAt.IsZero() && v.now().Sub(v.confirmedAt) < ConfirmationWindow
}

// CaptureLabel is the text of the capture button.
func (v *PlainView) CaptureLabel() string {
	if v.Confirming() {
		return ConfirmedLabel
	}

	return CaptureLabel
}

// WordCount counts words in the current text.
func (v *PlainView) WordCount() int {
	return document.WordCount(v.Content())
}
