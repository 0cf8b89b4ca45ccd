package media

import "sync"

// Picker models the upload control: one file at a time, chosen from a
// dialog or dropped, inert while disabled.
type Picker struct {
	mu       sync.Mutex
	selected *File
	disabled bool
	dragging bool
	lastErr  error

	onSelect func(*File) error
	onClear  func()
}

// NewPicker creates a picker. onSelect is called with every accepted file
// and may veto it by returning an error; onClear is called by Clear.
func NewPicker(onSelect func(*File) error, onClear func()) *Picker {
	return &Picker{
		onSelect: onSelect,
		onClear:  onClear,
	}
}

// Pick handles a file chosen from the dialog.
func (p *Picker) Pick(f *File) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disabled {
		return nil
	}

	return p.selectLocked(f)
}

// Drop handles a drop of one or more files. Only the first is considered.
func (p *Picker) Drop(files []*File) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dragging = false
	if p.disabled || len(files) == 0 {
		return nil
	}

	return p.selectLocked(files[0])
}

func (p *Picker) selectLocked(f *File) error {
	if err := Validate(f); err != nil {
		p.lastErr = err
		return err
	}

	if p.onSelect != nil {
		if err := p.onSelect(f); err != nil {
			p.lastErr = err
			return err
		}
	}

	p.selected = f
	p.lastErr = nil

	return nil
}

// DragOver highlights the drop zone unless the picker is disabled.
func (p *Picker) DragOver() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.disabled {
		p.dragging = true
	}
}

// DragLeave clears the drop highlight.
func (p *Picker) DragLeave() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dragging = false
}

// Clear deselects the current file. It does nothing while disabled, matching
// the hidden clear button.
func (p *Picker) Clear() {
	p.mu.Lock()
	if p.disabled || p.selected == nil {
		p.mu.Unlock()
		return
	}
	p.selected = nil
	p.lastErr = nil
	onClear := p.onClear
	p.mu.Unlock()

	if onClear != nil {
		onClear()
	}
}

// SetDisabled toggles the inert state. Disabling also ends any drag.
func (p *Picker) SetDisabled(disabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.disabled = disabled
	if disabled {
		p.dragging = false
	}
}

// Sync replaces the selection with the owner's current file without
// validation or callbacks.
func (p *Picker) Sync(f *File) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.selected = f
}

// Selected returns the current file or nil.
func (p *Picker) Selected() *File {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.selected
}

// Disabled reports whether the picker is inert.
func (p *Picker) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.disabled
}

// Dragging reports whether a drag is hovering the drop zone.
func (p *Picker) Dragging() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.dragging
}

// ClearVisible reports whether the clear action should be offered.
func (p *Picker) ClearVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.selected != nil && !p.disabled
}

// Err returns the last validation or veto error, if any.
func (p *Picker) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastErr
}
