package document

import (
	"errors"
	"fmt"
)

// Command is a formatting or history action on the editor.
type Command string

const (
	Bold         Command = "bold"
	Italic       Command = "italic"
	Underline    Command = "underline"
	Undo         Command = "undo"
	Redo         Command = "redo"
	SizeStandard Command = "size-standard"
	SizeLarge    Command = "size-large"
)

// Commands lists every command in toolbar order.
var Commands = []Command{Bold, Italic, Underline, Undo, Redo, SizeStandard, SizeLarge}

// ErrUnknownCommand is returned for command names outside Commands.
var ErrUnknownCommand = errors.New("unknown editor command")

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands {
		if string(c) == s {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 100

// Editor applies commands to a document and keeps undo/redo history as
// markup snapshots.
type Editor struct {
	doc   *Document
	undo  []string
	redo  []string
	depth int
}

// NewEditor starts an editor on markup. A non-positive depth uses
// DefaultHistoryDepth.
func NewEditor(markup string, depth int) (*Editor, error) {
	doc, err := Parse(markup)
	if err != nil {
		return nil, err
	}

	if depth <= 0 {
		depth = DefaultHistoryDepth
	}

	return &Editor{doc: doc, depth: depth}, nil
}

// Markup returns the current document markup.
func (e *Editor) Markup() string {
	return e.doc.Markup()
}

// Text returns the text that selections index into.
func (e *Editor) Text() string {
	return e.doc.Text()
}

// Document returns a copy of the current document.
func (e *Editor) Document() *Document {
	return e.doc.Clone()
}

// CanUndo reports whether Undo would change anything.
func (e *Editor) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change anything.
func (e *Editor) CanRedo() bool { return len(e.redo) > 0 }

// Load replaces the document. The replacement is undoable and clears redo.
func (e *Editor) Load(markup string) error {
	doc, err := Parse(markup)
	if err != nil {
		return err
	}

	if doc.Markup() == e.doc.Markup() {
		return nil
	}

	e.push()
	e.doc = doc

	return nil
}

// Exec runs cmd over sel and reports whether the document changed.
// Formatting commands on an empty selection do nothing.
func (e *Editor) Exec(cmd Command, sel Selection) (bool, error) {
	switch cmd {
	case Undo:
		return e.step(&e.undo, &e.redo), nil
	case Redo:
		return e.step(&e.redo, &e.undo), nil
	case Bold, Italic, Underline, SizeStandard, SizeLarge:
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	if sel.Empty() {
		return false, nil
	}

	before := e.doc.Markup()
	next := e.doc.Clone()
	apply(next, cmd, sel)

	if next.Markup() == before {
		return false, nil
	}

	e.push()
	e.doc = next

	return true, nil
}

func apply(d *Document, cmd Command, sel Selection) {
	switch cmd {
	case Bold:
		on := !d.styleAll(sel, func(s Style) bool { return s.Bold })
		d.restyle(sel, func(s Style) Style { s.Bold = on; return s })
	case Italic:
		on := !d.styleAll(sel, func(s Style) bool { return s.Italic })
		d.restyle(sel, func(s Style) Style { s.Italic = on; return s })
	case Underline:
		on := !d.styleAll(sel, func(s Style) bool { return s.Underline })
		d.restyle(sel, func(s Style) Style { s.Underline = on; return s })
	case SizeStandard:
		d.restyle(sel, func(s Style) Style { s.Size = 0; return s })
	case SizeLarge:
		d.restyle(sel, func(s Style) Style { s.Size = FontSizeLarge; return s })
	}
}

func (e *Editor) push() {
	e.undo = append(e.undo, e.doc.Markup())
	if len(e.undo) > e.depth {
		e.undo = e.undo[len(e.undo)-e.depth:]
	}
	e.redo = nil
}

// step pops a snapshot from one stack, saving the current state on the other.
func (e *Editor) step(from, to *[]string) bool {
	if len(*from) == 0 {
		return false
	}

	last := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, e.doc.Markup())

	// Snapshots were produced by Markup and always parse.
	doc, _ := Parse(last)
	e.doc = doc

	return true
}
