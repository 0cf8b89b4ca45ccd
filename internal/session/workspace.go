package session

import (
	"context"
	"fmt"

	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/internal/views"
)

// Workspace wires the views and the file picker to one orchestrator. Views
// report edits upward through callbacks and are refreshed from snapshots
// by Sync.
type Workspace struct {
	*Orchestrator

	Picker   *media.Picker
	Original *views.PlainView
	Remix    *views.PlainView
	Final    *views.RichView
}

// NewWorkspace creates an orchestrator and its views.
func NewWorkspace(ctx context.Context, svc content.Service, opts ...Option) (*Workspace, error) {
	o := New(ctx, svc, opts...)

	final, err := views.NewRichView(o.Snapshot().FinalMarkup)
	if err != nil {
		o.Close()
		return nil, fmt.Errorf("failed to create final view: %w", err)
	}

	w := &Workspace{
		Orchestrator: o,
		Picker:       media.NewPicker(o.Select, o.Clear),
		Original:     views.NewPlainView(o.AddToFinal),
		Remix:        views.NewPlainView(o.AddToFinal),
		Final:        final,
	}

	w.Original.OnChange(func(text string) {
		if err := o.SetTranscript(text); err != nil {
			o.logger.Debug("ignoring transcript edit", "error", err)
		}
	})
	w.Remix.OnChange(o.SetRemix)
	w.Final.OnChange(o.SetFinalMarkup)

	return w, nil
}

// Sync pushes the current snapshot into the views and the picker and
// returns it. The final view keeps its own content while focused.
func (w *Workspace) Sync() Snapshot {
	snap := w.Snapshot()

	w.Original.Sync(snap.Transcript)
	w.Remix.Sync(snap.Remix)
	if w.Final.Sync(snap.FinalMarkup) {
		w.logger.Debug("final document refreshed")
	}

	w.Picker.Sync(w.File())
	w.Picker.SetDisabled(snap.Busy())

	return snap
}
