// Package session owns the state of one transcription workflow and is the
// only place it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/pkg/channels"
)

var (
	// ErrBusy is returned while a conflicting operation is in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrNoFile is returned when transcription is requested with no file.
	ErrNoFile = media.ErrNoFile
	// ErrNoTranscript is returned when refining an empty transcript.
	ErrNoTranscript = errors.New("no transcript to refine")
	// ErrBlankInstruction is returned for a refine with a blank instruction.
	ErrBlankInstruction = errors.New("instruction is blank")
	// ErrNotEditable is returned when editing a transcript that is not shown.
	ErrNotEditable = errors.New("transcript is not editable until transcription completes")
)

const publishTimeout = 100 * time.Millisecond

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each remote call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger used for async outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator is the single owner of session state. Front ends read
// snapshots and change state only through its methods. Remote calls run in
// goroutines; their results are applied only if no newer operation of the
// same kind, and no Clear, happened in the meantime.
type Orchestrator struct {
	mu sync.Mutex

	svc     content.Service
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	events *channels.Broadcaster[Event]
	input  chan<- Event

	file        *media.File
	state       State
	transcript  string
	remix       string
	instruction string
	final       string
	tab         Tab
	refining    bool

	transcribeGen uint64
	refineGen     uint64
}

// New creates an orchestrator. Remote calls run under ctx; cancel it or
// call Close to stop them.
func New(ctx context.Context, svc content.Service, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(ctx)

	o := &Orchestrator{
		svc:    svc,
		logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
		events: channels.NewBroadcaster[Event](),
		state:  idle(),
		final:  initialFinal,
		tab:    TabOriginal,
	}

	for _, opt := range opts {
		opt(o)
	}

	// Run only fails when called twice.
	o.input, _ = o.events.Run(ctx)

	return o
}

// Subscribe returns a channel of events and a function that stops them.
// Slow subscribers miss events rather than stall the session.
func (o *Orchestrator) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	_ = o.events.Subscribe(ch)

	return ch, func() { o.events.Unsubscribe(ch) }
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		File:        fileInfo(o.file),
		State:       o.state,
		Transcript:  o.transcript,
		Remix:       o.remix,
		Instruction: o.instruction,
		FinalMarkup: o.final,
		Tab:         o.tab,
		Refining:    o.refining,
		BaseName:    baseName(o.file),
	}
}

// publishLocked must be called with o.mu held so events keep their order.
func (o *Orchestrator) publishLocked(kind EventKind, message string) {
	ev := Event{Kind: kind, Message: message, Snapshot: o.snapshotLocked()}
	if err := channels.SendContext(o.ctx, o.input, ev, publishTimeout); err != nil {
		o.logger.Debug("dropped session event", "kind", kind, "error", err)
	}
}

// File returns the selected file, or nil.
func (o *Orchestrator) File() *media.File {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.file
}

// Select replaces the file. Transcript and remix are cleared and the state
// returns to Idle; the final document is kept. A file that is not audio or
// video is rejected with a *media.ValidationError and changes nothing.
func (o *Orchestrator) Select(f *media.File) error {
	if err := media.Validate(f); err != nil {
		return err
	}

	o.mu.Lock()
	if o.state.Status == StatusProcessing {
		o.mu.Unlock()
		return ErrBusy
	}

	old := o.file
	o.file = f
	o.transcript = ""
	o.remix = ""
	o.state = idle()
	o.refineGen++
	o.refining = false
	o.publishLocked(EventFileSelected, "")
	o.mu.Unlock()

	if old != nil && old != f {
		if err := old.Release(); err != nil {
			o.logger.Warn("failed to release previous file", "error", err)
		}
	}

	return nil
}

// Transcribe starts transcription of the selected file in the background.
func (o *Orchestrator) Transcribe() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.file == nil {
		return ErrNoFile
	}
	if o.state.Status == StatusProcessing {
		return ErrBusy
	}

	o.state = processing(ProcessingMessage)
	o.transcript = ""
	o.remix = ""
	o.tab = TabOriginal
	o.transcribeGen++
	o.refineGen++
	o.refining = false

	gen := o.transcribeGen
	file := o.file

	o.publishLocked(EventTranscribeStarted, "")

	o.wg.Go(func() {
		text, err := o.transcribe(file)
		o.finishTranscribe(gen, text, err)
	})

	return nil
}

func (o *Orchestrator) callContext() (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(o.ctx, o.timeout)
	}

	return context.WithCancel(o.ctx)
}

func (o *Orchestrator) transcribe(file *media.File) (string, error) {
	ctx, cancel := o.callContext()
	defer cancel()

	data, err := file.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}

	return o.svc.Transcribe(ctx, data, file.MIMEType)
}

func (o *Orchestrator) finishTranscribe(gen uint64, text string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.transcribeGen {
		o.logger.Debug("dropping stale transcription", "generation", gen, "current", o.transcribeGen)
		return
	}

	if err != nil {
		o.logger.Warn("transcription failed", "error", err)
		o.state = failed(errorMessage(err))
		o.publishLocked(EventTranscribeFailed, o.state.Message)
		return
	}

	o.transcript = text
	o.state = completed()
	o.publishLocked(EventTranscribeCompleted, "")
}

// Dismiss acknowledges a transcription error. It does nothing in any other
// state and reports whether the state changed.
func (o *Orchestrator) Dismiss() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status != StatusError {
		return false
	}

	o.state = idle()
	o.publishLocked(EventDismissed, "")

	return true
}

// Refine starts a rewrite of the transcript in the background. The result
// replaces the remix; a failure leaves the remix as it was.
func (o *Orchestrator) Refine(instruction string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.refining {
		return ErrBusy
	}
	if o.transcript == "" {
		return ErrNoTranscript
	}
	if strings.TrimSpace(instruction) == "" {
		return ErrBlankInstruction
	}

	o.instruction = instruction
	o.refining = true
	o.refineGen++

	gen := o.refineGen
	text := o.transcript

	o.publishLocked(EventRefineStarted, "")

	o.wg.Go(func() {
		ctx, cancel := o.callContext()
		defer cancel()

		out, err := o.svc.Refine(ctx, text, instruction)
		o.finishRefine(gen, out, err)
	})

	return nil
}

func (o *Orchestrator) finishRefine(gen uint64, text string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.refineGen {
		o.logger.Debug("dropping stale refine", "generation", gen, "current", o.refineGen)
		return
	}

	o.refining = false

	if err != nil {
		o.logger.Warn("refine failed", "error", err)
		o.publishLocked(EventRefineFailed, RefineFailurePrefix+errorMessage(err))
		return
	}

	o.remix = text
	o.publishLocked(EventRefineCompleted, "")
}

// AddToFinal appends fragment to the final document as its own paragraph.
// An empty fragment is ignored.
func (o *Orchestrator) AddToFinal(fragment string) {
	if fragment == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.final = document.AppendFragment(o.final, fragment)
	o.publishLocked(EventFinalChanged, "")
}

// Clear resets everything, including the final document, and invalidates
// any call still in flight.
func (o *Orchestrator) Clear() {
	o.mu.Lock()

	old := o.file
	o.file = nil
	o.transcript = ""
	o.remix = ""
	o.instruction = ""
	o.final = initialFinal
	o.tab = TabOriginal
	o.state = idle()
	o.refining = false
	o.transcribeGen++
	o.refineGen++
	o.publishLocked(EventCleared, "")
	o.mu.Unlock()

	if old != nil {
		if err := old.Release(); err != nil {
			o.logger.Warn("failed to release file", "error", err)
		}
	}
}

// SetTranscript records a user edit of the transcript.
func (o *Orchestrator) SetTranscript(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status != StatusCompleted {
		return ErrNotEditable
	}
	if text == o.transcript {
		return nil
	}

	o.transcript = text
	o.publishLocked(EventEdited, "")

	return nil
}

// SetRemix records a user edit of the remix.
func (o *Orchestrator) SetRemix(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if text == o.remix {
		return
	}

	o.remix = text
	o.publishLocked(EventEdited, "")
}

// SetInstruction records the refine instruction as typed.
func (o *Orchestrator) SetInstruction(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if text == o.instruction {
		return
	}

	o.instruction = text
	o.publishLocked(EventEdited, "")
}

// SetFinalMarkup records a user edit of the final document. Blank markup
// restores the placeholder so the document is never empty.
func (o *Orchestrator) SetFinalMarkup(markup string) {
	if strings.TrimSpace(markup) == "" {
		markup = initialFinal
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if markup == o.final {
		return
	}

	o.final = markup
	o.publishLocked(EventFinalChanged, "")
}

// SetTab brings a pane to the front.
func (o *Orchestrator) SetTab(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if tab == o.tab {
		return nil
	}

	o.tab = tab
	o.publishLocked(EventTabChanged, "")

	return nil
}

// Wait blocks until every background call has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels calls in flight, waits for them, stops event delivery and
// releases the selected file.
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
	o.events.Wait()

	o.mu.Lock()
	f := o.file
	o.mu.Unlock()

	if err := f.Release(); err != nil {
		o.logger.Warn("failed to release file", "error", err)
	}
}

func errorMessage(err error) string {
	var rerr *content.RemoteServiceError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request to the model timed out."
	}

	return err.Error()
}
