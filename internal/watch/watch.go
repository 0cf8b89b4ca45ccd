// Package watch processes recordings as they appear in a folder.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultMaxConcurrent bounds handlers running at once.
	DefaultMaxConcurrent = 2
	// DefaultSettleDelay is how long a new file is left alone so the writer
	// can finish.
	DefaultSettleDelay = 500 * time.Millisecond
)

var mediaExtensions = []string{
	".aac", ".flac", ".m4a", ".mp3", ".oga", ".ogg", ".opus", ".wav", ".weba",
	".avi", ".m4v", ".mkv", ".mov", ".mp4", ".mpeg", ".webm",
}

// Handler processes one new file.
type Handler func(ctx context.Context, path string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher hands every new media file in a directory to a Handler.
type Watcher struct {
	dir     string
	handler Handler
	logger  *slog.Logger
	settle  time.Duration

	fsw       *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// New starts watching dir. maxConcurrent <= 0 uses DefaultMaxConcurrent.
func New(dir string, handler Handler, maxConcurrent int, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	w := &Watcher{
		dir:       dir,
		handler:   handler,
		logger:    slog.Default(),
		settle:    DefaultSettleDelay,
		fsw:       fsw,
		semaphore: make(chan struct{}, maxConcurrent),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start processes events until ctx is done, then waits for running
// handlers and returns ctx.Err().
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Watching for recordings", "dir", w.dir, "max_concurrent", cap(w.semaphore))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Waiting for running jobs to finish")
			w.wg.Wait()

			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}

			if !event.Has(fsnotify.Create) {
				continue
			}
			if !IsMedia(event.Name) {
				w.logger.Debug("Ignoring file", "path", event.Name)
				continue
			}

			w.logger.Info("New recording", "path", event.Name)

			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				continue
			}

			w.wg.Go(func() {
				defer func() { <-w.semaphore }()
				w.process(ctx, event.Name)
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	select {
	case <-time.After(w.settle):
	case <-ctx.Done():
		return
	}

	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("Failed to process recording", "path", path, "error", err)
	}
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// IsMedia reports whether path has an audio or video extension.
func IsMedia(path string) bool {
	return slices.Contains(mediaExtensions, strings.ToLower(filepath.Ext(path)))
}
