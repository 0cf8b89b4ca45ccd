// Package pipeline runs the transcribe, refine and export steps for one
// file without a user in the loop.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/media"
)

// DefaultTimeout bounds each remote call.
const DefaultTimeout = 2 * time.Minute

// Request describes one run.
type Request struct {
	// Path is the recording on disk.
	Path string
	// Instruction, when not blank, also produces a remix.
	Instruction string
	// Format of the written documents. Defaults to TXT.
	Format export.Format
	// OutputDir receives the documents.
	OutputDir string
}

// Result lists what a run produced.
type Result struct {
	Transcript string
	Remix      string
	Paths      []string
}

// Runner executes requests against a content service.
type Runner struct {
	svc     content.Service
	logger  *slog.Logger
	timeout time.Duration
}

// NewRunner creates a runner. A zero timeout uses DefaultTimeout.
func NewRunner(svc content.Service, logger *slog.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{svc: svc, logger: logger, timeout: timeout}
}

// Run transcribes req.Path, optionally refines the transcript and writes
// each result next to the others in req.OutputDir.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	var res Result

	if req.Format == "" {
		req.Format = export.TXT
	}

	f, err := media.FromPath(req.Path)
	if err != nil {
		return res, err
	}
	if err := media.Validate(f); err != nil {
		return res, fmt.Errorf("%s: %w", f.Name, err)
	}

	data, err := f.Bytes()
	if err != nil {
		return res, err
	}

	log := r.logger.With("file", f.Name, "mime_type", f.MIMEType)
	log.Info("Transcribing", "size", f.SizeLabel())

	start := time.Now()
	res.Transcript, err = r.transcribe(ctx, data, f.MIMEType)
	if err != nil {
		return res, fmt.Errorf("failed to transcribe %s: %w", f.Name, err)
	}
	log.Info("Transcription complete", "elapsed", time.Since(start).Round(time.Millisecond))

	base := media.BaseName(f.Name)

	path, err := write(req.OutputDir, base, export.SuffixOriginal, req.Format, res.Transcript)
	if err != nil {
		return res, err
	}
	res.Paths = append(res.Paths, path)

	if strings.TrimSpace(req.Instruction) == "" {
		return res, nil
	}

	log.Info("Refining", "instruction", req.Instruction)

	res.Remix, err = r.refine(ctx, res.Transcript, req.Instruction)
	if err != nil {
		return res, fmt.Errorf("failed to refine %s: %w", f.Name, err)
	}

	path, err = write(req.OutputDir, base, export.SuffixRemix, req.Format, res.Remix)
	if err != nil {
		return res, err
	}
	res.Paths = append(res.Paths, path)

	return res, nil
}

func (r *Runner) transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.svc.Transcribe(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &content.RemoteServiceError{Op: content.OpTranscribe, Message: content.NoTranscriptMessage}
	}

	return text, nil
}

func (r *Runner) refine(ctx context.Context, text, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.svc.Refine(ctx, text, instruction)
}

func write(dir, base, suffix string, format export.Format, text string) (string, error) {
	data, err := export.Render(text, format)
	if err != nil {
		return "", err
	}

	return export.Save(dir, export.FileName(base, suffix, format), data)
}
