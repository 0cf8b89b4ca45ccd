package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

const (
	// DefaultBatchSamples is how many mono samples are buffered per encode
	// call: one second at 16kHz.
	DefaultBatchSamples = 16000
	// DefaultSampleRate matches what the speech models resample to anyway.
	DefaultSampleRate = 16000
)

// mp3Rates are the sample rates the shine encoder accepts.
var mp3Rates = map[int]bool{
	8000: true, 11025: true, 12000: true,
	16000: true, 22050: true, 24000: true,
	32000: true, 44100: true, 48000: true,
}

// EncoderConfig configures the MP3 encoder.
type EncoderConfig struct {
	SampleRate int

	// BatchSamples is the number of mono samples to accumulate before an
	// encode call.
	BatchSamples int
}

// Validate returns an error if the config is invalid.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if !mp3Rates[c.SampleRate] {
		return fmt.Errorf("sample rate %d is not supported by the MP3 encoder", c.SampleRate)
	}

	if c.BatchSamples <= 0 {
		return errors.New("batch size must be positive")
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.BatchSamples == 0 {
		c.BatchSamples = DefaultBatchSamples
	}

	return c
}

// Encoder reads mono PCM sample chunks from a channel, batches them, and
// writes MP3 frames to an io.Writer from its own goroutine.
type Encoder struct {
	config EncoderConfig
	input  <-chan []int16
	output io.Writer

	shine  *mp3encoder.Encoder
	buffer []int16

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewEncoder creates an MP3 encoder. Call Start before sending samples.
func NewEncoder(config EncoderConfig, input <-chan []int16, output io.Writer) (*Encoder, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	return &Encoder{ //nolint:exhaustruct // shine is set by Start
		config: config,
		input:  input,
		output: output,
		buffer: make([]int16, 0, config.BatchSamples),
	}, nil
}

// Start begins encoding. Returns error if already started.
func (e *Encoder) Start(ctx context.Context) error {
	if e.shine != nil {
		return errors.New("encoder already started")
	}

	// Stereo even for mono input: shine's mono path advances the wrong stride.
	e.shine = mp3encoder.NewEncoder(e.config.SampleRate, 2)

	e.wg.Go(func() {
		defer func() {
			if err := e.flush(); err != nil {
				e.setError(fmt.Errorf("failed to flush encoder on shutdown: %w", err))
			}
		}()

		for {
			select {
			case samples, ok := <-e.input:
				if !ok {
					return
				}

				e.buffer = append(e.buffer, samples...)
				if len(e.buffer) >= e.config.BatchSamples {
					if err := e.encodeBatch(); err != nil {
						e.setError(err)
						return
					}
				}

			case <-ctx.Done():
				e.setError(fmt.Errorf("encoder context cancelled: %w", ctx.Err()))
				return
			}
		}
	})

	return nil
}

func (e *Encoder) encodeBatch() error {
	if len(e.buffer) == 0 {
		return nil
	}

	stereo := make([]int16, len(e.buffer)*2)
	for i, s := range e.buffer {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}

	slog.Debug("encoding MP3 batch", "samples", len(e.buffer))

	if err := e.shine.Write(e.output, stereo); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	e.buffer = e.buffer[:0]

	return nil
}

func (e *Encoder) flush() error {
	if err := e.encodeBatch(); err != nil {
		return fmt.Errorf("failed to flush MP3 encoder: %w", err)
	}

	return nil
}

// Wait blocks until encoding completes and returns the first error, if any.
func (e *Encoder) Wait() error {
	e.wg.Wait()

	return e.err
}

func (e *Encoder) setError(err error) {
	e.errOnce.Do(func() {
		e.err = err
		slog.Debug("mp3 encoder error", "error", err)
	})
}
