// Package content talks to the hosted models that turn media into text and
// rewrite text on request.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/audioscribe/internal/config"
	"github.com/alkime/audioscribe/internal/media"
)

// Transcriber turns an inline media payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Refiner rewrites text according to a free-form instruction.
type Refiner interface {
	Refine(ctx context.Context, text, instruction string) (string, error)
}

// Service is the full remote text boundary.
type Service interface {
	Transcriber
	Refiner
}

// Provider names a hosted model vendor.
type Provider string

const (
	Gemini    Provider = "gemini"
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Options selects providers and carries their credentials.
type Options struct {
	TranscribeProvider Provider
	RefineProvider     Provider

	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiModel     string

	// InlineLimit is the payload size above which WAV audio is compacted
	// before upload. Zero disables compaction.
	InlineLimit int

	// RequireCredentials makes New fail instead of warn on missing keys.
	RequireCredentials bool
}

// OptionsFromConfig maps the process configuration to service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TranscribeProvider: Provider(cfg.TranscribeProvider),
		RefineProvider:     Provider(cfg.RefineProvider),
		GeminiAPIKey:       cfg.GeminiAPIKey,
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		AnthropicAPIKey:    cfg.AnthropicAPIKey,
		GeminiModel:        cfg.GeminiModel,
		InlineLimit:        cfg.InlineLimitBytes,
		RequireCredentials: cfg.RequireCredentials,
	}
}

func (o Options) withDefaults() Options {
	if o.TranscribeProvider == "" {
		o.TranscribeProvider = Gemini
	}
	if o.RefineProvider == "" {
		o.RefineProvider = Gemini
	}
	if o.GeminiModel == "" {
		o.GeminiModel = DefaultGeminiModel
	}

	return o
}

func (o Options) keyFor(p Provider) (env, value string) {
	switch p {
	case Gemini:
		return "GEMINI_API_KEY", o.GeminiAPIKey
	case OpenAI:
		return "OPENAI_API_KEY", o.OpenAIAPIKey
	case Anthropic:
		return "ANTHROPIC_API_KEY", o.AnthropicAPIKey
	default:
		return "", ""
	}
}

// CheckCredentials returns a *ConfigurationError naming every key the
// selected providers need but do not have.
func (o Options) CheckCredentials() error {
	o = o.withDefaults()

	var missing []string
	for _, p := range []Provider{o.TranscribeProvider, o.RefineProvider} {
		env, value := o.keyFor(p)
		if env == "" || value != "" {
			continue
		}
		if len(missing) > 0 && missing[len(missing)-1] == env {
			continue
		}
		missing = append(missing, env)
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	return nil
}

// New builds the service for the selected providers. Missing credentials
// are logged and surface later as call failures, unless RequireCredentials
// is set.
func New(opts Options) (Service, error) {
	opts = opts.withDefaults()

	if err := opts.CheckCredentials(); err != nil {
		if opts.RequireCredentials {
			return nil, err
		}
		slog.Warn("remote text service is missing credentials", "error", err)
	}

	transcriber, err := newTranscriber(opts)
	if err != nil {
		return nil, err
	}

	refiner, err := newRefiner(opts)
	if err != nil {
		return nil, err
	}

	if opts.InlineLimit > 0 {
		transcriber = Compacting(transcriber, opts.InlineLimit)
	}

	return Compose(transcriber, refiner), nil
}

func newTranscriber(opts Options) (Transcriber, error) {
	switch opts.TranscribeProvider {
	case Gemini:
		return NewGeminiClient(opts.GeminiAPIKey, opts.GeminiModel), nil
	case OpenAI:
		return NewOpenAIClient(opts.OpenAIAPIKey), nil
	case Anthropic:
		return nil, fmt.Errorf("provider %q cannot transcribe media", opts.TranscribeProvider)
	default:
		return nil, fmt.Errorf("unknown transcribe provider %q", opts.TranscribeProvider)
	}
}

func newRefiner(opts Options) (Refiner, error) {
	switch opts.RefineProvider {
	case Gemini:
		return NewGeminiClient(opts.GeminiAPIKey, opts.GeminiModel), nil
	case OpenAI:
		return NewOpenAIClient(opts.OpenAIAPIKey), nil
	case Anthropic:
		return NewAnthropicClient(opts.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown refine provider %q", opts.RefineProvider)
	}
}

type composed struct {
	Transcriber
	Refiner
}

// Compose pairs any transcriber with any refiner.
func Compose(t Transcriber, r Refiner) Service {
	return composed{Transcriber: t, Refiner: r}
}

type compacting struct {
	next  Transcriber
	limit int
}

// Compacting re-encodes oversized WAV payloads as MP3 before handing them
// to next.
func Compacting(next Transcriber, limit int) Transcriber {
	return &compacting{next: next, limit: limit}
}

func (c *compacting) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	compact, compactType, err := media.Compact(ctx, data, mimeType, c.limit)
	if err != nil {
		return "", remoteError(OpTranscribe, "", fmt.Errorf("failed to compact audio: %w", err))
	}

	if len(compact) != len(data) {
		slog.Debug("compacted inline payload", "from", len(data), "to", len(compact), "mimeType", compactType)
	}

	return c.next.Transcribe(ctx, compact, compactType)
}
