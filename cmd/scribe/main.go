package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/audioscribe/internal/content"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/keyring"
	"github.com/alkime/audioscribe/internal/logger"
	"github.com/alkime/audioscribe/internal/pipeline"
	"github.com/alkime/audioscribe/internal/session"
	"github.com/alkime/audioscribe/internal/tui"
	"github.com/alkime/audioscribe/internal/watch"
	"github.com/alkime/audioscribe/internal/workdir"
)

// CLI defines the scribe command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch terminal UI for the transcription workflow"`

	// Subcommands
	Transcribe TranscribeCmd `cmd:"" help:"Transcribe one file and write the documents"`
	Watch      WatchCmd      `cmd:"" help:"Transcribe every recording added to a folder"`
	Config     ConfigCmd     `cmd:"" help:"Manage configuration"`
}

// ServiceFlags select the hosted models. Keys fall back to the keychain.
type ServiceFlags struct {
	TranscribeProvider string        `flag:"" env:"TRANSCRIBE_PROVIDER" default:"gemini" enum:"gemini,openai" help:"Transcription provider"`
	RefineProvider     string        `flag:"" env:"REFINE_PROVIDER" default:"gemini" enum:"gemini,openai,anthropic" help:"Refine provider"`
	GeminiModel        string        `flag:"" env:"GEMINI_MODEL" default:"gemini-2.5-flash" help:"Gemini model name"`
	GeminiAPIKey       string        `flag:"" env:"GEMINI_API_KEY" help:"Google Gemini API key"`
	OpenAIAPIKey       string        `flag:"" env:"OPENAI_API_KEY" help:"OpenAI API key"`
	AnthropicAPIKey    string        `flag:"" env:"ANTHROPIC_API_KEY" help:"Anthropic API key"`
	InlineLimit        int           `flag:"" env:"INLINE_LIMIT_BYTES" default:"20971520" help:"Compact WAV uploads above this size"`
	Timeout            time.Duration `flag:"" env:"REMOTE_TIMEOUT" default:"5m" help:"Timeout for each remote call"`
}

// service resolves keys, checks that the selected providers have them and
// builds the remote text service.
func (f *ServiceFlags) service() (content.Service, error) {
	// Resolve API keys: environment variables take priority, fallback to keychain
	keyring.Fill(map[keyring.APIKey]*string{
		keyring.Gemini:    &f.GeminiAPIKey,
		keyring.OpenAI:    &f.OpenAIAPIKey,
		keyring.Anthropic: &f.AnthropicAPIKey,
	})

	opts := content.Options{
		TranscribeProvider: content.Provider(f.TranscribeProvider),
		RefineProvider:     content.Provider(f.RefineProvider),
		GeminiAPIKey:       f.GeminiAPIKey,
		OpenAIAPIKey:       f.OpenAIAPIKey,
		AnthropicAPIKey:    f.AnthropicAPIKey,
		GeminiModel:        f.GeminiModel,
		InlineLimit:        f.InlineLimit,
		RequireCredentials: true,
	}

	svc, err := content.New(opts)
	if err != nil {
		var cerr *content.ConfigurationError
		if errors.As(err, &cerr) {
			return nil, fmt.Errorf("%w. Set via environment variables or run 'scribe config set-key'", err)
		}
		return nil, fmt.Errorf("failed to create remote text service: %w", err)
	}

	return svc, nil
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	File   string `arg:"" optional:"" help:"Audio or video file to open"`
	Out    string `flag:"" optional:"" help:"Export directory (default: ~/Documents/AudioScribe)"`
	Editor string `flag:"" env:"SCRIBE_EDITOR" help:"Editor for the edit key (default: $EDITOR)"`

	ServiceFlags `embed:""`
}

// Run executes the TUI command.
func (c *TUICmd) Run() error {
	logPath, err := workdir.LogPath()
	if err != nil {
		return err
	}

	_, closeLog, err := logger.SetupFileLogger(logPath, slog.LevelDebug)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, err := c.service()
	if err != nil {
		return err
	}

	outDir, err := workdir.OutputDir(c.Out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := session.NewWorkspace(ctx, svc,
		session.WithTimeout(c.Timeout),
		session.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer ws.Close()

	model := tui.New(ws, tui.Config{
		Cancel:      cancel,
		Launcher:    &tui.DefaultEditorLauncher{EditorCmd: c.Editor},
		OutputDir:   outDir,
		InitialFile: c.File,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Println("\nfinished. bye!")

	return nil
}

// OutputFlags choose where and how documents are written.
type OutputFlags struct {
	Refine string `flag:"" optional:"" help:"Also write a remix produced with this instruction"`
	Format string `flag:"" default:"txt" enum:"txt,pdf,docx" help:"Document format"`
	Out    string `flag:"" optional:"" help:"Output directory (default: ~/Documents/AudioScribe)"`
}

func (o *OutputFlags) request(path string) (pipeline.Request, error) {
	format, err := export.ParseFormat(o.Format)
	if err != nil {
		return pipeline.Request{}, err
	}

	dir, err := workdir.OutputDir(o.Out)
	if err != nil {
		return pipeline.Request{}, err
	}

	if err := workdir.Prep(dir); err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Path:        path,
		Instruction: o.Refine,
		Format:      format,
		OutputDir:   dir,
	}, nil
}

// TranscribeCmd transcribes a single file.
type TranscribeCmd struct {
	File string `arg:"" required:"" help:"Audio or video file"`

	OutputFlags  `embed:""`
	ServiceFlags `embed:""`
}

// Run executes the transcribe command.
func (c *TranscribeCmd) Run() error {
	req, err := c.request(c.File)
	if err != nil {
		return err
	}

	svc, err := c.service()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.NewRunner(svc, slog.Default(), c.Timeout).Run(ctx, req)
	if err != nil {
		return err
	}

	for _, path := range res.Paths {
		fmt.Println(path)
	}

	return nil
}

// WatchCmd processes recordings as they land in a folder.
type WatchCmd struct {
	Dir           string `arg:"" required:"" type:"existingdir" help:"Folder to watch"`
	MaxConcurrent int    `flag:"" default:"2" help:"Files processed at once"`

	OutputFlags  `embed:""`
	ServiceFlags `embed:""`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(svc, slog.Default(), c.Timeout)

	w, err := watch.New(c.Dir, func(ctx context.Context, path string) error {
		req, err := c.request(path)
		if err != nil {
			return err
		}

		res, err := runner.Run(ctx, req)
		if err != nil {
			return err
		}

		slog.Info("Documents written", "source", path, "paths", res.Paths)

		return nil
	}, c.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"gemini,openai,anthropic" help:"Service name (gemini, openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'scribe config set-key <service> <key>' to configure.")
	}

	return nil
}

func main() {
	// Set up text-based logger for CLI output
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("scribe"),
		kong.Description("Turn recordings into editable documents."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
