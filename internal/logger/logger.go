package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alkime/audioscribe/internal/config"
)

// SetupLogger configures structured logging based on environment.
func SetupLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(NewHandler(os.Stdout, cfg))

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// NewHandler builds the JSON handler used by the server. Split out so tests
// can point it at a buffer.
func NewHandler(w io.Writer, cfg *config.Config) slog.Handler {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: Level(cfg),
	})
}

// Level determines the log level from Env and LogLevel.
func Level(cfg *config.Config) slog.Level {
	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	return logLevel
}

// SetupFileLogger sends text logs to path instead of the terminal. The TUI
// owns stdout, so anything written there would corrupt the screen.
func SetupFileLogger(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	//nolint:gosec // log file lives in the user's own work directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger, f.Close, nil
}
