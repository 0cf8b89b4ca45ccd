// Package workdir locates the directories the command line tools write to.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root returns the base directory for exported documents.
// The path is expanded at runtime to resolve to:
//
//	$HOME/Documents/AudioScribe
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Documents", "AudioScribe"), nil
}

// OutputDir returns dir when set, otherwise Root.
func OutputDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return Root()
}

// LogPath returns the file the terminal UI logs to.
func LogPath() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "logs", "scribe.log"), nil
}

// Prep ensures that dir exists.
func Prep(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	return nil
}
