package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "teapot"

// DataDir returns the directory to store application data.
// Mirrors common desktop app conventions:
// - Linux: $XDG_DATA_HOME or ~/.local/share/teapot
// - macOS: ~/Library/Application Support/teapot
// - Windows: %APPDATA%/teapot (falls back to UserConfigDir)
func DataDir() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			var err error
			base, err = os.UserConfigDir()
			if err != nil {
				return "", fmt.Errorf("resolve config directory: %w", err)
			}
		}
		dir = filepath.Join(base, appDirName)
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(base, appDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure data directory: %w", err)
	}
	return dir, nil
}

// ConfigDir returns the directory holding user-editable configuration,
// based on the per-OS user config dir.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure config directory: %w", err)
	}
	return dir, nil
}
