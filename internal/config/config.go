package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jhleao/teapot-sub006/internal/storage"
)

// Config mirrors the on-disk config.yaml schema.
type Config struct {
	GitBin     string    `yaml:"gitBin,omitempty"`
	Backend    string    `yaml:"backend,omitempty"` // exec (default) or gogit
	DebounceMs int       `yaml:"debounceMs,omitempty"`
	Log        LogConfig `yaml:"log,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

func Default() Config {
	return Config{
		Backend:    "exec",
		DebounceMs: 200,
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config file at path. A missing file yields the defaults;
// invalid YAML is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if cfg.Backend == "" {
		cfg.Backend = "exec"
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = 200
	}
	return cfg, nil
}

// DefaultPath returns the conventional location of config.yaml inside the
// per-OS config directory.
func DefaultPath() (string, error) {
	dir, err := storage.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Debounce returns the watcher quiescence window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
