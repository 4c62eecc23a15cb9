package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Debounce() != 200*time.Millisecond {
		t.Fatalf("default debounce %v", cfg.Debounce())
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "gitBin: /usr/local/bin/git\nbackend: gogit\ndebounceMs: 500\nlog:\n  level: debug\n  format: json\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GitBin != "/usr/local/bin/git" {
		t.Fatalf("gitBin %q", cfg.GitBin)
	}
	if cfg.Backend != "gogit" {
		t.Fatalf("backend %q", cfg.Backend)
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Fatalf("debounce %v", cfg.Debounce())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log config %+v", cfg.Log)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("debounceMs: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "exec" {
		t.Fatalf("backend %q", cfg.Backend)
	}
	if cfg.DebounceMs != 200 {
		t.Fatalf("non-positive debounce should fall back, got %d", cfg.DebounceMs)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
