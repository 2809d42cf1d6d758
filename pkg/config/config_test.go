package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	// The logger parses this with zapcore.ParseLevel, so it must be a
	// level name, not the environment name.
	if cfg.App.LogLevel != "info" {
		t.Errorf("App.LogLevel = %q, want info", cfg.App.LogLevel)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("App.Environment = %q, want development", cfg.App.Environment)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_LOG_LEVEL=debug\nRSVP_MAX_PLUS_ONES_CEILING=4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("App.LogLevel = %q, want debug", cfg.App.LogLevel)
	}
	if cfg.RSVP.MaxPlusOnesCeiling != 4 {
		t.Errorf("RSVP.MaxPlusOnesCeiling = %d, want 4", cfg.RSVP.MaxPlusOnesCeiling)
	}
}
