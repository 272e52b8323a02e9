package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func Test_Load_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	InitViper("")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Fatalf("ServerURL=%q", cfg.ServerURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout=%v", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel=%q", cfg.LogLevel)
	}
}

func Test_Load_FromFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "spellbook.yaml")
	content := "server_url: https://spellbook.example\nlog_level: debug\ntimeout: 5s\n"
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	InitViper(p)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "https://spellbook.example" {
		t.Fatalf("ServerURL=%q", cfg.ServerURL)
	}
	if cfg.LogLevel != "debug" || cfg.Timeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func Test_Load_EnvOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SPELLBOOK_SERVER_URL", "https://env.example")
	t.Setenv("SPELLBOOK_LOG_LEVEL", "warn")
	InitViper("")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "https://env.example" {
		t.Fatalf("env override ignored: %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env override ignored: %q", cfg.LogLevel)
	}
}

func Test_Load_RejectsBadValues(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SPELLBOOK_LOG_LEVEL", "loud")
	InitViper("")

	if _, err := Load(); err == nil {
		t.Fatalf("invalid log level accepted")
	}
}
