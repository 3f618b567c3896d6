package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != ":8787" {
		t.Errorf("addr = %q, want :8787", cfg.Server.Addr)
	}
	if cfg.Clock.Timezone != "Asia/Bangkok" {
		t.Errorf("timezone = %q, want Asia/Bangkok", cfg.Clock.Timezone)
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should default to enabled")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "breaklog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `[storage]
backend = "file"
path = "/data/breaklog"

[server]
addr = ":9000"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Path != "/data/breaklog" {
		t.Errorf("storage = %+v, want file backend at /data/breaklog", cfg.Storage)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Server.Addr)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Clock.Timezone != "Asia/Bangkok" {
		t.Errorf("timezone = %q, want the default", cfg.Clock.Timezone)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BREAKLOG_BACKEND", "memory")
	t.Setenv("BREAKLOG_ADDR", ":1234")
	t.Setenv("BREAKLOG_TZ", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != ":1234" {
		t.Errorf("addr = %q, want :1234", cfg.Server.Addr)
	}
	if cfg.Clock.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", cfg.Clock.Timezone)
	}
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock.Timezone = "Not/AZone"
	if loc := cfg.Location(); loc != time.Local {
		t.Errorf("location = %v, want time.Local for a bad zone", loc)
	}

	cfg.Clock.Timezone = "UTC"
	if loc := cfg.Location(); loc.String() != "UTC" {
		t.Errorf("location = %v, want UTC", loc)
	}
}
