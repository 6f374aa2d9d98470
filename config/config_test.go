package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.EnableRealtime {
		t.Fatal("expected realtime enabled by default")
	}
	if cfg.RealtimeChannel != "taskmirror:changes" {
		t.Fatalf("unexpected channel: %s", cfg.RealtimeChannel)
	}
	if cfg.HasSession() {
		t.Fatal("expected no session without credentials")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("remote_url: https://backend.example.com\nremote_key: secret\nenable_realtime: false\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoteURL != "https://backend.example.com" || cfg.RemoteKey != "secret" {
		t.Fatalf("unexpected credentials: %#v", cfg)
	}
	if cfg.EnableRealtime {
		t.Fatal("expected realtime disabled by file")
	}
	if !cfg.HasSession() {
		t.Fatal("expected session with both credentials")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("remote_url: https://from-file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REMOTE_URL", "https://from-env")
	t.Setenv("ENABLE_REALTIME", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoteURL != "https://from-env" {
		t.Fatalf("expected env override, got %s", cfg.RemoteURL)
	}
	if cfg.EnableRealtime {
		t.Fatal("expected env to disable realtime")
	}
}
