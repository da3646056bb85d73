package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewUsesDefaultsWhenConfigMissing(t *testing.T) {
	projectDir := t.TempDir()

	cfg, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.ProviderMode() != ProviderStatic {
		t.Fatalf("expected default provider %q, got %q", ProviderStatic, cfg.ProviderMode())
	}
	if cfg.StoreBackend() != StoreFile {
		t.Fatalf("expected default store %q, got %q", StoreFile, cfg.StoreBackend())
	}
	if cfg.BridgeAddr() != defaultBridgeAddr {
		t.Fatalf("expected default bridge addr %q, got %q", defaultBridgeAddr, cfg.BridgeAddr())
	}
	if cfg.SlackChannel() != "" {
		t.Fatalf("expected slack disabled by default, got channel %q", cfg.SlackChannel())
	}
}

func TestInitBriefingDirCreatesLayout(t *testing.T) {
	projectDir := t.TempDir()

	if err := InitBriefingDir(projectDir); err != nil {
		t.Fatalf("InitBriefingDir returned error: %v", err)
	}

	cfg, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, dir := range []string{cfg.LogsDir(), cfg.StateDir(), cfg.AgentsDir(), cfg.ExportDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}

	data, err := os.ReadFile(cfg.ProjectConfigPath())
	if err != nil {
		t.Fatalf("expected seeded config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "mode: static") {
		t.Fatalf("seeded config should default to the static provider, got:\n%s", data)
	}

	// Running init again must not clobber an existing config.
	marker := []byte("version: 1\nprovider:\n  mode: http\n")
	if err := os.WriteFile(cfg.ProjectConfigPath(), marker, 0o644); err != nil {
		t.Fatalf("write marker config: %v", err)
	}
	if err := InitBriefingDir(projectDir); err != nil {
		t.Fatalf("second InitBriefingDir returned error: %v", err)
	}
	data, err = os.ReadFile(cfg.ProjectConfigPath())
	if err != nil {
		t.Fatalf("reread config.yaml: %v", err)
	}
	if string(data) != string(marker) {
		t.Fatalf("InitBriefingDir overwrote an existing config.yaml")
	}
}

func TestNewParsesProjectConfig(t *testing.T) {
	projectDir := t.TempDir()
	briefingDir := filepath.Join(projectDir, BriefingDir)
	if err := os.MkdirAll(briefingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	configYAML := `version: 1
provider:
  mode: HTTP
  model: claude-sonnet-4
store:
  backend: sqlite
slack:
  channel: "#project-kickoffs"
bridge:
  addr: "0.0.0.0:9000"
`
	if err := os.WriteFile(filepath.Join(briefingDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.ProviderMode() != ProviderHTTP {
		t.Fatalf("expected normalized provider mode %q, got %q", ProviderHTTP, cfg.ProviderMode())
	}
	if cfg.Project.Provider.Model != "claude-sonnet-4" {
		t.Fatalf("unexpected model %q", cfg.Project.Provider.Model)
	}
	if cfg.StoreBackend() != StoreSQLite {
		t.Fatalf("expected store %q, got %q", StoreSQLite, cfg.StoreBackend())
	}
	if cfg.SlackChannel() != "#project-kickoffs" {
		t.Fatalf("unexpected slack channel %q", cfg.SlackChannel())
	}
	if cfg.BridgeAddr() != "0.0.0.0:9000" {
		t.Fatalf("unexpected bridge addr %q", cfg.BridgeAddr())
	}

	if got := cfg.SessionFilePath(); got != filepath.Join(briefingDir, "state", "session.json") {
		t.Fatalf("unexpected session path %q", got)
	}
	if got := cfg.SQLitePath(); got != filepath.Join(briefingDir, "state", "session.db") {
		t.Fatalf("unexpected sqlite path %q", got)
	}
	if got := cfg.ProjectMetaPath(); got != filepath.Join(briefingDir, "project.toml") {
		t.Fatalf("unexpected meta path %q", got)
	}
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	projectDir := t.TempDir()
	briefingDir := filepath.Join(projectDir, BriefingDir)
	if err := os.MkdirAll(briefingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	configYAML := `version: 1
store:
  backend: cassandra
`
	if err := os.WriteFile(filepath.Join(briefingDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := New(projectDir); err == nil {
		t.Fatalf("expected validation error for unknown store backend")
	} else if !strings.Contains(err.Error(), "store.backend") {
		t.Fatalf("error should name the offending field, got: %v", err)
	}
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	projectDir := t.TempDir()

	t.Setenv("BRIEFING_PROVIDER", "http")
	t.Setenv("BRIEFING_STORE", "sqlite")
	t.Setenv("BRIEFING_BRIDGE_ADDR", "127.0.0.1:9100")

	cfg, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.ProviderMode() != ProviderHTTP {
		t.Fatalf("expected env provider override, got %q", cfg.ProviderMode())
	}
	if cfg.StoreBackend() != StoreSQLite {
		t.Fatalf("expected env store override, got %q", cfg.StoreBackend())
	}
	if cfg.BridgeAddr() != "127.0.0.1:9100" {
		t.Fatalf("expected env bridge override, got %q", cfg.BridgeAddr())
	}

	// Garbage values are ignored rather than breaking startup.
	t.Setenv("BRIEFING_PROVIDER", "carrier-pigeon")
	cfg, err = New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.ProviderMode() != ProviderStatic {
		t.Fatalf("bad env value should fall back to config default, got %q", cfg.ProviderMode())
	}
}
