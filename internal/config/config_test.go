package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Port != defaults.Port {
		t.Errorf("Port = %d, want default %d", cfg.Port, defaults.Port)
	}
	if cfg.UpstreamBaseURL != defaults.UpstreamBaseURL {
		t.Errorf("UpstreamBaseURL = %q, want default", cfg.UpstreamBaseURL)
	}
	if !cfg.ReasoningDisplay || !cfg.ThinkingMode {
		t.Error("reasoning-display and thinking-mode should default to true")
	}
	if cfg.DefaultTemperature != 0.6 || cfg.DefaultMaxTokens != 8192 {
		t.Errorf("sampling defaults = %v/%d", cfg.DefaultTemperature, cfg.DefaultMaxTokens)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	data := `
port: 9000
upstream-base-url: "https://example.invalid/v1"
upstream-api-key: "sk-from-file"
api-keys:
  - "client-key"
reasoning-display: false
default-temperature: 0.2
default-max-tokens: 1024
models:
  - alias: "my-model"
    name: "acme/my-model"
`
	if err := os.WriteFile(configFile, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.UpstreamBaseURL != "https://example.invalid/v1" {
		t.Errorf("UpstreamBaseURL = %q", cfg.UpstreamBaseURL)
	}
	if cfg.UpstreamAPIKey != "sk-from-file" {
		t.Errorf("UpstreamAPIKey = %q", cfg.UpstreamAPIKey)
	}
	if len(cfg.APIKeys) != 1 || cfg.APIKeys[0] != "client-key" {
		t.Errorf("APIKeys = %v", cfg.APIKeys)
	}
	if cfg.ReasoningDisplay {
		t.Error("reasoning-display should be overridden to false")
	}
	if cfg.DefaultTemperature != 0.2 || cfg.DefaultMaxTokens != 1024 {
		t.Errorf("sampling = %v/%d", cfg.DefaultTemperature, cfg.DefaultMaxTokens)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Alias != "my-model" || cfg.Models[0].Name != "acme/my-model" {
		t.Errorf("Models = %v", cfg.Models)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	data := `
port: 9000
upstream-base-url: "https://file.invalid/v1"
upstream-api-key: "sk-from-file"
`
	if err := os.WriteFile(configFile, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("PORT", "7000")
	t.Setenv("UPSTREAM_BASE_URL", "https://env.invalid/v1")
	t.Setenv("UPSTREAM_API_KEY", "sk-from-env")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want env override 7000", cfg.Port)
	}
	if cfg.UpstreamBaseURL != "https://env.invalid/v1" {
		t.Errorf("UpstreamBaseURL = %q, want env override", cfg.UpstreamBaseURL)
	}
	if cfg.UpstreamAPIKey != "sk-from-env" {
		t.Errorf("UpstreamAPIKey = %q, want env override", cfg.UpstreamAPIKey)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("port: [not a port"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(configFile); err == nil {
		t.Fatal("expected parse error")
	}
}
