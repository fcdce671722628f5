package config_test

import (
	"strings"
	"testing"

	"scenevox/internal/config"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != config.ModelFlash {
		t.Errorf("default model = %q, want %q", cfg.Model, config.ModelFlash)
	}
	if len(cfg.Guard.AllowedImports) == 0 {
		t.Error("default guard allow-list should not be empty")
	}
}

func TestLoadFromReader_InvalidModel(t *testing.T) {
	t.Parallel()
	yaml := `
model: gpt-4o-mini
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown model, got nil")
	}
	if !strings.Contains(err.Error(), "model") {
		t.Errorf("error should mention model, got: %v", err)
	}
}

func TestLoadFromReader_InvalidBridgeURL(t *testing.T) {
	t.Parallel()
	yaml := `
bridge:
  url: http://localhost:8765
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for non-websocket bridge URL, got nil")
	}
	if !strings.Contains(err.Error(), "bridge.url") {
		t.Errorf("error should mention bridge.url, got: %v", err)
	}
}

func TestLoadFromReader_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: loud
model: gemini-9
voice:
  duck_volume: 400
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	for _, want := range []string{"log_level", "model", "duck_volume"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(t.TempDir() + "/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SocketPath == "" {
		t.Error("defaults should set a socket path")
	}
}
