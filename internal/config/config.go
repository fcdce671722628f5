// Package config holds the daemon configuration and the layered resolver
// for the Gemini API key.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model identifies a remote generation model.
type Model string

const (
	ModelFlash      Model = "gemini-3-flash"
	ModelProPreview Model = "gemini-3-pro-preview"
)

// IsValid reports whether m is one of the known model identifiers.
func (m Model) IsValid() bool {
	return m == ModelFlash || m == ModelProPreview
}

// LogLevel is the textual slog level from the config file.
type LogLevel string

func (l LogLevel) IsValid() bool {
	switch l {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// Config is the full daemon configuration, decoded from YAML.
type Config struct {
	LogLevel   LogLevel `yaml:"log_level"`
	SocketPath string   `yaml:"socket_path"`
	EnvFile    string   `yaml:"env_file"`

	// APIKey is the lowest-precedence key source; environment and env file
	// always win. See ResolveAPIKey.
	APIKey string `yaml:"api_key"`
	Model  Model  `yaml:"model"`

	// Proxy is an optional SOCKS5 address ("127.0.0.1:8888") for LLM egress.
	Proxy string `yaml:"proxy"`

	// OpenAIFallback enables the text-only fallback generator when an
	// OPENAI_API_KEY is present in the environment.
	OpenAIFallback bool   `yaml:"openai_fallback"`
	OpenAIModel    string `yaml:"openai_model"`

	Bridge BridgeConfig `yaml:"bridge"`
	Voice  VoiceConfig  `yaml:"voice"`
	Guard  GuardConfig  `yaml:"guard"`
}

// BridgeConfig points at the scripting bridge inside the host application.
type BridgeConfig struct {
	URL              string `yaml:"url"`
	ReconnectSeconds uint   `yaml:"reconnect_seconds"`
	// DryRun reports generated scripts without sending them to the host.
	DryRun bool `yaml:"dry_run"`
}

// VoiceConfig controls push-to-talk capture.
type VoiceConfig struct {
	MaxRecordSeconds int `yaml:"max_record_seconds"`
	// WhisperModel is a ggml model path; empty disables local transcription.
	WhisperModel string `yaml:"whisper_model"`
	// CueSound is an mp3 played when capture starts and stops.
	CueSound string `yaml:"cue_sound"`
	// DuckVolume is the percentage other streams are faded to while recording.
	DuckVolume  int  `yaml:"duck_volume"`
	SpeakStatus bool `yaml:"speak_status"`
}

// GuardConfig is the allow-list boundary for generated scripts.
type GuardConfig struct {
	AllowedImports []string `yaml:"allowed_imports"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		SocketPath: "/tmp/scenevox.sock",
		EnvFile:    ".env",
		Model:      ModelFlash,
		Bridge: BridgeConfig{
			URL:              "ws://localhost:8765/ws",
			ReconnectSeconds: 3,
		},
		Voice: VoiceConfig{
			MaxRecordSeconds: 120,
			DuckVolume:       40,
		},
		Guard: GuardConfig{
			AllowedImports: []string{"bpy", "bmesh", "mathutils", "math", "random"},
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] merged over [Default]. A missing file is not an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and validates
// the result. Useful in tests where configs are string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Model != "" && !cfg.Model.IsValid() {
		errs = append(errs, fmt.Errorf("model %q is invalid; valid values: %s, %s", cfg.Model, ModelFlash, ModelProPreview))
	}
	if cfg.Bridge.URL != "" && !strings.HasPrefix(cfg.Bridge.URL, "ws://") && !strings.HasPrefix(cfg.Bridge.URL, "wss://") {
		errs = append(errs, fmt.Errorf("bridge.url %q must be a ws:// or wss:// URL", cfg.Bridge.URL))
	}
	if cfg.Voice.MaxRecordSeconds < 0 {
		errs = append(errs, fmt.Errorf("voice.max_record_seconds %d must not be negative", cfg.Voice.MaxRecordSeconds))
	}
	if cfg.Voice.DuckVolume < 0 || cfg.Voice.DuckVolume > 150 {
		errs = append(errs, fmt.Errorf("voice.duck_volume %d is out of range [0, 150]", cfg.Voice.DuckVolume))
	}
	for i, imp := range cfg.Guard.AllowedImports {
		if strings.TrimSpace(imp) == "" {
			errs = append(errs, fmt.Errorf("guard.allowed_imports[%d] is empty", i))
		}
	}

	return errors.Join(errs...)
}
