package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveAPIKey_EnvWinsOverFileAndConfig(t *testing.T) {
	path := writeEnvFile(t, "GEMINI_API_KEY=from-file\n")
	t.Setenv(KeyName, "from-env")

	cfg := &Config{EnvFile: path, APIKey: "from-config"}
	if got := cfg.ResolveAPIKey(); got != "from-env" {
		t.Errorf("ResolveAPIKey() = %q, want %q", got, "from-env")
	}
}

func TestResolveAPIKey_FileWinsOverConfig(t *testing.T) {
	path := writeEnvFile(t, "GEMINI_API_KEY=from-file\n")
	t.Setenv(KeyName, "")

	cfg := &Config{EnvFile: path, APIKey: "from-config"}
	if got := cfg.ResolveAPIKey(); got != "from-file" {
		t.Errorf("ResolveAPIKey() = %q, want %q", got, "from-file")
	}
}

func TestResolveAPIKey_ConfigIsLastResort(t *testing.T) {
	t.Setenv(KeyName, "")

	cfg := &Config{EnvFile: filepath.Join(t.TempDir(), "absent.env"), APIKey: "from-config"}
	if got := cfg.ResolveAPIKey(); got != "from-config" {
		t.Errorf("ResolveAPIKey() = %q, want %q", got, "from-config")
	}
}

func TestResolveAPIKey_NothingAnywhere(t *testing.T) {
	t.Setenv(KeyName, "")

	cfg := &Config{}
	if got := cfg.ResolveAPIKey(); got != "" {
		t.Errorf("ResolveAPIKey() = %q, want empty", got)
	}
}

func TestLookupEnvFile_Parsing(t *testing.T) {
	path := writeEnvFile(t, `
# comment line
OTHER=nope

GEMINI_API_KEY="quoted value"
`)
	if got := lookupEnvFile(path, KeyName); got != "quoted value" {
		t.Errorf("lookupEnvFile() = %q, want %q", got, "quoted value")
	}
	if got := lookupEnvFile(path, "MISSING"); got != "" {
		t.Errorf("lookupEnvFile(MISSING) = %q, want empty", got)
	}
}

func TestLookupEnvFile_SingleQuotesAndSpaces(t *testing.T) {
	path := writeEnvFile(t, "GEMINI_API_KEY = 'abc123'\n")
	if got := lookupEnvFile(path, KeyName); got != "abc123" {
		t.Errorf("lookupEnvFile() = %q, want %q", got, "abc123")
	}
}
