package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// KeyName is the environment variable holding the Gemini API key.
const KeyName = "GEMINI_API_KEY"

// ResolveAPIKey resolves the API key from a fixed precedence list:
// process environment, then the env file via godotenv, then a manual
// line-by-line parse of the same file, then the configured value.
// Each tier is consulted only when the previous one yielded nothing.
// Resolution is re-done from scratch on every call; nothing is cached.
func (c *Config) ResolveAPIKey() string {
	if v := os.Getenv(KeyName); v != "" {
		return v
	}
	if c.EnvFile != "" {
		if vals, err := godotenv.Read(c.EnvFile); err == nil {
			if v := vals[KeyName]; v != "" {
				return v
			}
		}
		if v := lookupEnvFile(c.EnvFile, KeyName); v != "" {
			return v
		}
	}
	return c.APIKey
}

// lookupEnvFile is the manual fallback parser: KEY=VALUE per line, optional
// single or double quotes around the value, blank lines and #-comments
// skipped. A missing or unreadable file yields "".
func lookupEnvFile(path, key string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		if strings.TrimSpace(line[:i]) != key {
			continue
		}
		value := strings.TrimSpace(line[i+1:])
		if len(value) >= 2 &&
			(value[0] == '"' && value[len(value)-1] == '"' ||
				value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		return value
	}
	return ""
}
