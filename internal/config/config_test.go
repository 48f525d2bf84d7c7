package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SETTINGS_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Media.Dir != "data/media" {
		t.Errorf("expected default media dir, got %s", cfg.Media.Dir)
	}
	if cfg.TelegramConfigured() {
		t.Error("expected unconfigured telegram without credentials")
	}
	if cfg.OpenAI.APIKey != "" {
		t.Error("expected no OpenAI key without a secrets file")
	}
}

func TestLoad_TelegramFromEnvironment(t *testing.T) {
	t.Setenv("SETTINGS_DIR", t.TempDir())
	t.Setenv("TELEGRAM_API_ID", "12345")
	t.Setenv("TELEGRAM_API_HASH", "abcdef")
	t.Setenv("TELEGRAM_PHONE_NUMBER", "+15550100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.TelegramConfigured() {
		t.Error("expected configured telegram")
	}
	if cfg.Telegram.APIID != 12345 || cfg.Telegram.APIHash != "abcdef" {
		t.Errorf("unexpected telegram config %+v", cfg.Telegram)
	}
	if cfg.Telegram.Phone != "+15550100" {
		t.Errorf("unexpected phone %s", cfg.Telegram.Phone)
	}
}

func TestLoad_OpenAISecrets(t *testing.T) {
	settingsDir := t.TempDir()
	secretsDir := filepath.Join(settingsDir, "secrets")
	if err := os.MkdirAll(secretsDir, 0755); err != nil {
		t.Fatalf("failed to create secrets dir: %v", err)
	}
	content := "api_key: sk-test-key\nmodel: gpt-4o-mini\n"
	if err := os.WriteFile(filepath.Join(secretsDir, "openai.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write secrets file: %v", err)
	}
	t.Setenv("SETTINGS_DIR", settingsDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-test-key" {
		t.Errorf("expected api key from secrets, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("expected model from secrets, got %q", cfg.OpenAI.Model)
	}
}

func TestLoad_MalformedSecrets(t *testing.T) {
	settingsDir := t.TempDir()
	secretsDir := filepath.Join(settingsDir, "secrets")
	if err := os.MkdirAll(secretsDir, 0755); err != nil {
		t.Fatalf("failed to create secrets dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(secretsDir, "openai.yaml"), []byte(":\tnot yaml"), 0600); err != nil {
		t.Fatalf("failed to write secrets file: %v", err)
	}
	t.Setenv("SETTINGS_DIR", settingsDir)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed secrets file")
	}
}
