package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the MTProto API credentials. Without APIID and
// APIHash the gateway stays unconfigured and every data endpoint reports
// a configuration error.
type TelegramConfig struct {
	APIID       int    `env:"TELEGRAM_API_ID"`
	APIHash     string `env:"TELEGRAM_API_HASH"`
	Phone       string `env:"TELEGRAM_PHONE_NUMBER"`
	SessionFile string `env:"TELEGRAM_SESSION_FILE" envDefault:"data/telegram.session"`
}

// MediaConfig holds the media blob cache settings
type MediaConfig struct {
	Dir           string        `env:"MEDIA_DIR" envDefault:"data/media"`
	IndexPath     string        `env:"MEDIA_INDEX_PATH" envDefault:"data/media.db"`
	TTL           time.Duration `env:"MEDIA_CACHE_TTL" envDefault:"168h"`
	SweepInterval time.Duration `env:"MEDIA_SWEEP_INTERVAL" envDefault:"1h"`
}

// OpenAIConfig holds OpenAI API configuration, loaded from the secrets
// file rather than the environment.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Config holds all application configuration
type Config struct {
	Telegram        TelegramConfig
	Media           MediaConfig
	OpenAI          OpenAIConfig
	Port            string        `env:"PORT" envDefault:"8080"`
	SettingsDir     string        `env:"SETTINGS_DIR" envDefault:"settings"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// TelegramConfigured reports whether MTProto credentials are present
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.APIID != 0 && c.Telegram.APIHash != ""
}

// Load loads configuration from the environment plus the YAML secrets
// file. A missing secrets file is not an error; assistant features are
// simply disabled.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	openaiCfg, err := loadOpenAIConfig(filepath.Join(cfg.SettingsDir, "secrets", "openai.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		cfg.OpenAI = *openaiCfg
	}

	return cfg, nil
}

// loadOpenAIConfig loads OpenAI configuration from a YAML file
func loadOpenAIConfig(path string) (*OpenAIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg OpenAIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}
