package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL  string        `mapstructure:"API_BASE_URL"`
	Env         string        `mapstructure:"ENV"`
	TokenFile   string        `mapstructure:"TOKEN_FILE"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	DownloadDir string        `mapstructure:"DOWNLOAD_DIR"`
	StubPort    string        `mapstructure:"STUB_PORT"`
	StubJWTKey  string        `mapstructure:"STUB_JWT_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STUB_PORT", "8000")
	v.SetDefault("STUB_JWT_KEY", "dev-secret-change-me")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("ENV")
	v.BindEnv("TOKEN_FILE")
	v.BindEnv("HTTP_TIMEOUT")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DOWNLOAD_DIR")
	v.BindEnv("STUB_PORT")
	v.BindEnv("STUB_JWT_KEY")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir for token file: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "maueyecare", "session.json")
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "."
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is usable before any network call.
// API_BASE_URL must parse as an absolute http(s) URL; a relative base would
// silently produce requests against the wrong host.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be http or https, got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be absolute, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}
