// Package config loads service configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds copserver settings.
type Config struct {
	Port        int           `env:"COP_PORT"           envDefault:"8080"`
	DBPath      string        `env:"COP_DB_PATH"        envDefault:"data/cop.db"`
	GeminiKey   string        `env:"GEMINI_API_KEY"`
	LegacyKey   string        `env:"API_KEY"` // Name used by the browser build.
	Model       string        `env:"COP_MODEL"          envDefault:"gemini-3-flash-preview"`
	AdminKey    string        `env:"COP_ADMIN_KEY"`
	CORSOrigins []string      `env:"CORS_ORIGINS"       envSeparator:","`
	BriefingTTL time.Duration `env:"COP_BRIEFING_TTL"   envDefault:"5m"`
	TickerTTL   time.Duration `env:"COP_TICKER_TTL"     envDefault:"60s"`
	LLMPerMin   int           `env:"COP_LLM_PER_MINUTE" envDefault:"20"`
	LogLevel    string        `env:"COP_LOG_LEVEL"      envDefault:"info"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid COP_PORT %d", cfg.Port)
	}
	if cfg.LLMPerMin <= 0 {
		return Config{}, fmt.Errorf("COP_LLM_PER_MINUTE must be positive, got %d", cfg.LLMPerMin)
	}
	return cfg, nil
}

// APIKey returns the Gemini key, preferring GEMINI_API_KEY over API_KEY.
func (c Config) APIKey() string {
	if c.GeminiKey != "" {
		return c.GeminiKey
	}
	return c.LegacyKey
}

// SlogLevel maps LogLevel onto a slog level. Unknown names fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ClientConfig holds copctl settings.
type ClientConfig struct {
	APIURL  string        `env:"COP_API_URL"     envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"COP_API_TIMEOUT" envDefault:"90s"`
}

// LoadClient parses copctl settings from the environment.
func LoadClient() (ClientConfig, error) {
	return parseClient(env.Options{})
}

func parseClient(opts env.Options) (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}
