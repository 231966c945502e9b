package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func environ(kv map[string]string) env.Options {
	return env.Options{Environment: kv}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(environ(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/cop.db", cfg.DBPath)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Model)
	assert.Equal(t, 5*time.Minute, cfg.BriefingTTL)
	assert.Equal(t, 60*time.Second, cfg.TickerTTL)
	assert.Equal(t, 20, cfg.LLMPerMin)
	assert.Empty(t, cfg.APIKey())
	assert.Empty(t, cfg.CORSOrigins)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse(environ(map[string]string{
		"COP_PORT":         "9090",
		"CORS_ORIGINS":     "https://a.example,https://b.example",
		"COP_BRIEFING_TTL": "90s",
		"API_KEY":          "legacy",
	}))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.BriefingTTL)
	assert.Equal(t, "legacy", cfg.APIKey())
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := parse(environ(map[string]string{"COP_PORT": "70000"}))
	require.Error(t, err)

	_, err = parse(environ(map[string]string{"COP_LLM_PER_MINUTE": "0"}))
	require.Error(t, err)

	_, err = parse(environ(map[string]string{"COP_TICKER_TTL": "soon"}))
	require.Error(t, err)
}

func TestAPIKeyPrecedence(t *testing.T) {
	cfg := Config{LegacyKey: "legacy"}
	assert.Equal(t, "legacy", cfg.APIKey())

	cfg.GeminiKey = "primary"
	assert.Equal(t, "primary", cfg.APIKey())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "chatty"}.SlogLevel())
}

func TestParseClient(t *testing.T) {
	cfg, err := parseClient(environ(map[string]string{"COP_API_URL": "http://cop.local:8080/"}))
	require.NoError(t, err)
	assert.Equal(t, "http://cop.local:8080", cfg.APIURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}
