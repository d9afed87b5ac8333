package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "key")

	config, err := Load()
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "key", config.GoogleAPIKey)
	assert.Equal(t, "gemini-2.0-flash", config.GeminiModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", config.GeminiBaseURL)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, time.Second, config.RetryDelay)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 4, config.HistoryWindow)
	assert.Equal(t, zerolog.InfoLevel, config.LogLevel)
	assert.False(t, config.TelemetryEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_ACCESS_TOKEN", "token")
	t.Setenv("GEMINI_MODEL", "gemini-pro")
	t.Setenv("SORABOT_TIMEOUT", "30s")
	t.Setenv("SORABOT_RETRY_DELAY", "250ms")
	t.Setenv("SORABOT_MAX_RETRIES", "5")
	t.Setenv("SORABOT_HISTORY_WINDOW", "8")
	t.Setenv("SORABOT_LOG_LEVEL", "debug")
	t.Setenv("SORABOT_TELEMETRY_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	config, err := Load()
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "token", config.GoogleAccessToken)
	assert.Equal(t, "gemini-pro", config.GeminiModel)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 250*time.Millisecond, config.RetryDelay)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 8, config.HistoryWindow)
	assert.Equal(t, zerolog.DebugLevel, config.LogLevel)
	assert.True(t, config.TelemetryEnabled)
	assert.Equal(t, "localhost:4318", config.OTLPEndpoint)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SORABOT_TIMEOUT", "ten seconds")

	_, err := Load()
	assert.ErrorContains(t, err, "SORABOT_TIMEOUT")
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.GoogleAPIKey = "key"

	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing credentials", func(c *Config) { c.GoogleAPIKey = "" }, "GOOGLE_API_KEY"},
		{"empty model", func(c *Config) { c.GeminiModel = "" }, "model"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative retry delay", func(c *Config) { c.RetryDelay = -time.Second }, "retry delay"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max retries"},
		{"negative window", func(c *Config) { c.HistoryWindow = -1 }, "history window"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := valid
			tc.mutate(&config)
			err := config.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.errMsg)
			}
		})
	}
}
