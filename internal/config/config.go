// Package config provides configuration management for sorabot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cchalm/sorabot/internal/ai"
	"github.com/cchalm/sorabot/internal/chat"
)

// Config holds the configuration for the chat client
type Config struct {
	// Credentials. One of the two is required; the API key wins if both are set
	GoogleAPIKey      string // Sent as the "key" query parameter
	GoogleAccessToken string // Sent as an OAuth bearer token

	GeminiModel   string
	GeminiBaseURL string

	Timeout       time.Duration // Per attempt
	RetryDelay    time.Duration
	MaxRetries    int
	HistoryWindow int

	LogLevel zerolog.Level

	TelemetryEnabled bool
	OTLPEndpoint     string
}

// Default returns the configuration used when nothing is set in the environment
func Default() Config {
	return Config{
		GeminiModel:   ai.DefaultGeminiModel,
		GeminiBaseURL: ai.DefaultGeminiBaseURL,
		Timeout:       ai.DefaultTimeout,
		RetryDelay:    ai.DefaultRetryDelay,
		MaxRetries:    ai.DefaultMaxRetries,
		HistoryWindow: chat.DefaultHistoryWindow,
		LogLevel:      zerolog.InfoLevel,
	}
}

// Load loads configuration from environment variables, falling back to defaults for anything unset
func Load() (Config, error) {
	config := Default()

	loadFromEnv(&config.GoogleAPIKey, "GOOGLE_API_KEY")
	loadFromEnv(&config.GoogleAccessToken, "GOOGLE_ACCESS_TOKEN")
	loadFromEnv(&config.GeminiModel, "GEMINI_MODEL")
	loadFromEnv(&config.GeminiBaseURL, "GEMINI_BASE_URL")
	loadFromEnv(&config.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	parsers := []error{
		parseFromEnv(&config.Timeout, "SORABOT_TIMEOUT", time.ParseDuration),
		parseFromEnv(&config.RetryDelay, "SORABOT_RETRY_DELAY", time.ParseDuration),
		parseFromEnv(&config.MaxRetries, "SORABOT_MAX_RETRIES", strconv.Atoi),
		parseFromEnv(&config.HistoryWindow, "SORABOT_HISTORY_WINDOW", strconv.Atoi),
		parseFromEnv(&config.LogLevel, "SORABOT_LOG_LEVEL", zerolog.ParseLevel),
		parseFromEnv(&config.TelemetryEnabled, "SORABOT_TELEMETRY_ENABLED", strconv.ParseBool),
	}
	for _, err := range parsers {
		if err != nil {
			return Config{}, err
		}
	}

	return config, nil
}

// Validate checks if the required configuration is present and in range
func (c Config) Validate() error {
	if c.GoogleAPIKey == "" && c.GoogleAccessToken == "" {
		return fmt.Errorf("missing required environment variable: GOOGLE_API_KEY or GOOGLE_ACCESS_TOKEN")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history window must not be negative, got %d", c.HistoryWindow)
	}
	return nil
}

func loadFromEnv(dest *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dest = v
	}
}

// parseFromEnv parses the environment variable key into dest, leaving dest untouched if the variable is unset
func parseFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) error {
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}
