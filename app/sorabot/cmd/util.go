package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	"github.com/cchalm/sorabot/internal/ai"
	"github.com/cchalm/sorabot/internal/config"
	"github.com/cchalm/sorabot/internal/telemetry"
	"github.com/cchalm/sorabot/internal/transport"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Info().Msg("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		logger.Fatal().Msg("Forcing shutdown")
	}()

	return ctx
}

// createHTTPClient returns a client that authenticates with the API key if one is configured, and with the access
// token as a bearer token otherwise
func createHTTPClient(ctx context.Context, c config.Config) *http.Client {
	if c.GoogleAPIKey != "" {
		return &http.Client{Transport: transport.WithAPIKey(nil, c.GoogleAPIKey)}
	}
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: c.GoogleAccessToken},
	)
	return oauth2.NewClient(ctx, tokenSource)
}

func createCompletionClient(
	ctx context.Context,
	c config.Config,
	telemetryProvider *telemetry.Provider,
	onBackoff func(retry int, delay time.Duration),
) *ai.Client {
	gemini := ai.NewGemini(createHTTPClient(ctx, c), c.GeminiBaseURL, c.GeminiModel)
	opts := []ai.ClientOption{
		ai.WithTimeout(c.Timeout),
		ai.WithRetryPolicy(c.RetryDelay, uint64(c.MaxRetries)),
		ai.WithLogger(logger.With().Str("model", gemini.Model()).Logger()),
		ai.WithTracer(telemetryProvider.Tracer("github.com/cchalm/sorabot/internal/ai")),
	}
	if onBackoff != nil {
		opts = append(opts, ai.WithBackoffObserver(onBackoff))
	}
	return ai.NewClient(gemini, opts...)
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:        cfg.TelemetryEnabled,
		Endpoint:       cfg.OTLPEndpoint,
		ServiceVersion: versionInfo.version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig, logger)
}

// shutdownTelemetry flushes spans with a bounded grace period, independent of ctx which may already be canceled
func shutdownTelemetry(provider *telemetry.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to shut down telemetry")
	}
}
