package telemetry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "sorabot"

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string // OTLP/HTTP collector host:port; empty means the exporter's default
	ServiceVersion string
}

// Provider manages the tracer provider. When telemetry is disabled it hands out no-op tracers
type Provider struct {
	enabled        bool
	tracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
	logger         zerolog.Logger
}

// NewProvider creates a new telemetry provider and installs it as the global tracer provider
func NewProvider(ctx context.Context, config TelemetryConfig, logger zerolog.Logger) (*Provider, error) {
	if !config.Enabled {
		logger.Debug().Msg("Telemetry disabled")
		return &Provider{
			tracerProvider: noop.NewTracerProvider(),
			shutdown:       func(context.Context) error { return nil },
			logger:         logger,
		}, nil
	}

	opts := []otlptracehttp.Option{}
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return newSDKProvider(exporter, config, logger), nil
}

func newSDKProvider(exporter sdktrace.SpanExporter, config TelemetryConfig, logger zerolog.Logger) *Provider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", config.ServiceVersion),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info().Str("endpoint", config.Endpoint).Msg("Telemetry enabled")
	return &Provider{
		enabled:        true,
		tracerProvider: tp,
		shutdown:       tp.Shutdown,
		logger:         logger,
	}
}

// Tracer returns a named tracer from the provider
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tracerProvider.Tracer(name)
}

func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes pending spans and shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	p.logger.Debug().Msg("Shutting down telemetry provider")
	if err := p.shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
