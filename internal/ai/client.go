package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/sorabot/internal/chat"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 1 * time.Second
	DefaultMaxRetries = 3

	SystemInstruction = "You are a helpful AI assistant. Provide clear, concise answers."

	tracerName = "github.com/cchalm/sorabot/internal/ai"
)

// DefaultGeneration holds the generation parameters sent with every request
var DefaultGeneration = GenerationConfig{
	MaxOutputTokens: 1024,
	Temperature:     0.7,
	TopP:            0.95,
	TopK:            40,
}

// DefaultSafetySettings holds the content-safety thresholds sent with every request
var DefaultSafetySettings = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Client turns user input into assistant turns using a Provider. Requests that are rate limited (HTTP 429) are
// retried with a linear backoff; every other failure is final. Complete never returns an error: failures are logged
// and converted into an assistant turn carrying a message for the user.
type Client struct {
	provider   Provider
	timeout    time.Duration // Per attempt
	retryDelay time.Duration // Base delay; the nth retry waits n*retryDelay
	maxRetries uint64
	logger     zerolog.Logger
	tracer     trace.Tracer
	onBackoff  func(retry int, delay time.Duration)
}

type ClientOption func(*Client)

// WithTimeout bounds each attempt, not the call as a whole
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// WithRetryPolicy sets the base delay of the linear backoff and the maximum number of retries after the first attempt
func WithRetryPolicy(delay time.Duration, maxRetries uint64) ClientOption {
	return func(c *Client) {
		c.retryDelay = delay
		c.maxRetries = maxRetries
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) { c.tracer = tracer }
}

// WithBackoffObserver registers fn to be called before each backoff wait with the 1-based retry number and the delay
func WithBackoffObserver(fn func(retry int, delay time.Duration)) ClientOption {
	return func(c *Client) { c.onBackoff = fn }
}

func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:   provider,
		timeout:    DefaultTimeout,
		retryDelay: DefaultRetryDelay,
		maxRetries: DefaultMaxRetries,
		logger:     zerolog.Nop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends userText, preceded by recentHistory (oldest first), and returns exactly one assistant turn: the
// provider's reply on success, or a user-facing error message otherwise
func (c *Client) Complete(ctx context.Context, userText string, recentHistory []chat.Turn) chat.Turn {
	sessionID := chat.SessionIDFromContext(ctx)
	ctx, span := c.tracer.Start(ctx, "ai.Complete", trace.WithAttributes(
		attribute.String("ai.provider", c.provider.Name()),
		attribute.String("chat.session_id", sessionID),
		attribute.Int("ai.history_turns", len(recentHistory)),
	))
	defer span.End()

	req := buildRequest(userText, recentHistory)
	resp, attempts, err := c.generate(ctx, req)
	span.SetAttributes(attribute.Int("ai.attempts", attempts))
	if err != nil {
		kind := Classify(err)
		c.logger.Error().
			Err(err).
			Str("provider", c.provider.Name()).
			Str("session_id", sessionID).
			Stringer("kind", kind).
			Int("attempts", attempts).
			Msg("Completion failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		span.SetAttributes(attribute.String("ai.error_kind", kind.String()))
		return chat.NewAssistantTurn(kind.Message())
	}

	c.logger.Debug().
		Str("provider", c.provider.Name()).
		Str("session_id", sessionID).
		Int("attempts", attempts).
		Int("response_length", len(resp.Text)).
		Msg("Completion succeeded")
	return chat.NewAssistantTurn(resp.Text, c.provider.Name())
}

func buildRequest(userText string, recentHistory []chat.Turn) Request {
	messages := make([]Message, 0, len(recentHistory)+1)
	for _, turn := range recentHistory {
		messages = append(messages, Message{Role: turn.Role(), Text: turn.Content()})
	}
	messages = append(messages, Message{Role: chat.RoleUser, Text: userText})

	return Request{
		SystemInstruction: SystemInstruction,
		Messages:          messages,
		Generation:        DefaultGeneration,
		SafetySettings:    DefaultSafetySettings,
	}
}

// generate sends req, retrying while the provider reports rate limiting. It returns the number of attempts made
func (c *Client) generate(ctx context.Context, req Request) (Response, int, error) {
	var (
		resp     Response
		attempts int
	)
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempts++
		r, err := c.attempt(ctx, req, attempts)
		if err != nil {
			if Classify(err) == KindRateLimited {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	return resp, attempts, err
}

// attempt makes a single request, bounded by the per-attempt timeout
func (c *Client) attempt(ctx context.Context, req Request, attempt int) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "ai.Attempt", trace.WithAttributes(attribute.Int("ai.attempt", attempt)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			span.SetAttributes(attribute.Int("http.response.status_code", statusErr.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, Classify(err).String())
		c.logger.Debug().Err(err).Int("attempt", attempt).Msg("Attempt failed")
		return Response{}, err
	}
	return resp, nil
}

// backoff returns a fresh linear backoff: the nth retry waits n*retryDelay, for at most maxRetries retries
func (c *Client) backoff() retry.Backoff {
	var retries int
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		retries++
		return c.retryDelay * time.Duration(retries), false
	})
	limited := retry.WithMaxRetries(c.maxRetries, linear)

	return retry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := limited.Next()
		if stop {
			return 0, true
		}
		c.logger.Warn().Int("retry", retries).Dur("delay", delay).Msg("Rate limited, backing off")
		if c.onBackoff != nil {
			c.onBackoff(retries, delay)
		}
		return delay, false
	})
}
