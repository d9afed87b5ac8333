// Package ai sends chat turns to a generative-language provider and turns the outcome, success or failure, into an
// assistant turn.
package ai

import (
	"context"

	"github.com/cchalm/sorabot/internal/chat"
)

// Provider sends a single generation request to a generative-language service. Exactly one provider is active in a
// Client; the interface exists so the client's retry and error handling don't depend on a particular wire format
type Provider interface {
	// Name identifies the provider to users, e.g. as the source tag on an assistant turn
	Name() string
	// Generate sends req and returns the best completion. Non-2xx responses are reported as *StatusError
	Generate(ctx context.Context, req Request) (Response, error)
}

// Message is one entry of the context sent to the provider
type Message struct {
	Role chat.Role
	Text string
}

// GenerationConfig controls sampling and output length
type GenerationConfig struct {
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	TopK            int
}

// SafetySetting is a content-safety threshold for one harm category
type SafetySetting struct {
	Category  string
	Threshold string
}

type Request struct {
	SystemInstruction string
	Messages          []Message // Oldest first; the last message is the new user input
	Generation        GenerationConfig
	SafetySettings    []SafetySetting
}

type Response struct {
	Text string
}
