package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNoCandidates is returned when a response carries no completion, e.g. because the prompt was blocked
var ErrNoCandidates = errors.New("response contains no candidates")

// StatusError reports a non-2xx response from the provider
type StatusError struct {
	StatusCode int
	Status     string // Provider status string, e.g. "RESOURCE_EXHAUSTED"
	Message    string
	Reason     string // Machine-readable reason from the error details, e.g. "API_KEY_INVALID"
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("provider returned HTTP %d", e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// ErrorKind classifies a failed completion for reporting to the user
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindUnauthorized
	KindRateLimited
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Message returns the text shown to the user in place of an assistant reply
func (k ErrorKind) Message() string {
	switch k {
	case KindUnauthorized:
		return "Invalid API key. Please check your credentials."
	case KindRateLimited:
		return "Rate limit exceeded. Please try again in a moment."
	case KindTimeout:
		return "Request timed out. Please try again."
	default:
		return "Error fetching response"
	}
}

// Classify maps an error returned by a Provider, or by the retry loop around it, to an ErrorKind
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized,
			statusErr.StatusCode == http.StatusForbidden,
			statusErr.Reason == "API_KEY_INVALID":
			return KindUnauthorized
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimited
		default:
			return KindOther
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
}
