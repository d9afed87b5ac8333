package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, KindOther},
		{"401", &StatusError{StatusCode: http.StatusUnauthorized}, KindUnauthorized},
		{"403", &StatusError{StatusCode: http.StatusForbidden}, KindUnauthorized},
		{"invalid key reason", &StatusError{StatusCode: http.StatusBadRequest, Reason: "API_KEY_INVALID"}, KindUnauthorized},
		{"other 400", &StatusError{StatusCode: http.StatusBadRequest}, KindOther},
		{"429", &StatusError{StatusCode: http.StatusTooManyRequests}, KindRateLimited},
		{"wrapped 429", fmt.Errorf("attempt 4: %w", &StatusError{StatusCode: http.StatusTooManyRequests}), KindRateLimited},
		{"retryable 429", retry.RetryableError(&StatusError{StatusCode: http.StatusTooManyRequests}), KindRateLimited},
		{"500", &StatusError{StatusCode: http.StatusInternalServerError}, KindOther},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", &url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}, KindTimeout},
		{"canceled", &url.Error{Op: "Post", URL: "http://x", Err: context.Canceled}, KindOther},
		{"plain", errors.New("boom"), KindOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}

func TestErrorKind_Message(t *testing.T) {
	assert.Equal(t, "Invalid API key. Please check your credentials.", KindUnauthorized.Message())
	assert.Equal(t, "Rate limit exceeded. Please try again in a moment.", KindRateLimited.Message())
	assert.Equal(t, "Request timed out. Please try again.", KindTimeout.Message())
	assert.Equal(t, "Error fetching response", KindOther.Message())
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "Resource has been exhausted"}
	assert.Equal(t, "provider returned HTTP 429 RESOURCE_EXHAUSTED: Resource has been exhausted", err.Error())
	assert.Equal(t, "provider returned HTTP 500", (&StatusError{StatusCode: 500}).Error())
}
