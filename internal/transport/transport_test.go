package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyTransport_AddsKey(t *testing.T) {
	var gotKey, gotAlt, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotAlt = r.URL.Query().Get("alt")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: WithAPIKey(nil, "secret")}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/models/m:generateContent?alt=json", strings.NewReader("{}"))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "json", gotAlt)
	assert.Equal(t, "{}", gotBody)
	// The caller's request is left untouched
	assert.Empty(t, req.URL.Query().Get("key"))
}
