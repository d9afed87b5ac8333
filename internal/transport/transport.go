package transport

import (
	"net/http"
)

// APIKeyTransport authenticates requests by adding an API key as a query parameter, which is how the Gemini API
// accepts static keys
type APIKeyTransport struct {
	base  http.RoundTripper
	param string
	key   string
}

// WithAPIKey wraps base so that every request carries key in the "key" query parameter. A nil base means
// http.DefaultTransport
func WithAPIKey(base http.RoundTripper, key string) *APIKeyTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &APIKeyTransport{base: base, param: "key", key: key}
}

func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// A RoundTripper must not modify the caller's request, so add the key to a copy
	authed := req.Clone(req.Context())
	query := authed.URL.Query()
	query.Set(t.param, t.key)
	authed.URL.RawQuery = query.Encode()

	return t.base.RoundTrip(authed)
}
