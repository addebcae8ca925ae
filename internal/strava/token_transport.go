package strava

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// tokenFields are the only fields sent to the token endpoint
var tokenFields = []string{"client_id", "client_secret", "code", "refresh_token", "grant_type"}

// jsonTokenTransport re-encodes the form body oauth2 builds for token requests
// as a JSON object. Requests to any other URL pass through untouched.
type jsonTokenTransport struct {
	Transport http.RoundTripper
	tokenURL  *url.URL
}

func newJSONTokenTransport(base http.RoundTripper, tokenURL string) (*jsonTokenTransport, error) {
	u, err := url.Parse(tokenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid token URL %q: %w", tokenURL, err)
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &jsonTokenTransport{Transport: base, tokenURL: u}, nil
}

// RoundTrip sends token requests with a JSON body
func (t *jsonTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil ||
		req.URL.Host != t.tokenURL.Host || req.URL.Path != t.tokenURL.Path {
		return t.Transport.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read token request: %w", err)
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token request: %w", err)
	}

	payload := make(map[string]string, len(tokenFields))
	for _, key := range tokenFields {
		if v := form.Get(key); v != "" {
			payload[key] = v
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	cloned := req.Clone(req.Context())
	cloned.Body = io.NopCloser(bytes.NewReader(body))
	cloned.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	cloned.ContentLength = int64(len(body))
	cloned.Header.Set("Content-Type", "application/json")

	return t.Transport.RoundTrip(cloned)
}
