package callback

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iksnae/strava-export/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExchanger struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (s *stubExchanger) AuthCodeURL(string) string {
	return "https://www.strava.com/oauth/authorize?client_id=4242&scope=read,activity:read_all"
}

func (s *stubExchanger) Authorize(_ context.Context, code string) (*internal.TokenGrant, error) {
	s.mu.Lock()
	s.codes = append(s.codes, code)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &internal.TokenGrant{AccessToken: "at-" + code, RefreshToken: "rt", ExpiresAtUnix: 1700000000, AthleteID: 7}, nil
}

func (s *stubExchanger) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestExchangeEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{name: "authorization denied", query: "?error=access_denied", wantStatus: http.StatusBadRequest, wantBody: "Authorization error: access_denied"},
		{name: "missing code", query: "?scope=read", wantStatus: http.StatusBadRequest, wantBody: "Missing code query param."},
		{
			name:       "exchange rejected",
			query:      "?code=bad",
			err:        &internal.AuthError{Op: "authorize", StatusCode: 400, Payload: `{"message":"Bad Request"}`},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `Token exchange failed: {"message":"Bad Request"}`,
			wantCalls:  1,
		},
		{
			name:       "transport failure",
			query:      "?code=bad",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Token exchange failed: connection refused",
			wantCalls:  1,
		},
		{name: "success", query: "?code=good&scope=read,activity:read_all", wantStatus: http.StatusOK, wantBody: "Authorized", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &stubExchanger{err: tt.err}
			s := NewServer(ex, "127.0.0.1:0")
			ts := httptest.NewServer(s.Handler())
			defer ts.Close()

			status, body := get(t, ts.URL+"/exchange_token"+tt.query)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
			assert.Equal(t, tt.wantCalls, ex.calls())

			if tt.wantStatus == http.StatusOK {
				select {
				case grant := <-s.Grants():
					assert.Equal(t, "at-good", grant.AccessToken)
					assert.Equal(t, "read,activity:read_all", grant.Scope)
				default:
					t.Fatal("grant was not delivered")
				}
			} else {
				assert.Empty(t, s.Grants())
			}
		})
	}
}

func TestIndexPage(t *testing.T) {
	ex := &stubExchanger{}
	s := NewServer(ex, "127.0.0.1:0")
	var mu sync.Mutex
	var opened []string
	s.OpenBrowser = func(url string) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, url)
		return errors.New("no display")
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	status, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<a href="https://www.strava.com/oauth/authorize?client_id=4242&amp;scope=read,activity:read_all">`)

	get(t, ts.URL+"/")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{ex.AuthCodeURL("")}, opened, "browser opened once, failures ignored")
}

func TestRun_ReturnsFirstGrant(t *testing.T) {
	s := NewServer(&stubExchanger{}, "127.0.0.1:0")

	type result struct {
		grant *internal.TokenGrant
		err   error
	}
	done := make(chan result, 1)
	go func() {
		g, err := s.Run(context.Background())
		done <- result{g, err}
	}()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	status, _ := get(t, "http://"+s.Addr().String()+"/exchange_token?code=first")
	assert.Equal(t, http.StatusOK, status)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "at-first", r.grant.AccessToken)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a successful exchange")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	s := NewServer(&stubExchanger{}, "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRedirectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/exchange_token", RedirectURL(3000))
}
