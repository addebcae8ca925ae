package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/iksnae/strava-export/internal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// AuthScope is the scope requested during authorization
const AuthScope = "read,activity:read_all"

// TokenProvider exchanges authorization codes and refresh tokens for access
// tokens. Every call is exactly one POST with a JSON body to the token
// endpoint; nothing is cached or retried.
type TokenProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// DefaultEndpoint returns the Strava endpoint with credentials sent in the request body
func DefaultEndpoint() oauth2.Endpoint {
	ep := endpoints.Strava
	ep.AuthStyle = oauth2.AuthStyleInParams
	return ep
}

// NewTokenProvider validates creds and builds a provider. Empty endpoint URLs
// fall back to DefaultEndpoint; a nil httpClient uses http.DefaultClient.
func NewTokenProvider(creds internal.Credentials, endpoint oauth2.Endpoint, redirectURL string, httpClient *http.Client) (*TokenProvider, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	def := DefaultEndpoint()
	if endpoint.AuthURL == "" {
		endpoint.AuthURL = def.AuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = def.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	transport, err := newJSONTokenTransport(httpClient.Transport, endpoint.TokenURL)
	if err != nil {
		return nil, &internal.ConfigError{Field: "token_url", Err: err}
	}
	client := *httpClient
	client.Transport = transport

	return &TokenProvider{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
		},
		httpClient: &client,
	}, nil
}

// AuthCodeURL returns the URL the user visits to grant access
func (p *TokenProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "force"),
		oauth2.SetAuthURLParam("scope", AuthScope),
	)
}

// Authorize exchanges an authorization code for a token grant
func (p *TokenProvider) Authorize(ctx context.Context, code string) (*internal.TokenGrant, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &internal.AuthError{Op: "authorize", Err: errors.New("authorization code is empty")}
	}

	tok, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, authError("authorize", err)
	}
	internal.LogDebug("Authorization code exchanged")
	return grantFromToken(tok), nil
}

// Refresh exchanges a long-lived refresh token for a new access token
func (p *TokenProvider) Refresh(ctx context.Context, refreshToken string) (*internal.TokenGrant, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, &internal.ConfigError{Field: "refresh_token", Err: errors.New("STRAVA_REFRESH_TOKEN is not set")}
	}

	// an empty access token forces the source to hit the token endpoint
	src := p.config.TokenSource(p.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, authError("refresh", err)
	}
	internal.LogDebug("Access token refreshed")
	return grantFromToken(tok), nil
}

func (p *TokenProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func authError(op string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return &internal.AuthError{Op: op, StatusCode: status, Payload: string(rErr.Body), Err: err}
	}
	return &internal.AuthError{Op: op, Err: err}
}

func grantFromToken(tok *oauth2.Token) *internal.TokenGrant {
	grant := &internal.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}

	if v, ok := extraInt(tok.Extra("expires_at")); ok {
		grant.ExpiresAtUnix = v
	} else if !tok.Expiry.IsZero() {
		grant.ExpiresAtUnix = tok.Expiry.Unix()
	}

	if athlete, ok := tok.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := extraInt(athlete["id"]); ok {
			grant.AthleteID = id
		}
	}
	return grant
}

func extraInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// String hides secrets when a provider ends up in a log line
func (p *TokenProvider) String() string {
	return fmt.Sprintf("TokenProvider{client_id=%s token_url=%s}", p.config.ClientID, p.config.Endpoint.TokenURL)
}
