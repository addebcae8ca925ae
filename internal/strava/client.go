package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iksnae/strava-export/internal"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Strava REST API root
	DefaultBaseURL = "https://www.strava.com/api/v3"
	// PageSize is the page size requested by FetchAll; a shorter page ends pagination
	PageSize = 200
)

// Client reads activities with a bearer token. Requests are strictly sequential.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithRateLimit spaces requests to at most perMinute per minute; 0 disables limiting
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// NewClient builds a client that sends accessToken on every request. The
// underlying transport is taken from ctx (oauth2.HTTPClient) when present.
func NewClient(ctx context.Context, baseURL, accessToken string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    oauth2.NewClient(ctx, src),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListParams selects one page of the athlete's activity list. Zero values are omitted.
type ListParams struct {
	After   int64
	Before  int64
	Page    int
	PerPage int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.After != 0 {
		q.Set("after", strconv.FormatInt(p.After, 10))
	}
	if p.Before != 0 {
		q.Set("before", strconv.FormatInt(p.Before, 10))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return q
}

// FetchAll retrieves every activity that started in [afterUnix, beforeUnix],
// in server order. Pagination stops at the first empty or short page. Any
// failed page aborts the whole retrieval and no partial result is returned.
func (c *Client) FetchAll(ctx context.Context, afterUnix, beforeUnix int64) ([]internal.Activity, error) {
	var all []internal.Activity
	for page := 1; ; page++ {
		chunk, err := c.ListPage(ctx, ListParams{After: afterUnix, Before: beforeUnix, Page: page, PerPage: PageSize})
		if err != nil {
			return nil, err
		}
		internal.LogDebug("Fetched page %d: %d activities", page, len(chunk))

		all = append(all, chunk...)
		if len(chunk) < PageSize {
			break
		}
	}
	if all == nil {
		all = []internal.Activity{}
	}
	return all, nil
}

// ListPage requests one page of /athlete/activities. A JSON null body is an empty page.
func (c *Client) ListPage(ctx context.Context, params ListParams) ([]internal.Activity, error) {
	body, err := c.get(ctx, "/athlete/activities", params.query(), "list", params.Page)
	if err != nil {
		return nil, err
	}

	var chunk []internal.Activity
	if err := json.Unmarshal(body, &chunk); err != nil {
		return nil, &internal.FetchError{
			Op:         "list",
			Page:       params.Page,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("failed to decode activity page: %w", err),
		}
	}
	return chunk, nil
}

// Latest returns the athlete's most recent activity summary, or nil when there are none
func (c *Client) Latest(ctx context.Context) (*internal.Activity, error) {
	chunk, err := c.ListPage(ctx, ListParams{PerPage: 1})
	if err != nil {
		return nil, err
	}
	if len(chunk) == 0 {
		return nil, nil
	}
	return &chunk[0], nil
}

// GetActivity returns the detail record for one activity
func (c *Client) GetActivity(ctx context.Context, id int64) (*internal.Activity, error) {
	body, err := c.get(ctx, "/activities/"+strconv.FormatInt(id, 10), nil, "detail", 0)
	if err != nil {
		return nil, err
	}

	var detail *internal.Activity
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, &internal.FetchError{Op: "detail", StatusCode: http.StatusOK, Err: fmt.Errorf("failed to decode activity %d: %w", id, err)}
	}
	if detail == nil {
		return nil, &internal.FetchError{Op: "detail", StatusCode: http.StatusOK, Err: fmt.Errorf("activity %d: empty response", id)}
	}
	return detail, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, op string, page int) ([]byte, error) {
	fail := func(status int, payload string, err error) error {
		return &internal.FetchError{Op: op, Page: page, StatusCode: status, Payload: payload, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fail(0, "", fmt.Errorf("rate limiter: %w", err))
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, string(body), errors.New(resp.Status))
	}
	return body, nil
}
