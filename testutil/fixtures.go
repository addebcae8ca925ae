package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

// Token values handed out by FakeStrava
const (
	FakeAccessToken  = "fake-access-token"
	FakeRefreshToken = "fake-refresh-token"
	FakeExpiresAt    = int64(1735689600)
	FakeAthleteID    = int64(12345)
)

// FakeStrava is an in-process stand-in for the Strava token endpoint and REST API
type FakeStrava struct {
	Server *httptest.Server

	mu             sync.Mutex
	activities     []json.RawMessage
	details        map[int64]json.RawMessage
	tokenRequests  []url.Values
	tokenTypes     []string
	listRequests   []url.Values
	detailRequests []string

	// TokenStatus and TokenBody replace the token response when TokenStatus is set
	TokenStatus int
	TokenBody   string
	// FailPage makes that list page answer FailStatus with FailBody
	FailPage   int
	FailStatus int
	FailBody   string
	// NullPages answers list requests with a JSON null body
	NullPages bool
}

// NewFakeStrava starts a fake server serving activities in the given order
func NewFakeStrava(t *testing.T, activities ...json.RawMessage) *FakeStrava {
	t.Helper()
	f := &FakeStrava{
		activities: activities,
		details:    make(map[int64]json.RawMessage),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST("/oauth/token", f.handleToken)
	e.GET("/api/v3/athlete/activities", f.handleList, f.requireBearer)
	e.GET("/api/v3/activities/:id", f.handleDetail, f.requireBearer)

	f.Server = httptest.NewServer(e)
	t.Cleanup(f.Server.Close)
	return f
}

// TokenURL returns the fake token endpoint
func (f *FakeStrava) TokenURL() string { return f.Server.URL + "/oauth/token" }

// AuthURL returns a fake authorization page URL
func (f *FakeStrava) AuthURL() string { return f.Server.URL + "/oauth/authorize" }

// APIBaseURL returns the fake REST root
func (f *FakeStrava) APIBaseURL() string { return f.Server.URL + "/api/v3" }

// SetDetail registers the detail record served for one activity id
func (f *FakeStrava) SetDetail(id int64, detail json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[id] = detail
}

// TokenRequests returns the JSON bodies posted to the token endpoint as fields
func (f *FakeStrava) TokenRequests() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.tokenRequests...)
}

// TokenContentTypes returns the Content-Type of every token request, in order
func (f *FakeStrava) TokenContentTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokenTypes...)
}

// ListRequests returns the query of every list request, in order
func (f *FakeStrava) ListRequests() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.listRequests...)
}

// DetailRequests returns the ids requested from the detail endpoint
func (f *FakeStrava) DetailRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detailRequests...)
}

func (f *FakeStrava) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+FakeAccessToken {
			return c.JSONBlob(http.StatusUnauthorized, []byte(`{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`))
		}
		return next(c)
	}
}

func (f *FakeStrava) handleToken(c echo.Context) error {
	var body map[string]string
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Bad Request", "error": err.Error()})
	}
	form := url.Values{}
	for k, v := range body {
		form.Set(k, v)
	}
	f.mu.Lock()
	f.tokenRequests = append(f.tokenRequests, form)
	f.tokenTypes = append(f.tokenTypes, c.Request().Header.Get(echo.HeaderContentType))
	f.mu.Unlock()

	if f.TokenStatus != 0 {
		return c.JSONBlob(f.TokenStatus, []byte(f.TokenBody))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token_type":    "Bearer",
		"access_token":  FakeAccessToken,
		"refresh_token": FakeRefreshToken,
		"expires_at":    FakeExpiresAt,
		"expires_in":    21600,
		"athlete":       map[string]interface{}{"id": FakeAthleteID},
	})
}

func (f *FakeStrava) handleList(c echo.Context) error {
	query := c.QueryParams()
	f.mu.Lock()
	f.listRequests = append(f.listRequests, query)
	f.mu.Unlock()

	page := atoiDefault(query.Get("page"), 1)
	perPage := atoiDefault(query.Get("per_page"), 30)

	if f.FailPage == page && f.FailStatus != 0 {
		return c.JSONBlob(f.FailStatus, []byte(f.FailBody))
	}
	if f.NullPages {
		return c.JSONBlob(http.StatusOK, []byte("null"))
	}

	start := (page - 1) * perPage
	if start > len(f.activities) {
		start = len(f.activities)
	}
	end := start + perPage
	if end > len(f.activities) {
		end = len(f.activities)
	}
	chunk := f.activities[start:end]
	if chunk == nil {
		chunk = []json.RawMessage{}
	}
	return c.JSON(http.StatusOK, chunk)
}

func (f *FakeStrava) handleDetail(c echo.Context) error {
	idParam := c.Param("id")
	f.mu.Lock()
	f.detailRequests = append(f.detailRequests, idParam)
	f.mu.Unlock()

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return c.JSONBlob(http.StatusBadRequest, []byte(`{"message":"Bad Request"}`))
	}

	f.mu.Lock()
	detail, ok := f.details[id]
	f.mu.Unlock()
	if !ok {
		return c.JSONBlob(http.StatusNotFound, []byte(`{"message":"Record Not Found"}`))
	}
	return c.JSONBlob(http.StatusOK, detail)
}

// MakeActivities builds n activity summaries with ids 1..n, alternating runs and rides
func MakeActivities(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := 0; i < n; i++ {
		typ := "Run"
		if i%2 == 1 {
			typ = "Ride"
		}
		out[i] = json.RawMessage(fmt.Sprintf(
			`{"id":%d,"name":"Activity %d","type":"%s","sport_type":"%s","distance":%d,"moving_time":%d,"total_elevation_gain":10,"start_date_local":"2025-03-15T07:00:00Z","kudos_count":%d}`,
			i+1, i+1, typ, typ, 5000+i, 1500+i, i%7))
	}
	return out
}

// RunDetail is a 10 km, 50 minute run detail record
func RunDetail(id int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%d,"name":"Evening Run","type":"Run","sport_type":"Run","distance":10000,"moving_time":3000,"total_elevation_gain":55.2,"average_speed":3.3333333333333335,"average_heartrate":148.3,"max_heartrate":171,"suffer_score":42,"start_date_local":"2025-03-14T18:30:00Z"}`,
		id))
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
