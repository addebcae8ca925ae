package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credentials identify this application to the OAuth token endpoint
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate reports the first missing credential as a ConfigError
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return &ConfigError{Field: "client_id", Err: fmt.Errorf("STRAVA_CLIENT_ID is not set")}
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return &ConfigError{Field: "client_secret", Err: fmt.Errorf("STRAVA_CLIENT_SECRET is not set")}
	}
	return nil
}

// TokenGrant is the result of one token exchange. It lives for a single run.
type TokenGrant struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	ExpiresAtUnix int64  `json:"expires_at"`
	AthleteID     int64  `json:"athlete_id,omitempty"`
	Scope         string `json:"scope,omitempty"`
}

// ExpiresAt returns the expiry as a time.Time
func (g *TokenGrant) ExpiresAt() time.Time {
	return time.Unix(g.ExpiresAtUnix, 0)
}

// Activity is an activity summary or detail record as returned by the API.
// Optional metrics are nil when the upstream omits them. The original JSON
// object is kept so exports reproduce every upstream field.
type Activity struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	SportType          string   `json:"sport_type"`
	Distance           float64  `json:"distance"`
	MovingTime         int64    `json:"moving_time"`
	TotalElevationGain float64  `json:"total_elevation_gain"`
	AverageSpeed       *float64 `json:"average_speed,omitempty"`
	AverageHeartrate   *float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate       *float64 `json:"max_heartrate,omitempty"`
	AverageCadence     *float64 `json:"average_cadence,omitempty"`
	AverageWatts       *float64 `json:"average_watts,omitempty"`
	SufferScore        *float64 `json:"suffer_score,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`
	StartDateLocal     string   `json:"start_date_local"`

	raw json.RawMessage
}

// activityFields has Activity's fields without its JSON methods
type activityFields Activity

// UnmarshalJSON decodes the typed fields and keeps the raw object
func (a *Activity) UnmarshalJSON(data []byte) error {
	var f activityFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Activity(f)
	a.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw upstream object when one was decoded
func (a Activity) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	return json.Marshal(activityFields(a))
}

// MarshalYAML renders the same object MarshalJSON does. Decoding the JSON as
// a YAML node keeps integer ids exact and the upstream key order.
func (a Activity) MarshalYAML() (interface{}, error) {
	data, err := a.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode activity %d: %w", a.ID, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("activity %d: empty document", a.ID)
	}
	root := doc.Content[0]
	blockStyle(root)
	return root, nil
}

// blockStyle drops the JSON flow and quoting styles so the encoder picks YAML's own
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// StartTime parses start_date, the UTC instant the activity began
func (a *Activity) StartTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, a.StartDate)
	return t, err == nil
}

// IsRun reports whether the activity type is exactly "Run"
func (a *Activity) IsRun() bool {
	return a.Type == "Run"
}

// IsRide reports whether the activity type contains "Ride" (Ride, VirtualRide, EBikeRide...)
func (a *Activity) IsRide() bool {
	return strings.Contains(a.Type, "Ride")
}
