package internal

import (
	"fmt"
	"strings"
	"time"
)

// WindowKind names a retrieval window
type WindowKind string

const (
	WindowDay   WindowKind = "day"
	WindowWeek  WindowKind = "week"
	WindowMonth WindowKind = "month"
)

// ISOLayout formats local bounds with millisecond precision and numeric offset
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// Window is an immutable time range used to filter activities by start time.
// AfterUnix is inclusive. BeforeUnix is exclusive for day and month windows
// and inclusive for week windows (EndInclusive).
type Window struct {
	Kind         WindowKind
	Start        time.Time
	End          time.Time
	AfterUnix    int64
	BeforeUnix   int64
	Timezone     string
	EndInclusive bool
}

// ParseWindowKind maps a command-line window name to a WindowKind
func ParseWindowKind(s string) (WindowKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "today":
		return WindowDay, nil
	case "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	default:
		return "", &ConfigError{Field: "window", Err: fmt.Errorf("unsupported window %q (supported: day, today, week, month)", s)}
	}
}

// LoadLocation resolves an IANA zone name; empty names are rejected rather than treated as UTC
func LoadLocation(timezone string) (*time.Location, error) {
	if strings.TrimSpace(timezone) == "" {
		return nil, &ConfigError{Field: "timezone", Err: fmt.Errorf("timezone is required")}
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, &ConfigError{Field: "timezone", Err: err}
	}
	return loc, nil
}

// ResolveWindow computes the bounds of kind around now in timezone
func ResolveWindow(kind WindowKind, now time.Time, timezone string) (Window, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Window{}, err
	}
	local := now.In(loc)

	w := Window{Kind: kind, Timezone: timezone}
	switch kind {
	case WindowDay:
		w.Start = startOfDay(local)
		w.End = w.Start.AddDate(0, 0, 1)
	case WindowWeek:
		// trailing seven days, closed at the last millisecond of today
		w.End = endOfDay(local)
		w.Start = startOfDay(w.End.AddDate(0, 0, -6))
		w.EndInclusive = true
	case WindowMonth:
		w.Start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		w.End = w.Start.AddDate(0, 1, 0)
	default:
		return Window{}, &ConfigError{Field: "window", Err: fmt.Errorf("unsupported window %q", kind)}
	}

	w.AfterUnix = floorUnix(w.Start)
	w.BeforeUnix = floorUnix(w.End)
	return w, nil
}

// FileStem returns the deterministic output name for the window, without extension
func (w Window) FileStem() string {
	switch w.Kind {
	case WindowDay:
		return "strava-today-" + w.Start.Format("2006-01-02")
	case WindowWeek:
		return fmt.Sprintf("strava-week-%s_to_%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	case WindowMonth:
		return "strava-month-" + w.Start.Format("2006-01")
	default:
		return "strava-" + string(w.Kind)
	}
}

// Contains reports whether t falls inside the window, honoring the end-bound semantics
func (w Window) Contains(t time.Time) bool {
	u := floorUnix(t)
	if u < w.AfterUnix {
		return false
	}
	if w.EndInclusive {
		return u <= w.BeforeUnix
	}
	return u < w.BeforeUnix
}

// Outside returns the ids of activities whose start_date falls outside the
// window. Activities without a parseable start_date are not reported.
func (w Window) Outside(activities []Activity) []int64 {
	var ids []int64
	for i := range activities {
		t, ok := activities[i].StartTime()
		if ok && !w.Contains(t) {
			ids = append(ids, activities[i].ID)
		}
	}
	return ids
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// floorUnix drops the sub-second part; Unix() already rounds toward negative infinity
func floorUnix(t time.Time) int64 {
	return t.Unix()
}
