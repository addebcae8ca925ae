package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is an assembled export, ready to be handed to an exporter
type Document interface {
	// Kind is "day", "week", "month" or "last"
	Kind() string
	// FileStem is the output file name without extension
	FileStem() string
	// ActivityCount is the number of activities the document carries
	ActivityCount() int
}

// KindLast identifies the latest-activity document
const KindLast = "last"

// WindowExport is the document for a day, week or month retrieval.
// Its JSON keys are written in a fixed order and depend on the window kind.
type WindowExport struct {
	ExportedAt   string
	Timezone     string
	WindowKind   WindowKind
	StartLocal   string
	EndLocal     string
	EndInclusive bool
	AfterUnix    int64
	BeforeUnix   int64
	Activities   []Activity
}

// Kind implements Document
func (d *WindowExport) Kind() string { return string(d.WindowKind) }

// ActivityCount implements Document
func (d *WindowExport) ActivityCount() int { return len(d.Activities) }

// FileStem implements Document
func (d *WindowExport) FileStem() string {
	start, errStart := time.Parse(ISOLayout, d.StartLocal)
	end, errEnd := time.Parse(ISOLayout, d.EndLocal)
	if errStart != nil || errEnd != nil {
		return "strava-" + string(d.WindowKind)
	}
	w := Window{Kind: d.WindowKind, Start: start, End: end}
	return w.FileStem()
}

func (d *WindowExport) startKey() string {
	return string(d.WindowKind) + "_start_local"
}

func (d *WindowExport) endKey() string {
	if d.WindowKind == WindowMonth {
		return "month_end_local_exclusive"
	}
	return string(d.WindowKind) + "_end_local"
}

type orderedField struct {
	key   string
	value interface{}
}

func (d *WindowExport) fields() []orderedField {
	activities := d.Activities
	if activities == nil {
		activities = []Activity{}
	}
	return []orderedField{
		{"exported_at", d.ExportedAt},
		{"timezone", d.Timezone},
		{d.startKey(), d.StartLocal},
		{d.endKey(), d.EndLocal},
		{"after_unix", d.AfterUnix},
		{"before_unix", d.BeforeUnix},
		{"count", len(d.Activities)},
		{"activities", activities},
	}
}

// MarshalJSON writes the document keys in their fixed order
func (d *WindowExport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.key)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a window document, inferring its kind from the start key
func (d *WindowExport) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*d = WindowExport{}
	for _, kind := range []WindowKind{WindowDay, WindowWeek, WindowMonth} {
		if _, ok := obj[string(kind)+"_start_local"]; ok {
			d.WindowKind = kind
			break
		}
	}
	if d.WindowKind == "" {
		return fmt.Errorf("window document has no day, week or month start key")
	}
	d.EndInclusive = d.WindowKind == WindowWeek

	targets := map[string]interface{}{
		"exported_at": &d.ExportedAt,
		"timezone":    &d.Timezone,
		d.startKey():  &d.StartLocal,
		d.endKey():    &d.EndLocal,
		"after_unix":  &d.AfterUnix,
		"before_unix": &d.BeforeUnix,
		"activities":  &d.Activities,
	}
	for key, target := range targets {
		raw, ok := obj[key]
		if !ok {
			return fmt.Errorf("window document is missing %q", key)
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}

	var count int
	if raw, ok := obj["count"]; ok {
		if err := json.Unmarshal(raw, &count); err != nil {
			return fmt.Errorf("failed to decode count: %w", err)
		}
		if count != len(d.Activities) {
			return fmt.Errorf("count %d does not match %d activities", count, len(d.Activities))
		}
	}
	return nil
}

// MarshalYAML builds a mapping node so YAML output keeps the JSON key order
func (d *WindowExport) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range d.fields() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key}
		val := &yaml.Node{}
		if err := val.Encode(f.value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.key, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// ActivityExport is the analyzed latest-activity document
type ActivityExport struct {
	ExportedAt     string            `json:"exported_at" yaml:"exported_at"`
	Activity       ActivityRef       `json:"activity" yaml:"activity"`
	Summary        ActivitySummary   `json:"summary" yaml:"summary"`
	Performance    ActivityPerf      `json:"performance" yaml:"performance"`
	Interpretation ActivityInterpret `json:"interpretation" yaml:"interpretation"`
}

// ActivityRef identifies the analyzed activity
type ActivityRef struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	SportType  string `json:"sport_type" yaml:"sport_type"`
	StartLocal string `json:"start_local" yaml:"start_local"`
}

// ActivitySummary holds normalized metrics; absent upstream values are null
type ActivitySummary struct {
	DistanceKm     float64  `json:"distance_km" yaml:"distance_km"`
	MovingTimeMin  int      `json:"moving_time_min" yaml:"moving_time_min"`
	ElevationGainM int      `json:"elevation_gain_m" yaml:"elevation_gain_m"`
	AvgHR          *float64 `json:"avg_hr" yaml:"avg_hr"`
	MaxHR          *float64 `json:"max_hr" yaml:"max_hr"`
	AvgCadence     *float64 `json:"avg_cadence" yaml:"avg_cadence"`
	AvgWatts       *float64 `json:"avg_watts" yaml:"avg_watts"`
	SufferScore    *float64 `json:"suffer_score" yaml:"suffer_score"`
}

// ActivityPerf carries pace for runs and speed for rides
type ActivityPerf struct {
	AvgPace     *string  `json:"avg_pace" yaml:"avg_pace"`
	AvgSpeedKmh *float64 `json:"avg_speed_kmh" yaml:"avg_speed_kmh"`
}

// ActivityInterpret holds the intensity hint
type ActivityInterpret struct {
	IntensityHint Intensity `json:"intensity_hint" yaml:"intensity_hint"`
}

// Kind implements Document
func (d *ActivityExport) Kind() string { return KindLast }

// FileStem implements Document
func (d *ActivityExport) FileStem() string { return "strava-last" }

// ActivityCount implements Document
func (d *ActivityExport) ActivityCount() int { return 1 }

// Assembler composes export documents stamped in a fixed zone
type Assembler struct {
	Location *time.Location
	Now      func() time.Time
}

// NewAssembler returns an Assembler using the wall clock
func NewAssembler(loc *time.Location) *Assembler {
	return &Assembler{Location: loc, Now: time.Now}
}

func (a *Assembler) stamp() string {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc).Format(ISOLayout)
}

// Window builds the document for a resolved window and its activities, in server order
func (a *Assembler) Window(w Window, activities []Activity) *WindowExport {
	if activities == nil {
		activities = []Activity{}
	}
	return &WindowExport{
		ExportedAt:   a.stamp(),
		Timezone:     w.Timezone,
		WindowKind:   w.Kind,
		StartLocal:   w.Start.Format(ISOLayout),
		EndLocal:     w.End.Format(ISOLayout),
		EndInclusive: w.EndInclusive,
		AfterUnix:    w.AfterUnix,
		BeforeUnix:   w.BeforeUnix,
		Activities:   activities,
	}
}

// Activity analyzes one detail record and builds its document
func (a *Assembler) Activity(detail *Activity) *ActivityExport {
	analysis := Analyze(detail)
	return &ActivityExport{
		ExportedAt: a.stamp(),
		Activity: ActivityRef{
			ID:         detail.ID,
			Name:       detail.Name,
			Type:       detail.Type,
			SportType:  detail.SportType,
			StartLocal: detail.StartDateLocal,
		},
		Summary: ActivitySummary{
			DistanceKm:     analysis.DistanceKm,
			MovingTimeMin:  analysis.MovingTimeMin,
			ElevationGainM: analysis.ElevationGainM,
			AvgHR:          analysis.AvgHR,
			MaxHR:          analysis.MaxHR,
			AvgCadence:     analysis.AvgCadence,
			AvgWatts:       analysis.AvgWatts,
			SufferScore:    analysis.SufferScore,
		},
		Performance: ActivityPerf{
			AvgPace:     analysis.AvgPace,
			AvgSpeedKmh: analysis.AvgSpeedKmh,
		},
		Interpretation: ActivityInterpret{IntensityHint: analysis.Intensity},
	}
}
