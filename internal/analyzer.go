package internal

import (
	"fmt"
	"math"
	"sort"
)

// Intensity is a coarse effort classification derived from the suffer score
type Intensity string

const (
	IntensityUnknown  Intensity = "unknown"
	IntensityEasy     Intensity = "easy / recovery"
	IntensityModerate Intensity = "moderate"
	IntensityHard     Intensity = "hard"
)

// ActivityAnalysis holds metrics derived from one activity detail record
type ActivityAnalysis struct {
	DistanceKm     float64
	MovingTimeMin  int
	ElevationGainM int
	AvgHR          *float64
	MaxHR          *float64
	AvgCadence     *float64
	AvgWatts       *float64
	SufferScore    *float64
	AvgPace        *string  // runs only, "M:SS/km"
	AvgSpeedKmh    *float64 // rides only
	Intensity      Intensity
}

// Analyze derives summary and interpretation fields. Missing inputs yield nil or unknown.
func Analyze(a *Activity) ActivityAnalysis {
	analysis := ActivityAnalysis{
		DistanceKm:     roundTo(a.Distance/1000, 2),
		MovingTimeMin:  int(math.Round(float64(a.MovingTime) / 60)),
		ElevationGainM: int(math.Round(a.TotalElevationGain)),
		AvgHR:          a.AverageHeartrate,
		MaxHR:          a.MaxHeartrate,
		AvgCadence:     a.AverageCadence,
		AvgWatts:       a.AverageWatts,
		SufferScore:    a.SufferScore,
		Intensity:      ClassifyIntensity(a.SufferScore),
	}

	if a.IsRun() && a.AverageSpeed != nil {
		if pace, ok := PaceFromSpeed(*a.AverageSpeed); ok {
			formatted := FormatPace(pace)
			analysis.AvgPace = &formatted
		}
	}

	if a.IsRide() && a.AverageSpeed != nil && *a.AverageSpeed > 0 {
		kmh := roundTo(*a.AverageSpeed*3.6, 1)
		analysis.AvgSpeedKmh = &kmh
	}

	return analysis
}

// PaceFromSpeed converts meters per second to minutes per kilometer
func PaceFromSpeed(metersPerSecond float64) (float64, bool) {
	if metersPerSecond <= 0 || math.IsNaN(metersPerSecond) || math.IsInf(metersPerSecond, 0) {
		return 0, false
	}
	return 1000 / metersPerSecond / 60, true
}

// FormatPace renders minutes per kilometer as "M:SS/km"
func FormatPace(minPerKm float64) string {
	totalSec := int(math.Round(minPerKm * 60))
	return fmt.Sprintf("%d:%02d/km", totalSec/60, totalSec%60)
}

// ClassifyIntensity buckets a suffer score: [0,30) easy, [30,60) moderate, [60,∞) hard
func ClassifyIntensity(sufferScore *float64) Intensity {
	switch {
	case sufferScore == nil:
		return IntensityUnknown
	case *sufferScore < 30:
		return IntensityEasy
	case *sufferScore < 60:
		return IntensityModerate
	default:
		return IntensityHard
	}
}

// TypeCount is the number of activities of one type
type TypeCount struct {
	Type  string
	Count int
}

// WindowSummary aggregates a window's activities for console reporting
type WindowSummary struct {
	Count           int
	ByType          []TypeCount // most frequent first, ties by name
	TotalDistanceKm float64
	TotalMovingHrs  float64
}

// Summarize counts activities by type and totals distance and moving time
func Summarize(activities []Activity) WindowSummary {
	counts := make(map[string]int)
	var meters float64
	var seconds int64
	for i := range activities {
		counts[activities[i].Type]++
		meters += activities[i].Distance
		seconds += activities[i].MovingTime
	}

	byType := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		byType = append(byType, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(byType, func(i, j int) bool {
		if byType[i].Count != byType[j].Count {
			return byType[i].Count > byType[j].Count
		}
		return byType[i].Type < byType[j].Type
	})

	return WindowSummary{
		Count:           len(activities),
		ByType:          byType,
		TotalDistanceKm: roundTo(meters/1000, 1),
		TotalMovingHrs:  roundTo(float64(seconds)/3600, 1),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
