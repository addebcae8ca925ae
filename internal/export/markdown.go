package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/strava-export/internal"
)

// MarkdownExporter exports documents in Markdown format
type MarkdownExporter struct{}

// Export exports a document to Markdown format
func (e *MarkdownExporter) Export(doc internal.Document, w io.Writer) error {
	switch d := doc.(type) {
	case *internal.WindowExport:
		writeWindowMarkdown(d, w)
		return nil
	case *internal.ActivityExport:
		writeActivityMarkdown(d, w)
		return nil
	default:
		return unsupportedDocument(doc)
	}
}

func writeWindowMarkdown(d *internal.WindowExport, w io.Writer) {
	_, _ = fmt.Fprintf(w, "# Strava %s export\n\n", d.WindowKind)

	_, _ = fmt.Fprintf(w, "**Timezone:** %s  \n", d.Timezone)
	_, _ = fmt.Fprintf(w, "**From:** %s  \n", d.StartLocal)
	if d.EndInclusive {
		_, _ = fmt.Fprintf(w, "**To (inclusive):** %s  \n", d.EndLocal)
	} else {
		_, _ = fmt.Fprintf(w, "**To (exclusive):** %s  \n", d.EndLocal)
	}
	_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", d.ExportedAt)
	_, _ = fmt.Fprintf(w, "**Activities:** %d\n\n", len(d.Activities))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Activities\n\n")

	if len(d.Activities) == 0 {
		_, _ = fmt.Fprintf(w, "_No activities in this window._\n")
		return
	}

	_, _ = fmt.Fprintf(w, "| Start | Type | Name | Distance (km) | Moving (min) |\n")
	_, _ = fmt.Fprintf(w, "|---|---|---|---:|---:|\n")
	for i := range d.Activities {
		a := &d.Activities[i]
		analysis := internal.Analyze(a)
		_, _ = fmt.Fprintf(w, "| %s | %s | %s | %.2f | %d |\n",
			a.StartDateLocal, escapeMarkdown(a.Type), escapeMarkdown(a.Name), analysis.DistanceKm, analysis.MovingTimeMin)
	}

	summary := internal.Summarize(d.Activities)
	_, _ = fmt.Fprintf(w, "\n**Total distance:** %.1f km  \n", summary.TotalDistanceKm)
	_, _ = fmt.Fprintf(w, "**Total moving time:** %.1f h\n", summary.TotalMovingHrs)
}

func writeActivityMarkdown(d *internal.ActivityExport, w io.Writer) {
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(d.Activity.Name))

	_, _ = fmt.Fprintf(w, "**Type:** %s (%s)  \n", d.Activity.Type, d.Activity.SportType)
	_, _ = fmt.Fprintf(w, "**Start:** %s  \n", d.Activity.StartLocal)
	_, _ = fmt.Fprintf(w, "**Exported:** %s\n\n", d.ExportedAt)

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Summary\n\n")
	_, _ = fmt.Fprintf(w, "- Distance: %.2f km\n", d.Summary.DistanceKm)
	_, _ = fmt.Fprintf(w, "- Moving time: %d min\n", d.Summary.MovingTimeMin)
	_, _ = fmt.Fprintf(w, "- Elevation gain: %d m\n", d.Summary.ElevationGainM)
	_, _ = fmt.Fprintf(w, "- Average heart rate: %s\n", optionalNumber(d.Summary.AvgHR))
	_, _ = fmt.Fprintf(w, "- Max heart rate: %s\n", optionalNumber(d.Summary.MaxHR))
	_, _ = fmt.Fprintf(w, "- Average cadence: %s\n", optionalNumber(d.Summary.AvgCadence))
	_, _ = fmt.Fprintf(w, "- Average power: %s\n", optionalNumber(d.Summary.AvgWatts))
	_, _ = fmt.Fprintf(w, "- Suffer score: %s\n\n", optionalNumber(d.Summary.SufferScore))

	_, _ = fmt.Fprintf(w, "## Performance\n\n")
	if d.Performance.AvgPace != nil {
		_, _ = fmt.Fprintf(w, "- Average pace: %s\n", *d.Performance.AvgPace)
	}
	if d.Performance.AvgSpeedKmh != nil {
		_, _ = fmt.Fprintf(w, "- Average speed: %.1f km/h\n", *d.Performance.AvgSpeedKmh)
	}
	if d.Performance.AvgPace == nil && d.Performance.AvgSpeedKmh == nil {
		_, _ = fmt.Fprintf(w, "- n/a\n")
	}

	_, _ = fmt.Fprintf(w, "\n**Intensity:** %s\n", d.Interpretation.IntensityHint)
}

func optionalNumber(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *v)
}

// escapeMarkdown escapes emphasis markers and table separators in user text
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
