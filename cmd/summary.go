package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/strava-export/internal"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// newTable creates a borderless, left-aligned table
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		internal.LogWarn("Failed to build table: %v", err)
		return
	}
	if err := table.Render(); err != nil {
		internal.LogWarn("Failed to render table: %v", err)
	}
}

// printWindowSummary prints counts by type and totals; day windows also list
// each activity
func printWindowSummary(w io.Writer, doc *internal.WindowExport) {
	s := internal.Summarize(doc.Activities)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d activities", doc.WindowKind, s.Count)))
	if s.Count == 0 {
		return
	}

	rows := make([][]string, 0, len(s.ByType))
	for _, tc := range s.ByType {
		rows = append(rows, []string{tc.Type, strconv.Itoa(tc.Count)})
	}
	renderTable(w, []string{"Type", "Count"}, rows)
	fmt.Fprintf(w, "Total distance: %.1f km\n", s.TotalDistanceKm)
	fmt.Fprintf(w, "Total moving time: %.1f h\n", s.TotalMovingHrs)

	if doc.WindowKind != internal.WindowDay {
		return
	}
	fmt.Fprintln(w)
	rows = make([][]string, 0, len(doc.Activities))
	for i := range doc.Activities {
		a := &doc.Activities[i]
		analysis := internal.Analyze(a)
		rows = append(rows, []string{
			startClock(a.StartDateLocal),
			a.Type,
			a.Name,
			fmt.Sprintf("%.2f", analysis.DistanceKm),
			strconv.Itoa(analysis.MovingTimeMin),
		})
	}
	renderTable(w, []string{"Start", "Type", "Name", "Km", "Min"}, rows)
}

// startClock shows the wall-clock part of an activity's local start time
func startClock(startLocal string) string {
	t, err := time.Parse(time.RFC3339, startLocal)
	if err != nil {
		return startLocal
	}
	return t.Format("15:04")
}

// printActivitySummary prints the analysed fields of the latest activity
func printActivitySummary(w io.Writer, doc *internal.ActivityExport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s)", doc.Activity.Name, doc.Activity.Type)))

	pace := dimStyle.Render("n/a")
	if doc.Performance.AvgPace != nil {
		pace = *doc.Performance.AvgPace
	}
	rows := [][]string{
		{"Start", doc.Activity.StartLocal},
		{"Distance", fmt.Sprintf("%.2f km", doc.Summary.DistanceKm)},
		{"Moving time", fmt.Sprintf("%d min", doc.Summary.MovingTimeMin)},
		{"Elevation gain", fmt.Sprintf("%d m", doc.Summary.ElevationGainM)},
		{"Pace", pace},
		{"Speed", optional(doc.Performance.AvgSpeedKmh, "%.1f km/h")},
		{"Avg heart rate", optional(doc.Summary.AvgHR, "%.0f bpm")},
		{"Intensity", string(doc.Interpretation.IntensityHint)},
	}
	renderTable(w, []string{"Field", "Value"}, rows)
}

func optional(v *float64, format string) string {
	if v == nil {
		return dimStyle.Render("n/a")
	}
	return fmt.Sprintf(format, *v)
}
