package cmd

import (
	"fmt"
	"time"

	"github.com/iksnae/strava-export/internal"
	"github.com/iksnae/strava-export/internal/export"
	"github.com/iksnae/strava-export/internal/strava"
	"github.com/spf13/cobra"
)

var (
	exportFormat    string
	exportNoHistory bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <day|today|week|month>",
	Short: "Export activities for a day, week or month window",
	Long: `Export every activity that started within a time window in the
configured time zone.

  day, today  local midnight until the next midnight
  week        the last seven days, through today 23:59:59.999 (end inclusive)
  month       the 1st at 00:00 until the 1st of next month

One file is written per run, named after the window, e.g.
strava-week-2025-03-10_to_2025-03-16.json.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"day", "today", "week", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := internal.ParseWindowKind(args[0])
		if err != nil {
			return err
		}
		if err := cfg.ValidateForExport(); err != nil {
			return err
		}
		exporter, err := exporterFor(cmd, exportFormat)
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		window, err := internal.ResolveWindow(kind, time.Now(), cfg.Export.Timezone)
		if err != nil {
			return err
		}
		internal.LogDebug("Window %s: after=%d before=%d", window.Kind, window.AfterUnix, window.BeforeUnix)

		ctx := cmd.Context()
		var (
			client     *strava.Client
			activities []internal.Activity
			doc        *internal.WindowExport
			path       string
		)
		steps := []internal.ProgressStep{
			{
				Message: "Refreshing access token",
				Fn: func() error {
					client, err = newAPIClient(ctx)
					return err
				},
			},
			{
				Message: fmt.Sprintf("Fetching %s activities", window.Kind),
				Fn: func() error {
					activities, err = client.FetchAll(ctx, window.AfterUnix, window.BeforeUnix)
					if err != nil {
						return err
					}
					if stray := window.Outside(activities); len(stray) > 0 {
						internal.LogWarn("%d activities start outside the %s window: %v", len(stray), window.Kind, stray)
					}
					return nil
				},
			},
			{
				Message: "Writing export",
				Fn: func() error {
					doc = internal.NewAssembler(loc).Window(window, activities)
					path, err = export.WriteFile(cfg.Export.OutputDir, doc, exporter)
					return err
				},
			},
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		recordHistory(ctx, exportNoHistory, doc, path, exporter)

		internal.PrintSuccess(fmt.Sprintf("Saved %d activities to %s", doc.ActivityCount(), path))
		printWindowSummary(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md, jsonl)")
	exportCmd.Flags().BoolVar(&exportNoHistory, "no-history", false, "Do not record this export in the history ledger")
}
