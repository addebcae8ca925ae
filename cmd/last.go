package cmd

import (
	"fmt"

	"github.com/iksnae/strava-export/internal"
	"github.com/iksnae/strava-export/internal/export"
	"github.com/iksnae/strava-export/internal/strava"
	"github.com/spf13/cobra"
)

var (
	lastFormat    string
	lastNoHistory bool
)

// lastCmd analyses the most recent activity
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Analyse your most recent activity",
	Long: `Fetch your most recent activity in full detail and export an analysis:
distance, moving time, elevation, heart rate, pace for runs, speed for rides
and an intensity hint derived from the suffer score.

The document is written to strava-last.<ext> in the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateForExport(); err != nil {
			return err
		}
		exporter, err := exporterFor(cmd, lastFormat)
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var (
			client *strava.Client
			latest *internal.Activity
		)
		err = internal.ShowProgressWithSteps(ctx, []internal.ProgressStep{
			{
				Message: "Refreshing access token",
				Fn: func() error {
					client, err = newAPIClient(ctx)
					return err
				},
			},
			{
				Message: "Finding latest activity",
				Fn: func() error {
					latest, err = client.Latest(ctx)
					return err
				},
			},
		})
		if err != nil {
			return err
		}
		if latest == nil {
			internal.PrintInfo("No activities found")
			return nil
		}

		var (
			doc  *internal.ActivityExport
			path string
		)
		err = internal.ShowProgressWithSteps(ctx, []internal.ProgressStep{
			{
				Message: fmt.Sprintf("Fetching activity %d", latest.ID),
				Fn: func() error {
					detail, err := client.GetActivity(ctx, latest.ID)
					if err != nil {
						return err
					}
					doc = internal.NewAssembler(loc).Activity(detail)
					return nil
				},
			},
			{
				Message: "Writing export",
				Fn: func() error {
					path, err = export.WriteFile(cfg.Export.OutputDir, doc, exporter)
					return err
				},
			},
		})
		if err != nil {
			return err
		}

		recordHistory(ctx, lastNoHistory, doc, path, exporter)

		internal.PrintSuccess(fmt.Sprintf("Saved analysis of activity %d to %s", doc.Activity.ID, path))
		printActivitySummary(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lastCmd)
	lastCmd.Flags().StringVarP(&lastFormat, "format", "f", "json", "Export format (json, yaml, md, jsonl)")
	lastCmd.Flags().BoolVar(&lastNoHistory, "no-history", false, "Do not record this export in the history ledger")
}
