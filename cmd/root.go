package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/strava-export/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
	envFile    string
	timezone   string
	outputDir  string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is resolved once per invocation before any subcommand runs
	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strava-export",
	Short: "Export Strava activities for a day, week or month",
	Long: `A CLI tool to export your Strava activities to local files.

It refreshes an access token, pages through your activities for a calendar
window in your time zone and writes one document per run (JSON, YAML,
Markdown or JSONL).

Quick Start:
  strava-export authorize            # Obtain a refresh token once
  strava-export export today         # Activities since local midnight
  strava-export export week          # The last seven days, through today
  strava-export export month -f md   # This month as Markdown
  strava-export last                 # Analyse your latest activity

Credentials are read from STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET and
STRAVA_REFRESH_TOKEN (environment, .env or strava-export.yaml).`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		overrides := map[string]interface{}{}
		if cmd.Flags().Changed("timezone") {
			overrides["export.timezone"] = timezone
		}
		if cmd.Flags().Changed("out") {
			overrides["export.output_dir"] = outputDir
		}

		loaded, err := internal.LoadConfig(internal.LoadOptions{
			ConfigFile: configFile,
			EnvFile:    envFile,
			Overrides:  overrides,
		})
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./strava-export.yaml or ~/.config/strava-export/strava-export.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to load (default ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA time zone for windows and timestamps (default Europe/Istanbul)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "Output directory (default current directory)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
