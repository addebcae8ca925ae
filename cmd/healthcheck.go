package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/strava-export/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
	healthcheckOnline  bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that strava-export is configured and can reach Strava",
	Long: `Check the health of strava-export by verifying:
  • Credentials and refresh token are configured
  • The time zone resolves and today's window can be computed
  • The output directory is writable
  • The export history ledger can be opened
  • With --online, that the refresh token is accepted by Strava

This command is useful for debugging configuration, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Strava Export Health Check"))
		fmt.Fprintln(out)

		failed := 0
		check := func(step string, fn func() (string, error)) {
			fmt.Fprintln(out, infoStyle.Render(step))
			detail, err := fn()
			if err != nil {
				failed++
				fmt.Fprintln(out, errorStyle.Render("❌ "+err.Error()))
			} else {
				fmt.Fprintln(out, successStyle.Render("✅ OK"))
				if healthcheckVerbose && detail != "" {
					fmt.Fprintf(out, "   %s\n", detail)
				}
			}
			fmt.Fprintln(out)
		}

		check("Step 1: Checking configuration...", func() (string, error) {
			if err := cfg.ValidateForExport(); err != nil {
				return "", err
			}
			return fmt.Sprintf("Client id: %s", cfg.Strava.ClientID), nil
		})

		check("Step 2: Resolving time zone...", func() (string, error) {
			w, err := internal.ResolveWindow(internal.WindowDay, time.Now(), cfg.Export.Timezone)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Today in %s: %s", w.Timezone, w.FileStem()), nil
		})

		check("Step 3: Checking output directory...", func() (string, error) {
			if err := checkWritable(cfg.Export.OutputDir); err != nil {
				return "", err
			}
			return fmt.Sprintf("Directory: %s", cfg.Export.OutputDir), nil
		})

		if cfg.History.Enabled {
			check("Step 4: Opening export history...", func() (string, error) {
				h, err := internal.OpenHistory(cfg.History.Path)
				if err != nil {
					return "", err
				}
				defer h.Close()
				entries, err := h.List(cmd.Context(), 0)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s (%d export(s))", cfg.History.Path, len(entries)), nil
			})
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Export history disabled"))
			fmt.Fprintln(out)
		}

		if healthcheckOnline {
			check("Step 5: Refreshing access token...", func() (string, error) {
				if failed > 0 {
					return "", fmt.Errorf("skipped: fix the errors above first")
				}
				provider, err := newTokenProvider("")
				if err != nil {
					return "", err
				}
				var grant *internal.TokenGrant
				err = internal.ShowProgress(cmd.Context(), "Contacting Strava", func() error {
					grant, err = provider.Refresh(cmd.Context(), cfg.Strava.RefreshToken)
					return err
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Athlete %d, token valid until %s", grant.AthleteID, grant.ExpiresAt().Format(time.RFC3339)), nil
			})
		}

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if failed > 0 {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %d check(s) failed", failed)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// checkWritable creates dir if needed and writes a scratch file into it
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	_, werr := io.WriteString(f, "ok")
	cerr := f.Close()
	_ = os.Remove(name)
	if werr != nil {
		return werr
	}
	return cerr
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().BoolVar(&healthcheckOnline, "online", false, "Also refresh an access token against Strava")
}
