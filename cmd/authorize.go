package cmd

import (
	"fmt"
	"time"

	"github.com/iksnae/strava-export/internal"
	"github.com/iksnae/strava-export/internal/callback"
	"github.com/spf13/cobra"
)

var authorizeNoBrowser bool

// authorizeCmd runs the one-time OAuth bootstrap
var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Obtain a refresh token through the browser",
	Long: `Start a local web server, send you to Strava's authorization page and
exchange the returned code for tokens.

Register http://localhost:<port>/exchange_token as the callback domain of
your Strava API application, then open http://localhost:<port>/ in a
browser. The resulting refresh token is printed here; store it as
STRAVA_REFRESH_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateForAuthorize(); err != nil {
			return err
		}
		provider, err := newTokenProvider(callback.RedirectURL(cfg.Server.Port))
		if err != nil {
			return err
		}

		server := callback.NewServer(provider, fmt.Sprintf(":%d", cfg.Server.Port))
		if authorizeNoBrowser {
			server.OpenBrowser = nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Open http://localhost:%d/ in your browser to authorize.\n", cfg.Server.Port)
		internal.LogDebug("Redirect URL: %s", callback.RedirectURL(cfg.Server.Port))

		grant, err := server.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, headerStyle.Render("Strava authorization complete"))
		fmt.Fprintf(out, "Scope:         %s\n", grant.Scope)
		fmt.Fprintf(out, "Access token:  %s\n", grant.AccessToken)
		fmt.Fprintf(out, "Refresh token: %s\n", grant.RefreshToken)
		fmt.Fprintf(out, "Expires at:    %d (%s)\n", grant.ExpiresAtUnix, grant.ExpiresAt().UTC().Format(time.RFC3339))
		fmt.Fprintf(out, "Athlete id:    %d\n", grant.AthleteID)
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("Save the refresh token as STRAVA_REFRESH_TOKEN."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
	authorizeCmd.Flags().BoolVar(&authorizeNoBrowser, "no-browser", false, "Do not open a browser when the start page is visited")
}
