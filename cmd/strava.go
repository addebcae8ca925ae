package cmd

import (
	"context"
	"time"

	"github.com/iksnae/strava-export/internal"
	"github.com/iksnae/strava-export/internal/export"
	"github.com/iksnae/strava-export/internal/strava"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// newTokenProvider builds a provider for the configured credentials and endpoints
func newTokenProvider(redirectURL string) (*strava.TokenProvider, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:  cfg.Strava.AuthorizeURL,
		TokenURL: cfg.Strava.TokenURL,
	}
	return strava.NewTokenProvider(cfg.Credentials(), endpoint, redirectURL, nil)
}

// newAPIClient refreshes the access token and returns a client carrying it
func newAPIClient(ctx context.Context) (*strava.Client, error) {
	provider, err := newTokenProvider("")
	if err != nil {
		return nil, err
	}
	grant, err := provider.Refresh(ctx, cfg.Strava.RefreshToken)
	if err != nil {
		return nil, err
	}
	if grant.RefreshToken != "" && grant.RefreshToken != cfg.Strava.RefreshToken {
		internal.PrintWarning("Strava rotated the refresh token; update STRAVA_REFRESH_TOKEN or run 'strava-export authorize'")
	}
	internal.LogDebug("Access token valid until %s", grant.ExpiresAt().Format(time.RFC3339))

	return strava.NewClient(ctx, cfg.Strava.APIBaseURL, grant.AccessToken,
		strava.WithRateLimit(cfg.API.RequestsPerMinute)), nil
}

// exporterFor resolves --format, falling back to the configured format
func exporterFor(cmd *cobra.Command, flagValue string) (export.Exporter, error) {
	format := cfg.Export.Format
	if cmd.Flags().Changed("format") {
		format = flagValue
	}
	return export.NewExporter(format)
}

// recordHistory appends the export to the ledger. Failures only warn: the
// document is already on disk.
func recordHistory(ctx context.Context, disabled bool, doc internal.Document, path string, e export.Exporter) {
	if disabled || !cfg.History.Enabled {
		return
	}
	h, err := internal.OpenHistory(cfg.History.Path)
	if err != nil {
		internal.LogWarn("Export history unavailable: %v", err)
		return
	}
	defer h.Close()

	if _, err := h.Record(ctx, internal.NewHistoryEntry(doc, path, e.Extension(), time.Now())); err != nil {
		internal.LogWarn("Failed to record export history: %v", err)
	}
}
