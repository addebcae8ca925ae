package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/strava-export/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testRefreshToken = "stored-refresh-token"

// resetFlags restores every flag to its default so runs don't leak into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns what it wrote
func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// setupEnv points the configuration at fake and a scratch directory, which it returns
func setupEnv(t *testing.T, fake *testutil.FakeStrava) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	for _, name := range []string{"PORT", "STRAVA_FORMAT", "STRAVA_REQUESTS_PER_MINUTE"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	t.Setenv("STRAVA_CLIENT_ID", "4242")
	t.Setenv("STRAVA_CLIENT_SECRET", "test-secret")
	t.Setenv("STRAVA_REFRESH_TOKEN", testRefreshToken)
	t.Setenv("STRAVA_TIMEZONE", "UTC")
	t.Setenv("STRAVA_OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("STRAVA_HISTORY_PATH", filepath.Join(dir, "state", "history.db"))
	if fake != nil {
		t.Setenv("STRAVA_TOKEN_URL", fake.TokenURL())
		t.Setenv("STRAVA_AUTHORIZE_URL", fake.AuthURL())
		t.Setenv("STRAVA_API_BASE_URL", fake.APIBaseURL())
	}
	return dir
}

// outputFiles lists files in the output directory matching pattern
func outputFiles(t *testing.T, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "out", pattern))
	require.NoError(t, err)
	return matches
}
