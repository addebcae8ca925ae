package cmd

import (
	"errors"
	"testing"

	"github.com/iksnae/strava-export/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantErr: false,
		},
		{
			name:    "help flag",
			args:    []string{"--help"},
			wantErr: false,
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
		{
			name:    "export needs a window",
			args:    []string{"export"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t, nil)
			_, err := executeCommand(tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"authorize", "export", "last", "history", "healthcheck"} {
		assert.True(t, names[want], "subcommand %q not registered", want)
	}
}

func TestRootCommand_LoadsConfig(t *testing.T) {
	dir := setupEnv(t, nil)

	_, err := executeCommand("--timezone", "Asia/Tokyo", "-o", dir, "history")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "Asia/Tokyo", cfg.Export.Timezone)
	assert.Equal(t, dir, cfg.Export.OutputDir)
	assert.Equal(t, "4242", cfg.Strava.ClientID)
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	setupEnv(t, nil)

	_, err := executeCommand("--config", "missing.yaml", "history")
	var cfgErr *internal.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "config_file", cfgErr.Field)
}
