package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"STRAVA_CLIENT_ID", "STRAVA_CLIENT_SECRET", "STRAVA_REFRESH_TOKEN", "PORT",
	"STRAVA_TIMEZONE", "STRAVA_OUTPUT_DIR", "STRAVA_FORMAT", "STRAVA_API_BASE_URL",
	"STRAVA_TOKEN_URL", "STRAVA_AUTHORIZE_URL", "STRAVA_HISTORY_PATH", "STRAVA_REQUESTS_PER_MINUTE",
}

// isolateConfig runs the test in an empty directory with a clean environment
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolateConfig(t)

	cfg, err := LoadConfig(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, DefaultTimezone, cfg.Export.Timezone)
	assert.Equal(t, ".", cfg.Export.OutputDir)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join(home, ".strava-export", "history.db"), cfg.History.Path)
	assert.Equal(t, 0, cfg.API.RequestsPerMinute)
}

func TestLoadConfig_Environment(t *testing.T) {
	isolateConfig(t)
	t.Setenv("STRAVA_CLIENT_ID", "4242")
	t.Setenv("STRAVA_CLIENT_SECRET", "shh")
	t.Setenv("STRAVA_REFRESH_TOKEN", "rt")
	t.Setenv("PORT", "8089")
	t.Setenv("STRAVA_TIMEZONE", "UTC")
	t.Setenv("STRAVA_REQUESTS_PER_MINUTE", "90")

	cfg, err := LoadConfig(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, Credentials{ClientID: "4242", ClientSecret: "shh"}, cfg.Credentials())
	assert.Equal(t, "rt", cfg.Strava.RefreshToken)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Export.Timezone)
	assert.Equal(t, 90, cfg.API.RequestsPerMinute)
	assert.NoError(t, cfg.ValidateForExport())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("STRAVA_CLIENT_ID=from-dotenv\nSTRAVA_CLIENT_SECRET=dotenv-secret\n"), 0600))
	t.Setenv("STRAVA_CLIENT_SECRET", "from-env")

	cfg, err := LoadConfig(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Strava.ClientID)
	assert.Equal(t, "from-env", cfg.Strava.ClientSecret, "real environment wins over .env")
}

func TestLoadConfig_ExplicitEnvFileMissing(t *testing.T) {
	isolateConfig(t)

	_, err := LoadConfig(LoadOptions{EnvFile: "nope.env"})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "env_file", cfgErr.Field)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strava-export.yaml"), []byte(`
strava:
  client_id: "file-id"
export:
  timezone: America/New_York
  output_dir: exports
history:
  enabled: false
`), 0600))
	t.Setenv("STRAVA_OUTPUT_DIR", "env-exports")

	cfg, err := LoadConfig(LoadOptions{Overrides: map[string]interface{}{"export.timezone": "Asia/Tokyo"}})
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.Strava.ClientID)
	assert.Equal(t, "env-exports", cfg.Export.OutputDir, "environment wins over file")
	assert.Equal(t, "Asia/Tokyo", cfg.Export.Timezone, "overrides win over everything")
	assert.False(t, cfg.History.Enabled)
}

func TestLoadConfig_ExplicitConfigFileMissing(t *testing.T) {
	dir := isolateConfig(t)

	_, err := LoadConfig(LoadOptions{ConfigFile: filepath.Join(dir, "missing.yaml")})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "config_file", cfgErr.Field)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Strava: StravaConfig{ClientID: "1", ClientSecret: "s", RefreshToken: "r"},
			Server: ServerConfig{Port: 3000},
			Export: ExportConfig{Timezone: DefaultTimezone},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		export    string
		authorize string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing id", mutate: func(c *Config) { c.Strava.ClientID = "" }, export: "client_id", authorize: "client_id"},
		{name: "missing secret", mutate: func(c *Config) { c.Strava.ClientSecret = "" }, export: "client_secret", authorize: "client_secret"},
		{name: "missing refresh token", mutate: func(c *Config) { c.Strava.RefreshToken = "" }, export: "refresh_token"},
		{name: "bad timezone", mutate: func(c *Config) { c.Export.Timezone = "Nowhere/Land" }, export: "timezone"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, authorize: "port"},
		{name: "negative rate", mutate: func(c *Config) { c.API.RequestsPerMinute = -1 }, export: "requests_per_minute"},
	}

	check := func(t *testing.T, err error, field string) {
		t.Helper()
		if field == "" {
			assert.NoError(t, err)
			return
		}
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), "got %v", err)
		assert.Equal(t, field, cfgErr.Field)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			check(t, c.ValidateForExport(), tt.export)
			check(t, c.ValidateForAuthorize(), tt.authorize)
		})
	}
}
