package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultTimezone is the zone windows are resolved in unless configured
const DefaultTimezone = "Europe/Istanbul"

// Config is the resolved runtime configuration. It is built once per run and
// passed explicitly into constructors.
type Config struct {
	Strava  StravaConfig  `mapstructure:"strava"`
	Server  ServerConfig  `mapstructure:"server"`
	Export  ExportConfig  `mapstructure:"export"`
	History HistoryConfig `mapstructure:"history"`
	API     APIConfig     `mapstructure:"api"`
}

// StravaConfig holds credentials and endpoint overrides
type StravaConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	APIBaseURL   string `mapstructure:"api_base_url"`
	TokenURL     string `mapstructure:"token_url"`
	AuthorizeURL string `mapstructure:"authorize_url"`
}

// ServerConfig configures the local authorization callback server
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ExportConfig controls where and how documents are written
type ExportConfig struct {
	Timezone  string `mapstructure:"timezone"`
	OutputDir string `mapstructure:"output_dir"`
	Format    string `mapstructure:"format"`
}

// HistoryConfig locates the export ledger
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// APIConfig tunes API usage
type APIConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// LoadOptions selects configuration sources
type LoadOptions struct {
	ConfigFile string                 // explicit config file; empty searches the default locations
	EnvFile    string                 // explicit .env file; empty tries ./.env
	Overrides  map[string]interface{} // highest-precedence values keyed like "export.timezone"
}

var envBindings = map[string]string{
	"strava.client_id":        "STRAVA_CLIENT_ID",
	"strava.client_secret":    "STRAVA_CLIENT_SECRET",
	"strava.refresh_token":    "STRAVA_REFRESH_TOKEN",
	"strava.api_base_url":     "STRAVA_API_BASE_URL",
	"strava.token_url":        "STRAVA_TOKEN_URL",
	"strava.authorize_url":    "STRAVA_AUTHORIZE_URL",
	"server.port":             "PORT",
	"export.timezone":         "STRAVA_TIMEZONE",
	"export.output_dir":       "STRAVA_OUTPUT_DIR",
	"export.format":           "STRAVA_FORMAT",
	"history.path":            "STRAVA_HISTORY_PATH",
	"api.requests_per_minute": "STRAVA_REQUESTS_PER_MINUTE",
}

// LoadConfig reads .env, the optional config file, environment variables and
// overrides, in increasing order of precedence
func LoadConfig(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, &ConfigError{Field: "config_file", Err: err}
		}
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("strava-export")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/strava-export")
	}

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	setConfigDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "config_file", Err: err}
		}
	} else {
		LogDebug("Using config file %s", v.ConfigFileUsed())
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "config_file", Err: fmt.Errorf("unmarshaling config: %w", err)}
	}

	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath()
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	// existing environment variables win over the file
	if err := godotenv.Load(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{Field: "env_file", Err: err}
	}
	LogDebug("Loaded environment from %s", path)
	return nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("export.timezone", DefaultTimezone)
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.format", "json")
	v.SetDefault("history.enabled", true)
	v.SetDefault("api.requests_per_minute", 0)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".strava-export", "history.db")
	}
	return filepath.Join(home, ".strava-export", "history.db")
}

// Credentials returns the client credentials
func (c *Config) Credentials() Credentials {
	return Credentials{ClientID: c.Strava.ClientID, ClientSecret: c.Strava.ClientSecret}
}

// Location resolves the configured export time zone
func (c *Config) Location() (*time.Location, error) {
	return LoadLocation(c.Export.Timezone)
}

// ValidateForAuthorize checks what the authorization bootstrap needs
func (c *Config) ValidateForAuthorize() error {
	if err := c.Credentials().Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "port", Err: fmt.Errorf("port %d out of range", c.Server.Port)}
	}
	return nil
}

// ValidateForExport checks what a retrieval run needs before any network call
func (c *Config) ValidateForExport() error {
	if err := c.Credentials().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Strava.RefreshToken) == "" {
		return &ConfigError{Field: "refresh_token", Err: errors.New("STRAVA_REFRESH_TOKEN is not set")}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.API.RequestsPerMinute < 0 {
		return &ConfigError{Field: "requests_per_minute", Err: fmt.Errorf("must not be negative, got %d", c.API.RequestsPerMinute)}
	}
	return nil
}
