package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Spotify  SpotifyConfig
	Game     GameConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Bind    string
	Port    int
	Prefix  string // Path prepended to every route, for use behind a reverse proxy
	Profile bool   // Register pprof handlers
	TLSCert string
	TLSKey  string
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string
}

// SpotifyConfig holds Spotify Web API credentials and client settings
type SpotifyConfig struct {
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	SearchInterval time.Duration // Minimum spacing between search requests
}

// GameConfig holds gameplay and resolver tuning
type GameConfig struct {
	// Maximum related artists offered per turn, 0 for no limit
	RelatedLimit int

	// How long a cache lookup runs alone before the API is asked too
	HedgeDelay time.Duration

	// Pending cache backfill writes before new ones are dropped
	BackfillQueue int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	File  string
}

// flagKeys maps command-line flag names to configuration keys
var flagKeys = map[string]string{
	"bind":            "server.bind",
	"port":            "server.port",
	"prefix":          "server.prefix",
	"profile":         "server.profile",
	"tls-cert":        "server.tls_cert",
	"tls-key":         "server.tls_key",
	"db":              "database.path",
	"related-limit":   "game.related_limit",
	"hedge-delay":     "game.hedge_delay",
	"search-interval": "spotify.search_interval",
	"log-level":       "log.level",
	"log-file":        "log.file",
}

// Load reads configuration from file, .env files, environment and the given
// command-line flags, in increasing order of precedence
func Load(flags ...*pflag.FlagSet) (*Config, error) {
	// .env.local wins over .env; neither overrides the real environment
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(getConfigDir())
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("server.bind", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("spotify.request_timeout", 10*time.Second)
	v.SetDefault("spotify.search_interval", time.Second)
	v.SetDefault("game.hedge_delay", 50*time.Millisecond)
	v.SetDefault("game.backfill_queue", 64)
	v.SetDefault("log.level", "info")

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read from environment variables, e.g. SPEEDRUN_SERVER_PORT
	v.SetEnvPrefix("SPEEDRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare Spotify variables are accepted as well
	_ = v.BindEnv("spotify.client_id", "SPEEDRUN_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify.client_secret", "SPEEDRUN_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")

	for _, fs := range flags {
		fs.VisitAll(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok && f.Changed {
				_ = v.BindPFlag(key, f)
			}
		})
	}

	// Map config to struct
	cfg := &Config{
		Server: ServerConfig{
			Bind:    v.GetString("server.bind"),
			Port:    v.GetInt("server.port"),
			Prefix:  strings.TrimSuffix(v.GetString("server.prefix"), "/"),
			Profile: v.GetBool("server.profile"),
			TLSCert: v.GetString("server.tls_cert"),
			TLSKey:  v.GetString("server.tls_key"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Spotify: SpotifyConfig{
			ClientID:       v.GetString("spotify.client_id"),
			ClientSecret:   v.GetString("spotify.client_secret"),
			RequestTimeout: v.GetDuration("spotify.request_timeout"),
			SearchInterval: v.GetDuration("spotify.search_interval"),
		},
		Game: GameConfig{
			RelatedLimit:  v.GetInt("game.related_limit"),
			HedgeDelay:    v.GetDuration("game.hedge_delay"),
			BackfillQueue: v.GetInt("game.backfill_queue"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.RelatedLimit < 0 {
		return fmt.Errorf("invalid related limit: %d", c.Game.RelatedLimit)
	}
	return nil
}

// HasSpotifyCredentials reports whether both Spotify credentials are set
func (c *Config) HasSpotifyCredentials() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// Scheme returns the URL scheme the server is reachable on
func (c *ServerConfig) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "speedrun")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the data directory path (~/.local/share/speedrun)
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "speedrun")
}

func defaultDatabasePath() string {
	return filepath.Join(GetDataDir(), "speedrun.db")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("server.bind", c.Server.Bind)
	v.Set("server.port", c.Server.Port)
	v.Set("server.prefix", c.Server.Prefix)
	v.Set("server.profile", c.Server.Profile)
	v.Set("server.tls_cert", c.Server.TLSCert)
	v.Set("server.tls_key", c.Server.TLSKey)
	v.Set("database.path", c.Database.Path)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("spotify.request_timeout", c.Spotify.RequestTimeout.String())
	v.Set("spotify.search_interval", c.Spotify.SearchInterval.String())
	v.Set("game.related_limit", c.Game.RelatedLimit)
	v.Set("game.hedge_delay", c.Game.HedgeDelay.String())
	v.Set("game.backfill_queue", c.Game.BackfillQueue)
	v.Set("log.level", c.Log.Level)
	v.Set("log.file", c.Log.File)

	// Write to file
	return v.WriteConfigAs(configFile)
}
