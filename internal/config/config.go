package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Address the web server listens on
	ListenAddr string

	// Default number of scrobbles per page on the daily view
	PerPage int

	// Timeout for upstream API requests (in seconds)
	RequestTimeout int

	// Directory holding the cache files
	DataDir string

	// Last.fm API credentials
	LastFM LastFMConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(getConfigDir())
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("per_page", 10)
	v.SetDefault("request_timeout", 15)
	v.SetDefault("data_dir", filepath.Join(xdg.DataHome, "airtime"))

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("AIRTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		ListenAddr:     v.GetString("listen_addr"),
		PerPage:        v.GetInt("per_page"),
		RequestTimeout: v.GetInt("request_timeout"),
		DataDir:        v.GetString("data_dir"),
		LastFM: LastFMConfig{
			APIKey: v.GetString("lastfm.api_key"),
		},
	}

	return cfg, nil
}

// DurationCachePath returns the path of the persisted track duration cache
func (c *Config) DurationCachePath() string {
	return filepath.Join(c.DataDir, "song_durations.csv")
}

// DailyCachePath returns the path of the persisted daily aggregate cache
func (c *Config) DailyCachePath() string {
	return filepath.Join(c.DataDir, "daily_stats.json")
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	configDir := filepath.Join(xdg.ConfigHome, "airtime")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}
