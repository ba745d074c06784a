// Package config loads TOML configuration for the pipeline and API
// server binaries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// External game API settings
	API APIConfig `toml:"api"`

	// Batch pipeline settings
	Pipeline PipelineConfig `toml:"pipeline"`

	// Query cache settings
	Cache CacheConfig `toml:"cache"`

	// Database settings
	Database DatabaseConfig `toml:"database"`

	// Read-path HTTP server settings
	Server ServerConfig `toml:"server"`
}

// APIConfig contains game API client settings.
type APIConfig struct {
	BaseURL           string `toml:"base_url"`            // Game API base URL
	Token             string `toml:"token"`               // Bearer token; ROYALE_API_TOKEN overrides
	RequestsPerSecond int    `toml:"requests_per_second"` // Shared rate ceiling
	Burst             int    `toml:"burst"`               // Limiter burst
	Timeout           string `toml:"timeout"`             // Per-request timeout (e.g., "30s")
	MaxRetries        int    `toml:"max_retries"`         // Retries on throttling
	BackoffBase       string `toml:"backoff_base"`        // Initial backoff delay (e.g., "1s")
}

// PipelineConfig contains batch pipeline settings.
type PipelineConfig struct {
	PlayersToSample   int    `toml:"players_to_sample"`    // Seed target per run
	BattlesPerPlayer  int    `toml:"battles_per_player"`   // Cap per seed
	Concurrency       int    `toml:"concurrency"`          // Fetch workers
	MinSampleSize     int    `toml:"min_sample_size"`      // Publication floor
	ClanLimit         int    `toml:"clan_limit"`           // Clans traversed as fallback
	TopMembersPerClan int    `toml:"top_members_per_clan"` // Members taken per clan
	Location          string `toml:"location"`             // Leaderboard scope
	KeepGenerations   int    `toml:"keep_generations"`     // Snapshot generations retained
	CardRefreshTTL    string `toml:"card_refresh_ttl"`     // Card catalog refresh interval
	CardOverrideFile  string `toml:"card_override_file"`   // Optional cost override JSON
}

// CacheConfig contains query caching settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Enable result caching
	TTL     string `toml:"ttl"`     // Cache TTL (e.g., "10m")
}

// DatabaseConfig contains sqlite settings.
type DatabaseConfig struct {
	Path      string `toml:"path"`       // Path to the sqlite database
	BackupDir string `toml:"backup_dir"` // Backup destination; empty disables backups
}

// ServerConfig contains read-path HTTP server settings.
type ServerConfig struct {
	Port            int    `toml:"port"`             // Listen port
	RefreshInterval string `toml:"refresh_interval"` // Player stats staleness window
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.clashroyale.com/v1",
			RequestsPerSecond: 20,
			Burst:             1,
			Timeout:           "30s",
			MaxRetries:        3,
			BackoffBase:       "1s",
		},
		Pipeline: PipelineConfig{
			PlayersToSample:   200,
			BattlesPerPlayer:  25,
			Concurrency:       5,
			MinSampleSize:     50,
			ClanLimit:         50,
			TopMembersPerClan: 10,
			Location:          "global",
			KeepGenerations:   3,
			CardRefreshTTL:    "24h",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "10m",
		},
		Database: DatabaseConfig{
			Path: "royale-meta.db",
		},
		Server: ServerConfig{
			Port:            8080,
			RefreshInterval: "30m",
		},
	}
}

// DefaultPath returns the default configuration file location, creating
// its directory if needed.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".royale-meta")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads configuration from path. A missing file yields the defaults;
// a present file is merged over them. ROYALE_API_TOKEN, when set, always
// wins over the configured token.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if token := os.Getenv("ROYALE_API_TOKEN"); token != "" {
		config.API.Token = token
	}

	return config, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %d", c.API.RequestsPerSecond)
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid API timeout %q: %w", c.API.Timeout, err)
	}
	if _, err := time.ParseDuration(c.API.BackoffBase); err != nil {
		return fmt.Errorf("invalid backoff base %q: %w", c.API.BackoffBase, err)
	}
	if c.Pipeline.PlayersToSample <= 0 {
		return fmt.Errorf("players to sample must be positive: %d", c.Pipeline.PlayersToSample)
	}
	if c.Pipeline.MinSampleSize < 0 {
		return fmt.Errorf("min sample size cannot be negative: %d", c.Pipeline.MinSampleSize)
	}
	if _, err := time.ParseDuration(c.Pipeline.CardRefreshTTL); err != nil {
		return fmt.Errorf("invalid card refresh TTL %q: %w", c.Pipeline.CardRefreshTTL, err)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.RefreshInterval); err != nil {
		return fmt.Errorf("invalid refresh interval %q: %w", c.Server.RefreshInterval, err)
	}
	return nil
}

// GetAPITimeout returns the API request timeout as a duration.
func (c *Config) GetAPITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// GetBackoffBase returns the initial backoff delay as a duration.
func (c *Config) GetBackoffBase() (time.Duration, error) {
	return time.ParseDuration(c.API.BackoffBase)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetCardRefreshTTL returns the card catalog refresh interval.
func (c *Config) GetCardRefreshTTL() (time.Duration, error) {
	return time.ParseDuration(c.Pipeline.CardRefreshTTL)
}

// GetRefreshInterval returns the player stats staleness window.
func (c *Config) GetRefreshInterval() (time.Duration, error) {
	return time.ParseDuration(c.Server.RefreshInterval)
}
