package config

import "time"

// SyncConfig is the root configuration for a sync agent instance.
type SyncConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Watch    WatchConfig    `yaml:"watch"`
	Database DBConfig       `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this agent.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds document backend API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// AuthConfig holds token storage settings.
type AuthConfig struct {
	// TokenPath is the token file location; empty selects the XDG default.
	TokenPath string `yaml:"token_path"`
}

// TrackerConfig holds per-document WebSocket tracking settings.
type TrackerConfig struct {
	Cooldown         time.Duration `yaml:"cooldown"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`
	MaxRetries       int           `yaml:"max_retries"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	GraceDelay       time.Duration `yaml:"grace_delay"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	ReconcileTimeout time.Duration `yaml:"reconcile_timeout"`
}

// WatchConfig holds the document discovery scan settings.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	PageSize int           `yaml:"page_size"`
}

// DBConfig holds the Postgres connection for the status archive. Leaving
// host empty disables archiving.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ArchiveConfig holds batch writer settings for the status archive.
type ArchiveConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// ArchiveEnabled reports whether a status archive database is configured.
func (c *SyncConfig) ArchiveEnabled() bool {
	return c.Database.Host != ""
}
