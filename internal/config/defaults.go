package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultAPITimeout       = 30 * time.Second
	DefaultAPIMaxRetries    = 3
	DefaultCooldown         = 60 * time.Second
	DefaultRetryBaseDelay   = 2 * time.Second
	DefaultRetryMaxDelay    = 30 * time.Second
	DefaultTrackerRetries   = 3
	DefaultPingInterval     = 15 * time.Second
	DefaultGraceDelay       = 1 * time.Second
	DefaultDialTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultReconcileTimeout = 10 * time.Second
	DefaultWatchInterval    = 30 * time.Second
	DefaultWatchPageSize    = 100
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 5
	DefaultMinConns         = 1
	DefaultBatchSize        = 200
	DefaultFlushInterval    = 1 * time.Second
	DefaultBufferSize       = 5000
	DefaultHealthPort       = 8099
)

func (c *SyncConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = uuid.NewString()
	}

	// API defaults
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultAPIMaxRetries
	}

	// Tracker defaults
	if c.Tracker.Cooldown == 0 {
		c.Tracker.Cooldown = DefaultCooldown
	}
	if c.Tracker.RetryBaseDelay == 0 {
		c.Tracker.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Tracker.RetryMaxDelay == 0 {
		c.Tracker.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if c.Tracker.MaxRetries == 0 {
		c.Tracker.MaxRetries = DefaultTrackerRetries
	}
	if c.Tracker.PingInterval == 0 {
		c.Tracker.PingInterval = DefaultPingInterval
	}
	if c.Tracker.GraceDelay == 0 {
		c.Tracker.GraceDelay = DefaultGraceDelay
	}
	if c.Tracker.DialTimeout == 0 {
		c.Tracker.DialTimeout = DefaultDialTimeout
	}
	if c.Tracker.WriteTimeout == 0 {
		c.Tracker.WriteTimeout = DefaultWriteTimeout
	}
	if c.Tracker.ReconcileTimeout == 0 {
		c.Tracker.ReconcileTimeout = DefaultReconcileTimeout
	}

	// Watch defaults
	if c.Watch.Interval == 0 {
		c.Watch.Interval = DefaultWatchInterval
	}
	if c.Watch.PageSize == 0 {
		c.Watch.PageSize = DefaultWatchPageSize
	}

	// Database defaults, only meaningful when archiving is enabled
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Archive defaults
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.BufferSize == 0 {
		c.Archive.BufferSize = DefaultBufferSize
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
