package dispatch

import "time"

// MigrationConfig tunes the migration admission policy (mayMigrate,
// sizeAgeAdmits). The zero value is valid and applies the documented
// defaults, in the teacher's BatcherConfig/ChannelConfig style.
type MigrationConfig struct {
	// MinBytes is the size below which a task is always migratable,
	// regardless of time on queue. Defaults to 50_000_000.
	MinBytes int64
	// MaxBytes is the hard ceiling for aged tasks. Defaults to
	// 10_000_000_000.
	MaxBytes int64
	// GrowthWindow is the time on queue after which the size limit reaches
	// MaxBytes. Defaults to 1_200_000ms (20 minutes).
	GrowthWindow time.Duration
	// IntervalPerHost is the MigrationGate TTL: the minimum interval
	// between migrations touching the same host. Defaults to 240_000ms
	// (4 minutes).
	IntervalPerHost time.Duration
}

func (c MigrationConfig) withDefaults() MigrationConfig {
	if c.MinBytes <= 0 {
		c.MinBytes = 50_000_000
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10_000_000_000
	}
	if c.GrowthWindow <= 0 {
		c.GrowthWindow = 1_200_000 * time.Millisecond
	}
	if c.IntervalPerHost <= 0 {
		c.IntervalPerHost = 240_000 * time.Millisecond
	}
	return c
}

// Config collects DispatchPolicy tunables. The zero value is valid and
// applies the documented defaults; see NewPolicy for how a nil *Config
// differs from a &Config{} literal with respect to Migration.
type Config struct {
	// AvailRefreshInterval is the ledger's minimum interval between
	// RefreshFrom swaps. Defaults to 60s.
	AvailRefreshInterval time.Duration
	// LastSlotDelay is how long a new task must wait on the queue before
	// it may claim a multi-slot host's last remaining slot. Defaults to
	// 90s.
	LastSlotDelay time.Duration
	// Migration holds the migration-admission tunables. A nil Migration
	// disables migration outright (mayMigrate always returns false); a
	// non-nil value, even &MigrationConfig{}, enables it with whichever
	// defaults its zero fields imply. This mirrors the teacher's
	// "pointer means optional" convention rather than a plain bool, since
	// a bool's zero value (false) would silently default to "disabled",
	// inverting the source system's documented default of enabled.
	Migration *MigrationConfig
}

func (c Config) withDefaults() Config {
	if c.AvailRefreshInterval <= 0 {
		c.AvailRefreshInterval = 60 * time.Second
	}
	if c.LastSlotDelay <= 0 {
		c.LastSlotDelay = 90 * time.Second
	}
	if c.Migration != nil {
		m := c.Migration.withDefaults()
		c.Migration = &m
	}
	return c
}
