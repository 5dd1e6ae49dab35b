// Package config implements TOML configuration loading and the layered
// override chain (defaults -> config file -> environment -> CLI flags) for
// dnfilevault-go. Credentials are usually supplied through DNFV_* environment
// variables (cron deployments source them from a .env file); the config file
// covers everything an operator wants to pin down declaratively.
package config

// Config is the top-level structure parsed from a TOML file.
type Config struct {
	Auth      AuthConfig      `toml:"auth"`
	Sync      SyncConfig      `toml:"sync"`
	Transfers TransfersConfig `toml:"transfers"`
	Network   NetworkConfig   `toml:"network"`
	Logging   LoggingConfig   `toml:"logging"`
}

// AuthConfig holds vault credentials. Prefer the DNFV_EMAIL / DNFV_PASSWORD
// environment variables over storing a password in a file; both layers work.
type AuthConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// SyncConfig controls what gets mirrored and where.
type SyncConfig struct {
	// OutDir is the local mirror root. Collection subdirectories are
	// created beneath it.
	OutDir string `toml:"out_dir"`

	// RecencyDays limits the run to files created within the last N days.
	// Zero means no recency filter (download everything).
	RecencyDays int `toml:"recency_days"`

	// Collections is an optional case-insensitive allowlist of collection
	// names. Empty means all collections.
	Collections []string `toml:"collections"`

	// Disambiguate switches the name-collision policy from "existing path
	// means already synced, skip" to appending " (2)", " (3)", ... before
	// the extension until an unused path is found.
	Disambiguate bool `toml:"disambiguate"`
}

// TransfersConfig controls the fetch worker pool.
type TransfersConfig struct {
	// ParallelFetches bounds concurrent file downloads. The default of 1
	// preserves the strictly sequential batch behavior.
	ParallelFetches int `toml:"parallel_fetches"`
}

// NetworkConfig controls endpoint selection.
type NetworkConfig struct {
	// BaseURL pins the origin endpoint, skipping discovery and health
	// probing entirely. Empty means discover-and-probe.
	BaseURL string `toml:"base_url"`

	// DiscoveryURL overrides where the endpoint list is fetched from.
	DiscoveryURL string `toml:"discovery_url"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"` // debug, info, warn, error
}

// CLIOverrides holds values from CLI flags, the highest-precedence layer.
// Pointer fields distinguish "not specified" (nil) from "explicitly set to
// the zero value" — --recency-days=0 disables the filter, which is different
// from not passing the flag at all.
type CLIOverrides struct {
	ConfigPath   string
	OutDir       *string
	RecencyDays  *int
	Collections  *[]string
	Parallel     *int
	BaseURL      *string
	Disambiguate *bool
}

// Resolved is the effective configuration after all four layers are merged
// and validated. It is constructed once at startup and passed by reference
// into the engine; nothing in the core reads ambient global state.
type Resolved struct {
	Email        string
	Password     string
	OutDir       string
	RecencyDays  int
	Collections  []string
	Parallel     int
	BaseURL      string
	DiscoveryURL string
	Disambiguate bool
	LogLevel     string
}
