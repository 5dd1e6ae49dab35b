package config

import (
	"os"
	"path/filepath"
)

// Default values, the lowest layer of the override chain. Chosen so the
// client works for cron deployments with nothing but credentials in the
// environment.
const (
	defaultLogLevel        = "info"
	defaultParallelFetches = 1
)

// DefaultConfig returns a Config populated with all default values. Used as
// the starting point for TOML decoding (so unset fields keep defaults) and
// as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			OutDir: defaultOutDir(),
		},
		Transfers: TransfersConfig{
			ParallelFetches: defaultParallelFetches,
		},
		Logging: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
	}
}

// defaultOutDir is ~/dnfilevault-downloads, matching the long-standing
// deployment default. Falls back to a relative directory when the home
// directory cannot be determined.
func defaultOutDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dnfilevault-downloads"
	}

	return filepath.Join(home, "dnfilevault-downloads")
}

// DefaultConfigPath is ~/.config/dnfv/config.toml, or a relative path when
// the user config directory cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("dnfv", "config.toml")
	}

	return filepath.Join(dir, "dnfv", "config.toml")
}
