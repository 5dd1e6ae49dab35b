package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting Config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with defaults. Supports the zero-config case: cron
// deployments that configure everything through DNFV_* variables never need
// to create a file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve merges the four configuration layers (defaults -> config file ->
// environment -> CLI flags) and validates the result. CLI flags always win,
// matching user expectations for one-off overrides.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		Email:        cfg.Auth.Email,
		Password:     cfg.Auth.Password,
		OutDir:       cfg.Sync.OutDir,
		RecencyDays:  cfg.Sync.RecencyDays,
		Collections:  cfg.Sync.Collections,
		Parallel:     cfg.Transfers.ParallelFetches,
		BaseURL:      cfg.Network.BaseURL,
		DiscoveryURL: cfg.Network.DiscoveryURL,
		Disambiguate: cfg.Sync.Disambiguate,
		LogLevel:     cfg.Logging.LogLevel,
	}

	applyEnv(resolved, env)
	applyCLI(resolved, cli)

	if err := Validate(resolved); err != nil {
		return nil, err
	}

	return resolved, nil
}

func applyEnv(r *Resolved, env EnvOverrides) {
	if env.Email != "" {
		r.Email = env.Email
	}

	if env.Password != "" {
		r.Password = env.Password
	}

	if env.OutDir != "" {
		r.OutDir = env.OutDir
	}

	if env.RecencyDays != nil {
		r.RecencyDays = *env.RecencyDays
	}

	if len(env.Collections) > 0 {
		r.Collections = env.Collections
	}

	if env.BaseURL != "" {
		r.BaseURL = env.BaseURL
	}
}

func applyCLI(r *Resolved, cli CLIOverrides) {
	if cli.OutDir != nil {
		r.OutDir = *cli.OutDir
	}

	if cli.RecencyDays != nil {
		r.RecencyDays = *cli.RecencyDays
	}

	if cli.Collections != nil {
		r.Collections = *cli.Collections
	}

	if cli.Parallel != nil {
		r.Parallel = *cli.Parallel
	}

	if cli.BaseURL != nil {
		r.BaseURL = *cli.BaseURL
	}

	if cli.Disambiguate != nil {
		r.Disambiguate = *cli.Disambiguate
	}
}
