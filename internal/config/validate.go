package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates that neither the config file nor the
// environment provided an email and password.
var ErrMissingCredentials = errors.New("config: email and password are required (set DNFV_EMAIL and DNFV_PASSWORD)")

// validLogLevels enumerates accepted logging.log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a fully merged Resolved configuration. Called after all
// override layers are applied so error messages reflect effective values.
func Validate(r *Resolved) error {
	if r.Email == "" || r.Password == "" {
		return ErrMissingCredentials
	}

	if r.OutDir == "" {
		return errors.New("config: out_dir must not be empty")
	}

	if r.RecencyDays < 0 {
		return fmt.Errorf("config: recency_days must not be negative, got %d", r.RecencyDays)
	}

	if r.Parallel < 1 {
		return fmt.Errorf("config: parallel_fetches must be at least 1, got %d", r.Parallel)
	}

	if !validLogLevels[r.LogLevel] {
		return fmt.Errorf("config: invalid log_level %q (expected debug, info, warn, or error)", r.LogLevel)
	}

	return nil
}
