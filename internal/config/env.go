package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names. The DNFV_ prefix is kept from the original
// deployment scripts so existing cron setups carry over unchanged.
const (
	EnvConfig   = "DNFV_CONFIG"
	EnvEmail    = "DNFV_EMAIL"
	EnvPassword = "DNFV_PASSWORD"
	EnvOutDir   = "DNFV_OUT_DIR"
	EnvDays     = "DNFV_DAYS"
	EnvGroups   = "DNFV_GROUPS"
	EnvBaseURL  = "DNFV_BASE_URL"
)

// EnvOverrides holds values read from the environment. Pointer fields
// distinguish unset from explicitly zero.
type EnvOverrides struct {
	ConfigPath  string
	Email       string
	Password    string
	OutDir      string
	RecencyDays *int
	Collections []string
	BaseURL     string
}

// ReadEnvOverrides reads the DNFV_* environment variables. An unparsable
// DNFV_DAYS is ignored (no recency override) rather than failing the run,
// matching the tolerant behavior operators rely on in cron.
func ReadEnvOverrides() EnvOverrides {
	env := EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Email:      os.Getenv(EnvEmail),
		Password:   os.Getenv(EnvPassword),
		OutDir:     os.Getenv(EnvOutDir),
		BaseURL:    os.Getenv(EnvBaseURL),
	}

	if raw := strings.TrimSpace(os.Getenv(EnvDays)); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days >= 0 {
			env.RecencyDays = &days
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvGroups)); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				env.Collections = append(env.Collections, name)
			}
		}
	}

	return env
}
