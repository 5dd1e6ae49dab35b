package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfilevault-go/internal/config"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// newEndpointsCmd builds the endpoints diagnostic command: fetch the
// discovery document and probe every endpoint's health, reporting each
// outcome rather than stopping at the first healthy one. Needs no
// credentials.
func newEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "Show discovered API endpoints and their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			// The discovery URL may be overridden in the config file; no
			// credentials are required for probing.
			var discoveryURL string
			if cfg, err := config.LoadOrDefault(configPath()); err == nil {
				discoveryURL = cfg.Network.DiscoveryURL
			}

			resolver := vault.NewResolver(discoveryURL, nil, http.DefaultClient, logger)
			endpoints := resolver.Resolve(cmd.Context())

			healthy := 0

			for _, ep := range endpoints {
				status := resolver.Probe(cmd.Context(), ep)

				mark := "✗"
				if status.Healthy {
					mark = "✓"
					healthy++
				}

				cmd.Printf("  %s %d. %s (%s) — %s\n", mark, ep.Priority, ep.URL, ep.Label, status.Detail)
			}

			cmd.Printf("%d of %d endpoint(s) healthy.\n", healthy, len(endpoints))

			return nil
		},
	}
}

// configPath resolves the config file location from the flag, the
// environment, or the default.
func configPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}

	if env := os.Getenv(config.EnvConfig); env != "" {
		return env
	}

	return config.DefaultConfigPath()
}
