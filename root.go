package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deltaneutral/dnfilevault-go/internal/config"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagOutDir     string
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// Available to subcommands after the root pre-run phase completes.
var resolvedCfg *config.Resolved

// skipConfigCommands lists commands that do not need credentials and
// therefore skip full config resolution. The endpoints command probes
// unauthenticated routes only.
var skipConfigCommands = map[string]bool{
	"dnfv endpoints": true,
}

// newRootCmd builds the fully assembled root command. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dnfv",
		Short:   "DNFileVault sync client",
		Long:    "A resilient sync client that mirrors your DNFileVault groups and purchases to local disk.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Cron deployments keep DNFV_* credentials in a .env file next
			// to the binary; absence of the file is not an error.
			_ = godotenv.Load()

			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagOutDir, "out-dir", "", "local mirror directory")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newEndpointsCmd())
	cmd.AddCommand(newGroupsCmd())
	cmd.AddCommand(newPurchasesCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and stores the result in resolvedCfg for subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	// Only pass --out-dir to the resolver if the user explicitly set it.
	if cmd.Flags().Changed("out-dir") {
		cli.OutDir = &flagOutDir
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a classified, user-friendly error message to stderr
// and exits non-zero. Fatal run errors land here; recoverable ones never do.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", classifyFatal(err))
	os.Exit(1)
}

// classifyFatal maps fatal engine errors to actionable messages instead of
// raw error chains.
func classifyFatal(err error) string {
	switch {
	case errors.Is(err, vault.ErrNoHealthyEndpoint):
		return "all API servers are unreachable; check your network or contact support@deltaneutral.com"
	case errors.Is(err, vault.ErrInvalidCredentials):
		return "login failed: incorrect email or password"
	case errors.Is(err, vault.ErrNoToken):
		return "login succeeded but the server returned no token; the API may be misbehaving"
	case errors.Is(err, config.ErrMissingCredentials):
		return "email and password are required: set DNFV_EMAIL and DNFV_PASSWORD or add them to the config file"
	default:
		return err.Error()
	}
}
