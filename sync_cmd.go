package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	dnsync "github.com/deltaneutral/dnfilevault-go/internal/sync"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// newSyncCmd builds the sync command, the main entry point: mirror every
// relevant collection to the local output directory.
func newSyncCmd() *cobra.Command {
	var (
		flagDays          int
		flagCollections   []string
		flagParallel      int
		flagBaseURL       string
		flagDryRun        bool
		flagGroupsOnly    bool
		flagPurchasesOnly bool
		flagDisambiguate  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror vault collections to local disk",
		Long: `Discovers a healthy API endpoint, logs in, and downloads every file
missing locally. Re-running is always safe: files already on disk are
skipped without any network traffic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagGroupsOnly && flagPurchasesOnly {
				return fmt.Errorf("--groups-only and --purchases-only are mutually exclusive")
			}

			applySyncOverrides(cmd, flagDays, flagCollections, flagParallel, flagBaseURL, flagDisambiguate)

			logger := buildLogger()
			orch := dnsync.NewOrchestrator(resolvedCfg, http.DefaultClient, logger)
			orch.DryRun = flagDryRun

			if flagGroupsOnly {
				orch.Types = []vault.CollectionType{vault.CollectionGroup}
			}

			if flagPurchasesOnly {
				orch.Types = []vault.CollectionType{vault.CollectionPurchase}
			}

			report, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}

			printReport(cmd, report, flagDryRun)

			// Recoverable failures are reported but do not change the exit
			// code: cron runs should only alarm on fatal conditions.
			return nil
		},
	}

	cmd.Flags().IntVar(&flagDays, "days", 0, "only download files created in the last N days (0 = all)")
	cmd.Flags().StringSliceVar(&flagCollections, "collections", nil, "only sync collections with these names")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "number of concurrent downloads")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "pin the origin endpoint, skipping discovery")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list what would be downloaded without downloading")
	cmd.Flags().BoolVar(&flagGroupsOnly, "groups-only", false, "sync groups only")
	cmd.Flags().BoolVar(&flagPurchasesOnly, "purchases-only", false, "sync purchases only")
	cmd.Flags().BoolVar(&flagDisambiguate, "disambiguate", false, "suffix colliding filenames instead of skipping")

	return cmd
}

// applySyncOverrides layers sync-command flags onto the resolved config.
// Only explicitly set flags override; Changed() distinguishes --days=0 from
// the flag being absent.
func applySyncOverrides(cmd *cobra.Command, days int, collections []string, parallel int, baseURL string, disambiguate bool) {
	if cmd.Flags().Changed("days") {
		resolvedCfg.RecencyDays = days
	}

	if cmd.Flags().Changed("collections") {
		resolvedCfg.Collections = collections
	}

	if cmd.Flags().Changed("parallel") && parallel >= 1 {
		resolvedCfg.Parallel = parallel
	}

	if cmd.Flags().Changed("base-url") {
		resolvedCfg.BaseURL = baseURL
	}

	if cmd.Flags().Changed("disambiguate") {
		resolvedCfg.Disambiguate = disambiguate
	}
}

// printReport renders the final tally on stdout.
func printReport(cmd *cobra.Command, report *dnsync.Report, dryRun bool) {
	if dryRun {
		cmd.Printf("Dry run: %d file(s) would be downloaded, %d already present.\n",
			report.Planned, report.Skipped)
	} else {
		cmd.Printf("Done: %d downloaded (%.1f MB), %d skipped, %d failed.\n",
			report.Downloaded, float64(report.BytesDownloaded)/(1024*1024), report.Skipped, report.Failed)
	}

	for _, lf := range report.ListingFailures {
		cmd.Printf("  skipped collection %s: %v\n", lf.Collection, lf.Err)
	}

	for _, fe := range report.FileErrors {
		cmd.Printf("  failed %s (%s): %v\n", fe.Name, fe.Collection, fe.Err)
	}
}
