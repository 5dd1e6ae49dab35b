// Package sync implements the mirror engine: name sanitization, recency
// filtering, the dual-source file fetcher, and the orchestrator that drives
// a full run over all collections. Failures are isolated by scope: a file
// error never invalidates its collection, and a collection error never
// invalidates the run.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/deltaneutral/dnfilevault-go/internal/config"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// collectionDirs maps a collection type to its subdirectory under the
// mirror root.
var collectionDirs = map[vault.CollectionType]string{
	vault.CollectionPurchase: "Purchases",
	vault.CollectionGroup:    "Groups",
}

// Orchestrator drives a full sync run: endpoint resolution, login,
// collection enumeration, recency filtering, and per-file fetches through a
// bounded worker pool. It holds no state across runs; every Run starts from
// a fresh endpoint list and session.
type Orchestrator struct {
	cfg        *config.Resolved
	httpClient *http.Client
	logger     *slog.Logger

	// Types restricts the run to a subset of collection types. Defaults to
	// purchases then groups, the order the account tooling has always used.
	Types []vault.CollectionType

	// DryRun walks the full enumeration pipeline without downloading.
	DryRun bool
}

// NewOrchestrator creates an Orchestrator from resolved configuration.
func NewOrchestrator(cfg *config.Resolved, httpClient *http.Client, logger *slog.Logger) *Orchestrator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		Types:      []vault.CollectionType{vault.CollectionPurchase, vault.CollectionGroup},
	}
}

// Run executes one full sync. The returned error is non-nil only for fatal
// conditions (no healthy endpoint, authentication failure); recoverable
// failures are tallied in the Report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("run_id", runID))

	client, err := o.connect(ctx, logger)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID}
	cutoff := o.cutoff()
	allow := newNameSet(o.cfg.Collections)
	fetcher := NewFetcher(client, o.cfg.Disambiguate, o.DryRun, NewProgressRenderer(o.cfg.Parallel), logger)

	for _, ctype := range o.Types {
		collections, err := o.listCollections(ctx, client, ctype)
		if err != nil {
			// Scoped failure: purchases being down must not stop groups.
			logger.Warn("listing collection type failed, skipping",
				slog.String("type", string(ctype)),
				slog.String("error", err.Error()),
			)
			report.recordListingFailure(string(ctype), err)

			continue
		}

		for _, col := range collections {
			if !allow.match(col.Name) {
				continue
			}

			o.syncCollection(ctx, client, fetcher, col, cutoff, report, logger)
		}
	}

	logger.Info("run complete",
		slog.Int("downloaded", report.Downloaded),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int64("bytes", report.BytesDownloaded),
	)

	return report, nil
}

// connect selects an origin endpoint and authenticates against it. A pinned
// base URL bypasses discovery and health probing entirely.
func (o *Orchestrator) connect(ctx context.Context, logger *slog.Logger) (*vault.Client, error) {
	endpoint := vault.Endpoint{URL: o.cfg.BaseURL, Label: "pinned"}

	if o.cfg.BaseURL == "" {
		resolver := vault.NewResolver(o.cfg.DiscoveryURL, nil, o.httpClient, logger)

		selected, err := resolver.SelectHealthy(ctx, resolver.Resolve(ctx))
		if err != nil {
			return nil, err
		}

		endpoint = selected
	}

	client, err := vault.Login(ctx, endpoint, o.cfg.Email, o.cfg.Password, o.httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("logging in to %s: %w", endpoint.URL, err)
	}

	return client, nil
}

// listCollections dispatches to the right listing call for a type.
func (o *Orchestrator) listCollections(ctx context.Context, client *vault.Client, ctype vault.CollectionType) ([]vault.Collection, error) {
	if ctype == vault.CollectionPurchase {
		return client.ListPurchases(ctx)
	}

	return client.ListGroups(ctx)
}

// syncCollection lists one collection's files, applies the recency filter,
// and dispatches the survivors through the fetch pool. Listing failure
// skips only this collection. Fetch failures are recorded per file and
// never cancel sibling fetches.
func (o *Orchestrator) syncCollection(
	ctx context.Context,
	client *vault.Client,
	fetcher *Fetcher,
	col vault.Collection,
	cutoff *time.Time,
	report *Report,
	logger *slog.Logger,
) {
	files, err := client.ListFiles(ctx, col)
	if err != nil {
		logger.Warn("listing files failed, skipping collection",
			slog.String("collection", col.Name),
			slog.String("error", err.Error()),
		)
		report.recordListingFailure(col.Name, err)

		return
	}

	files = FilterRecent(files, cutoff, logger)
	if len(files) == 0 {
		logger.Debug("no files to fetch", slog.String("collection", col.Name))
		return
	}

	dir := filepath.Join(o.cfg.OutDir, collectionDirs[col.Type], CollectionDirName(col.ID, col.Name))

	logger.Info("syncing collection",
		slog.String("collection", col.Name),
		slog.String("type", string(col.Type)),
		slog.Int("files", len(files)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Parallel)

	for _, rec := range files {
		g.Go(func() error {
			outcome := fetcher.Fetch(gctx, rec, dir)
			report.record(col, outcome)

			if outcome.Kind == Failed {
				logger.Warn("fetch failed",
					slog.String("collection", col.Name),
					slog.String("path", outcome.Path),
					slog.String("error", outcome.Err.Error()),
				)
			}

			// Always nil: per-file failures are isolated and must not
			// cancel sibling fetches through the group context.
			return nil
		})
	}

	_ = g.Wait()
}

// cutoff computes the recency window boundary, now(UTC) minus the
// configured number of days. Nil when no window is configured.
func (o *Orchestrator) cutoff() *time.Time {
	if o.cfg.RecencyDays <= 0 {
		return nil
	}

	t := time.Now().UTC().AddDate(0, 0, -o.cfg.RecencyDays)

	return &t
}

// nameSet is a case-insensitive collection-name allowlist. A nil set
// matches everything.
type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	if len(names) == 0 {
		return nil
	}

	set := make(nameSet, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	return set
}

func (s nameSet) match(name string) bool {
	if s == nil {
		return true
	}

	_, ok := s[strings.ToLower(strings.TrimSpace(name))]

	return ok
}
