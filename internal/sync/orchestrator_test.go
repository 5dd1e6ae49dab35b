package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaneutral/dnfilevault-go/internal/config"
	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// newVaultServer builds a fake origin serving login, two groups with one
// file each, one purchase, and origin downloads. Group 13's file listing
// always fails with HTTP 500.
func newVaultServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "healthy"}`)
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"token": "jwt-test"}`)
	})

	mux.HandleFunc("GET /groups", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"groups": [
			{"id": 7, "name": "eodLevel2"},
			{"id": 13, "name": "broken"}
		]}`)
	})

	mux.HandleFunc("GET /purchases", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"purchases": [{"id": 42, "product_name": "Historical Bundle"}]}`)
	})

	mux.HandleFunc("GET /groups/7/files", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"files": [
			{"uuid_filename": "g7-file", "display_name": "options.zip", "created_at": "2099-01-01 00:00:00"},
			{"uuid_filename": "g7-old", "display_name": "ancient.zip", "created_at": "2001-01-01 00:00:00"}
		]}`)
	})

	mux.HandleFunc("GET /groups/13/files", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "listing exploded", http.StatusInternalServerError)
	})

	mux.HandleFunc("GET /purchases/42/files", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"files": [
			{"uuid_filename": "p42-file", "display_name": "bundle.csv", "created_at": "2099-06-01 12:00:00"}
		]}`)
	})

	mux.HandleFunc("GET /download/{uuid}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "content of %s", r.PathValue("uuid"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func testConfig(srvURL, outDir string) *config.Resolved {
	return &config.Resolved{
		Email:    "rick@example.com",
		Password: "hunter2",
		OutDir:   outDir,
		Parallel: 1,
		BaseURL:  srvURL,
		LogLevel: "info",
	}
}

func TestRun_FullSync(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	orch := NewOrchestrator(testConfig(srv.URL, outDir), http.DefaultClient, slog.Default())
	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Downloaded)
	assert.Zero(t, report.Failed)

	// Files land in per-collection subdirectories.
	assert.FileExists(t, filepath.Join(outDir, "Purchases", "42 - Historical Bundle", "bundle.csv"))
	assert.FileExists(t, filepath.Join(outDir, "Groups", "7 - eodLevel2", "options.zip"))

	data, err := os.ReadFile(filepath.Join(outDir, "Groups", "7 - eodLevel2", "options.zip"))
	require.NoError(t, err)
	assert.Equal(t, "content of g7-file", string(data))

	// Group 13's listing failure is recorded but did not abort the run.
	require.Len(t, report.ListingFailures, 1)
	assert.Equal(t, "broken", report.ListingFailures[0].Collection)
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()
	cfg := testConfig(srv.URL, outDir)

	first, err := NewOrchestrator(cfg, http.DefaultClient, slog.Default()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, first.Downloaded)

	second, err := NewOrchestrator(cfg, http.DefaultClient, slog.Default()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Downloaded)
	assert.Equal(t, 3, second.Skipped)
}

func TestRun_RecencyWindowFiltersOldFiles(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	cfg := testConfig(srv.URL, outDir)
	cfg.RecencyDays = 7

	orch := NewOrchestrator(cfg, http.DefaultClient, slog.Default())
	_, err := orch.Run(context.Background())
	require.NoError(t, err)

	// created_at 2001 is far outside any recency window.
	assert.NoFileExists(t, filepath.Join(outDir, "Groups", "7 - eodLevel2", "ancient.zip"))
	assert.FileExists(t, filepath.Join(outDir, "Groups", "7 - eodLevel2", "options.zip"))
}

func TestRun_NoRecencyWindowDownloadsOldFiles(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	orch := NewOrchestrator(testConfig(srv.URL, outDir), http.DefaultClient, slog.Default())
	_, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "Groups", "7 - eodLevel2", "ancient.zip"))
}

func TestRun_CollectionAllowlist(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	cfg := testConfig(srv.URL, outDir)
	cfg.Collections = []string{"EODLEVEL2"} // matching is case-insensitive

	orch := NewOrchestrator(cfg, http.DefaultClient, slog.Default())
	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Downloaded)
	assert.FileExists(t, filepath.Join(outDir, "Groups", "7 - eodLevel2", "options.zip"))
	assert.NoDirExists(t, filepath.Join(outDir, "Purchases"))
}

func TestRun_TypeRestriction(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	orch := NewOrchestrator(testConfig(srv.URL, outDir), http.DefaultClient, slog.Default())
	orch.Types = []vault.CollectionType{vault.CollectionPurchase}

	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Downloaded)
	assert.NoDirExists(t, filepath.Join(outDir, "Groups"))
}

func TestRun_DryRun(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	orch := NewOrchestrator(testConfig(srv.URL, outDir), http.DefaultClient, slog.Default())
	orch.DryRun = true

	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Planned)
	assert.Zero(t, report.Downloaded)

	// Nothing was written.
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_ParallelFetches(t *testing.T) {
	srv := newVaultServer(t)
	outDir := t.TempDir()

	cfg := testConfig(srv.URL, outDir)
	cfg.Parallel = 4

	report, err := NewOrchestrator(cfg, http.DefaultClient, slog.Default()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Downloaded)
	assert.Zero(t, report.Failed)
}

func TestRun_BadCredentialsIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	orch := NewOrchestrator(testConfig(srv.URL, t.TempDir()), http.DefaultClient, slog.Default())
	_, err := orch.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrInvalidCredentials)
}

func TestRun_DiscoveryAndFailover(t *testing.T) {
	// Full path: discovery document -> unhealthy primary -> healthy
	// secondary -> login -> sync.
	healthyOrigin := newVaultServer(t)

	deadPrimary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer deadPrimary.Close()

	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"version": "1", "endpoints": [
			{"url": %q, "priority": 1, "label": "primary"},
			{"url": %q, "priority": 2, "label": "secondary"}
		]}`, deadPrimary.URL, healthyOrigin.URL)
	}))
	defer discovery.Close()

	outDir := t.TempDir()
	cfg := testConfig("", outDir)
	cfg.DiscoveryURL = discovery.URL

	report, err := NewOrchestrator(cfg, http.DefaultClient, slog.Default()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Downloaded)
}
