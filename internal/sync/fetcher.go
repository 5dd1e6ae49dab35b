package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// partialSuffix marks in-progress downloads. It is a reserved suffix: the
// vault never serves files named *.partial, so a leftover can always be
// identified as ours.
const partialSuffix = ".partial"

// dirPermissions is the Unix mode for newly created mirror directories.
const dirPermissions = 0o755

// ErrNoDownloadID means a record has neither a usable cloud-share link nor
// a uuid_filename for the origin fallback route.
var ErrNoDownloadID = errors.New("sync: file record has no download identifier")

// OutcomeKind classifies the result of fetching one file.
type OutcomeKind int

const (
	// Skipped: the final path already exists (or another record claimed it
	// this run); no network call was made.
	Skipped OutcomeKind = iota
	// Downloaded: the file was streamed and atomically renamed into place.
	Downloaded
	// Planned: dry-run mode; the file would have been downloaded.
	Planned
	// Failed: both transports failed, or the record is unfetchable.
	Failed
)

// Source identifies which transport produced the bytes.
type Source string

const (
	SourceNone   Source = ""
	SourceCDN    Source = "cdn"
	SourceOrigin Source = "origin"
)

// Outcome is the per-file fetch result.
type Outcome struct {
	Kind   OutcomeKind
	Path   string
	Bytes  int64
	Source Source
	Err    error
}

// Fetcher executes the dual-source download protocol for single files:
// idempotence check, CDN primary, origin fallback, atomic finalize. A
// Fetcher is scoped to one run and one session; it tracks which target
// paths the run has claimed so that concurrent workers never race two
// in-flight downloads onto the same path.
type Fetcher struct {
	client       *vault.Client
	disambiguate bool
	dryRun       bool
	progress     *progressRenderer
	logger       *slog.Logger

	mu      gosync.Mutex
	claimed map[string]struct{}
}

// NewFetcher creates a Fetcher bound to an authenticated session.
// progress may be nil (no terminal rendering).
func NewFetcher(client *vault.Client, disambiguate, dryRun bool, progress *progressRenderer, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client:       client,
		disambiguate: disambiguate,
		dryRun:       dryRun,
		progress:     progress,
		logger:       logger,
		claimed:      make(map[string]struct{}),
	}
}

// Fetch downloads one file record into dir. Re-running against the same
// destination is always safe: an existing final path short-circuits to
// Skipped without touching the network, and a failed attempt leaves no
// partial artifacts behind.
func (f *Fetcher) Fetch(ctx context.Context, rec vault.FileRecord, dir string) Outcome {
	name := rec.DisplayName
	if name == "" {
		name = rec.UUIDFilename
	}

	finalPath, ok := f.claimTarget(dir, SanitizeName(name))
	if !ok {
		return Outcome{Kind: Skipped, Path: finalPath}
	}

	if f.dryRun {
		return Outcome{Kind: Planned, Path: finalPath}
	}

	return f.download(ctx, rec, finalPath)
}

// claimTarget resolves the final path for a sanitized name and claims it
// for this run. The existence check and the claim happen under one lock,
// which is the §5 requirement in practice: at most one in-flight fetch per
// destination path, even with parallel workers.
//
// An existing path means "already synced" and returns ok=false. In
// disambiguation mode, a path claimed by a different record earlier in this
// run (the only case where two distinct files are known to collide) gets a
// numeric suffix instead; on-disk files from prior runs are still treated
// as already synced, preserving idempotent re-runs.
func (f *Fetcher) claimTarget(dir, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(dir, name)

	if f.disambiguate {
		for n := 2; f.isClaimed(path); n++ {
			path = filepath.Join(dir, suffixedName(name, n))
		}
	} else if f.isClaimed(path) {
		return path, false
	}

	if _, err := os.Stat(path); err == nil {
		f.claimed[path] = struct{}{}
		return path, false
	}

	f.claimed[path] = struct{}{}

	return path, true
}

// isClaimed reports whether another record in this run owns path.
// Caller holds f.mu.
func (f *Fetcher) isClaimed(path string) bool {
	_, ok := f.claimed[path]
	return ok
}

// download runs the two-tier transport protocol and finalizes atomically.
func (f *Fetcher) download(ctx context.Context, rec vault.FileRecord, finalPath string) Outcome {
	if err := os.MkdirAll(filepath.Dir(finalPath), dirPermissions); err != nil {
		return Outcome{Kind: Failed, Path: finalPath, Err: fmt.Errorf("sync: creating directory: %w", err)}
	}

	partialPath := finalPath + partialSuffix

	// Primary: unauthenticated CDN mirror. Any failure here is soft and
	// falls through to the origin.
	if rec.CloudShareLink != "" {
		n, err := f.streamToPartial(ctx, partialPath, rec, SourceCDN)
		if err == nil {
			return f.finalize(partialPath, finalPath, n, SourceCDN)
		}

		f.logger.Warn("cdn fetch failed, falling back to origin",
			slog.String("path", finalPath),
			slog.String("error", err.Error()),
		)
	}

	// Fallback: authenticated origin by stable identifier.
	if rec.UUIDFilename == "" {
		return Outcome{Kind: Failed, Path: finalPath, Err: ErrNoDownloadID}
	}

	n, err := f.streamToPartial(ctx, partialPath, rec, SourceOrigin)
	if err != nil {
		return Outcome{Kind: Failed, Path: finalPath, Err: err}
	}

	return f.finalize(partialPath, finalPath, n, SourceOrigin)
}

// streamToPartial streams one transport's body into the partial file.
// The partial file lives in the same directory as the final path so the
// rename in finalize stays on one filesystem. On any error the partial
// file is removed before returning.
func (f *Fetcher) streamToPartial(ctx context.Context, partialPath string, rec vault.FileRecord, src Source) (int64, error) {
	out, err := os.Create(partialPath)
	if err != nil {
		return 0, fmt.Errorf("sync: creating partial file: %w", err)
	}

	w := f.progress.wrap(out, rec)

	var n int64

	switch src {
	case SourceCDN:
		n, err = f.client.FetchShared(ctx, rec.CloudShareLink, w)
	case SourceOrigin:
		n, err = f.client.DownloadByID(ctx, rec.UUIDFilename, w)
	default:
		err = fmt.Errorf("sync: unknown transport %q", src)
	}

	f.progress.done()

	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("sync: closing partial file: %w", closeErr)
	}

	if err != nil {
		_ = os.Remove(partialPath) // best-effort cleanup; nothing actionable on failure
		return 0, err
	}

	return n, nil
}

// finalize atomically moves the fully written partial file onto the final
// path. A pre-existing final path is removed first so the rename cannot
// fail on platforms that refuse to rename over an existing file;
// last-writer-wins is acceptable for this mirror.
func (f *Fetcher) finalize(partialPath, finalPath string, n int64, src Source) Outcome {
	if _, err := os.Stat(finalPath); err == nil {
		_ = os.Remove(finalPath)
	}

	if err := os.Rename(partialPath, finalPath); err != nil {
		_ = os.Remove(partialPath)
		return Outcome{Kind: Failed, Path: finalPath, Err: fmt.Errorf("sync: renaming partial file: %w", err)}
	}

	f.logger.Info("downloaded",
		slog.String("path", finalPath),
		slog.Int64("bytes", n),
		slog.String("source", string(src)),
	)

	return Outcome{Kind: Downloaded, Path: finalPath, Bytes: n, Source: src}
}
