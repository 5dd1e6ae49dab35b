package sync

import (
	gosync "sync"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// FileError records one recoverable per-file failure.
type FileError struct {
	Collection string
	Name       string
	Err        error
}

// ListingFailure records one collection (or collection type) whose listing
// call failed. The rest of the run is unaffected.
type ListingFailure struct {
	Collection string
	Err        error
}

// Report tallies the outcome of a sync run. Recoverable failures are
// counted here and never change the process exit code; the CLI layer
// renders the totals.
type Report struct {
	RunID           string
	Downloaded      int
	Skipped         int
	Planned         int
	Failed          int
	BytesDownloaded int64
	FileErrors      []FileError
	ListingFailures []ListingFailure

	mu gosync.Mutex
}

// record merges one fetch outcome into the tally. Safe for concurrent use
// by pool workers.
func (r *Report) record(col vault.Collection, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o.Kind {
	case Downloaded:
		r.Downloaded++
		r.BytesDownloaded += o.Bytes
	case Skipped:
		r.Skipped++
	case Planned:
		r.Planned++
	case Failed:
		r.Failed++
		r.FileErrors = append(r.FileErrors, FileError{
			Collection: col.Name,
			Name:       o.Path,
			Err:        o.Err,
		})
	}
}

// recordListingFailure notes a skipped collection. Safe for concurrent use.
func (r *Report) recordListingFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ListingFailures = append(r.ListingFailures, ListingFailure{Collection: name, Err: err})
}
