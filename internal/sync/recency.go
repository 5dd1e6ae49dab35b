package sync

import (
	"log/slog"
	"strings"
	"time"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// createdAtLayout is the fixed naive timestamp format the vault emits.
// The server sends no zone; values are treated as already UTC. This is a
// documented assumption carried from the server contract, not a conversion
// to be "fixed" client-side: reinterpreting it would silently shift which
// files count as recent.
const createdAtLayout = "2006-01-02 15:04:05"

// ParseCreatedAt parses a vault created_at timestamp as UTC.
func ParseCreatedAt(value string) (time.Time, error) {
	return time.ParseInLocation(createdAtLayout, strings.TrimSpace(value), time.UTC)
}

// FilterRecent returns the records created at or after cutoff (the boundary
// is inclusive). A nil cutoff passes everything through. Records whose
// created_at does not parse are excluded rather than failing the run:
// fail-closed, so one malformed timestamp cannot either abort the sync or
// sneak an unfilterable file past the window.
func FilterRecent(files []vault.FileRecord, cutoff *time.Time, logger *slog.Logger) []vault.FileRecord {
	if cutoff == nil {
		return files
	}

	if logger == nil {
		logger = slog.Default()
	}

	recent := make([]vault.FileRecord, 0, len(files))

	for _, f := range files {
		created, err := ParseCreatedAt(f.CreatedAt)
		if err != nil {
			logger.Warn("excluding record with unparsable created_at",
				slog.String("display_name", f.DisplayName),
				slog.String("created_at", f.CreatedAt),
			)

			continue
		}

		if !created.Before(*cutoff) {
			recent = append(recent, f)
		}
	}

	return recent
}
