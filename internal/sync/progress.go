package sync

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/deltaneutral/dnfilevault-go/internal/vault"
)

// progressRenderer draws an in-place progress line for the download in
// flight. It is only constructed when stdout is a terminal and fetches run
// sequentially; cron and piped output see log lines instead, and parallel
// workers would interleave garbage. All methods are nil-receiver safe so
// the fetcher never has to branch on whether progress is enabled.
type progressRenderer struct {
	out io.Writer
}

// NewProgressRenderer returns a renderer when stdout is a TTY and the pool
// is sequential, nil otherwise.
func NewProgressRenderer(parallel int) *progressRenderer {
	if parallel != 1 || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}

	return &progressRenderer{out: os.Stdout}
}

// wrap returns a writer that updates the progress line as bytes arrive.
func (p *progressRenderer) wrap(w io.Writer, rec vault.FileRecord) io.Writer {
	if p == nil {
		return w
	}

	var total int64
	if rec.Size != nil {
		total = *rec.Size
	}

	return &progressWriter{
		w:     w,
		out:   p.out,
		total: total,
		start: time.Now(),
	}
}

// done terminates the in-place line after a download finishes or fails.
func (p *progressRenderer) done() {
	if p == nil {
		return
	}

	fmt.Fprintln(p.out)
}

// progressWriter renders percent (when the size is known) and throughput,
// redrawing in place with a carriage return.
type progressWriter struct {
	w       io.Writer
	out     io.Writer
	total   int64
	written int64
	start   time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)

	const mib = 1024 * 1024

	elapsed := time.Since(pw.start).Seconds()
	if elapsed <= 0 {
		return n, err
	}

	speed := float64(pw.written) / mib / elapsed

	if pw.total > 0 {
		percent := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.out, "\r    Progress: %6.1f%% | Speed: %6.2f MB/s", percent, speed)
	} else {
		fmt.Fprintf(pw.out, "\r    Downloaded: %7.1f MB | Speed: %6.2f MB/s", float64(pw.written)/mib, speed)
	}

	return n, err
}
