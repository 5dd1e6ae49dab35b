package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DownloadByID streams a file from the authenticated origin download route
// to w and returns the number of bytes written. This is the fallback
// transport: slower than the CDN mirror but authoritative. Non-200 is fatal
// for this file (no retry); the caller moves on to the next record.
func (c *Client) DownloadByID(ctx context.Context, uuidFilename string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, "/download/"+uuidFilename, downloadTimeout)
	if err != nil {
		return 0, fmt.Errorf("vault: downloading %s: %w", uuidFilename, err)
	}
	defer resp.Body.Close()

	n, err := streamBody(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("vault: streaming %s: %w", uuidFilename, err)
	}

	c.logger.Debug("origin download complete",
		slog.String("uuid_filename", uuidFilename),
		slog.Int64("bytes", n),
	)

	return n, nil
}

// FetchShared streams a cloud-share link to w. The link is a public mirror
// URL: the request deliberately carries no Authorization header and no
// identifying User-Agent, because the session's credentials must never leak
// to the CDN host. Failures here are soft; the caller falls back to
// DownloadByID.
func (c *Client) FetchShared(ctx context.Context, shareURL string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sharedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shareURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("vault: creating share request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("vault: fetching share link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "share link fetch failed",
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	n, err := streamBody(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("vault: streaming share link: %w", err)
	}

	return n, nil
}

// streamChunkSize is the copy buffer size for streamed downloads (1 MiB).
const streamChunkSize = 1 << 20

// streamBody copies a response body to w in fixed-size chunks.
func streamBody(w io.Writer, body io.Reader) (int64, error) {
	buf := make([]byte, streamChunkSize)
	return io.CopyBuffer(w, body, buf)
}
