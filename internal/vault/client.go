package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultUserAgent identifies this client to the origin API. The remote
// throttles traffic that looks like default HTTP tooling, so every origin
// request must carry a recognizable agent string.
const DefaultUserAgent = "DNFileVaultClient/2.0 (+support@deltaneutral.com)"

// Per-call timeout classes. Listing payloads can be large, and origin
// downloads are served slower than the CDN mirror.
const (
	probeTimeout    = 10 * time.Second
	loginTimeout    = 60 * time.Second
	listTimeout     = 60 * time.Second
	downloadTimeout = 300 * time.Second
	sharedTimeout   = 30 * time.Second
)

// Client is an authenticated session against one healthy origin endpoint.
// It holds the bearer token obtained at login and attaches it, together
// with the identifying User-Agent, to every origin request. The token is
// never refreshed mid-run; a Client is immutable after creation and safe
// for concurrent use.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a session client from an already-obtained bearer token.
// Most callers use Login instead; this constructor exists for tests and for
// resuming with an externally supplied token.
func NewClient(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		userAgent:  DefaultUserAgent,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the origin endpoint this session is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get executes a single authenticated GET against the origin. No retries:
// listing and download calls are one-shot, and their failures are scoped by
// the caller (per collection or per file). Non-2xx responses are drained,
// closed, and returned as *APIError. On success the caller owns the body.
func (c *Client) get(ctx context.Context, path string, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("vault: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("vault: GET %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		body := readErrBody(resp)
		cancel()

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    body,
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	// The context must outlive this function so its deadline keeps bounding
	// the body stream. Tie cancellation to body close instead.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

// cancelOnClose releases the per-call context when the response body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()

	return err
}

// readErrBody reads a bounded excerpt of an error response body and closes it.
func readErrBody(resp *http.Response) string {
	const maxErrBody = 4096

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	if err != nil {
		return "(failed to read response body)"
	}

	return string(body)
}
