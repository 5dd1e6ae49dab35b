package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
)

// DefaultDiscoveryURL serves the current endpoint list from object storage.
const DefaultDiscoveryURL = "https://config.dnfilevault.com/endpoints.json"

// DefaultFallbackEndpoints is used whenever the discovery document cannot be
// fetched or parsed. It must never be empty: the run should always be able
// to attempt at least one origin.
var DefaultFallbackEndpoints = []Endpoint{
	{URL: "https://api.dnfilevault.com", Priority: 1, Label: "primary"},
	{URL: "https://api-redmint.dnfilevault.com", Priority: 2, Label: "redmint"},
}

// missingPriority sorts endpoints without an explicit priority last.
const missingPriority = 99

// HealthStatus is the probe outcome for a single endpoint, kept for
// diagnostic display.
type HealthStatus struct {
	Endpoint Endpoint
	Healthy  bool
	Detail   string
}

// Resolver discovers candidate origin endpoints and selects a healthy one.
// Discovery and probing are unauthenticated; nothing is cached across runs.
type Resolver struct {
	discoveryURL string
	fallback     []Endpoint
	httpClient   *http.Client
	userAgent    string
	logger       *slog.Logger
}

// NewResolver creates a Resolver. Empty discoveryURL or nil fallback use the
// package defaults.
func NewResolver(discoveryURL string, fallback []Endpoint, httpClient *http.Client, logger *slog.Logger) *Resolver {
	if discoveryURL == "" {
		discoveryURL = DefaultDiscoveryURL
	}

	if fallback == nil {
		fallback = DefaultFallbackEndpoints
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		discoveryURL: discoveryURL,
		fallback:     fallback,
		httpClient:   httpClient,
		userAgent:    DefaultUserAgent,
		logger:       logger,
	}
}

// Resolve fetches the discovery document and returns its endpoints sorted by
// ascending priority. Any failure (network, non-200, malformed body) falls
// back to the fixed endpoint list; discovery being unavailable never aborts
// a run. The returned slice is never empty.
func (r *Resolver) Resolve(ctx context.Context) []Endpoint {
	doc, err := r.fetchDiscovery(ctx)
	if err != nil {
		r.logger.Warn("endpoint discovery unavailable, using fallback list",
			slog.String("error", err.Error()),
			slog.Int("fallback_count", len(r.fallback)),
		)

		return slices.Clone(r.fallback)
	}

	if len(doc.Endpoints) == 0 {
		r.logger.Warn("discovery document lists no endpoints, using fallback list")
		return slices.Clone(r.fallback)
	}

	endpoints := slices.Clone(doc.Endpoints)
	for i := range endpoints {
		if endpoints[i].Priority == 0 {
			endpoints[i].Priority = missingPriority
		}
	}

	slices.SortStableFunc(endpoints, func(a, b Endpoint) int {
		return a.Priority - b.Priority
	})

	r.logger.Info("discovered endpoints",
		slog.Int("count", len(endpoints)),
		slog.String("config_version", doc.Version),
		slog.String("updated", doc.Updated),
	)

	return endpoints
}

// SelectHealthy probes each endpoint's /health route in order and returns
// the first one that answers 200 with status "healthy". Endpoints that time
// out, refuse the connection, return non-200, or report any other status are
// skipped without retry. Returns ErrNoHealthyEndpoint when all fail.
func (r *Resolver) SelectHealthy(ctx context.Context, endpoints []Endpoint) (Endpoint, error) {
	for _, ep := range endpoints {
		status := r.Probe(ctx, ep)
		if status.Healthy {
			r.logger.Info("selected healthy endpoint",
				slog.String("url", ep.URL),
				slog.String("label", ep.Label),
			)

			return ep, nil
		}

		r.logger.Warn("endpoint unhealthy, skipping",
			slog.String("url", ep.URL),
			slog.String("detail", status.Detail),
		)
	}

	return Endpoint{}, ErrNoHealthyEndpoint
}

// Probe checks a single endpoint's health route. Exported for the
// diagnostics command, which reports every endpoint rather than stopping at
// the first healthy one.
func (r *Resolver) Probe(ctx context.Context, ep Endpoint) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL+"/health", http.NoBody)
	if err != nil {
		return HealthStatus{Endpoint: ep, Detail: err.Error()}
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return HealthStatus{Endpoint: ep, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Endpoint: ep, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return HealthStatus{Endpoint: ep, Detail: "malformed health response"}
	}

	if body.Status != "healthy" {
		return HealthStatus{Endpoint: ep, Detail: "status: " + body.Status}
	}

	return HealthStatus{Endpoint: ep, Healthy: true, Detail: "healthy"}
}

// fetchDiscovery retrieves and parses the discovery document.
func (r *Resolver) fetchDiscovery(ctx context.Context) (*discoveryDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.discoveryURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating discovery request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned HTTP %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing discovery document: %w", err)
	}

	return &doc, nil
}
