package vault

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SortsByPriority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"version": "3",
			"updated": "2026-01-15",
			"endpoints": [
				{"url": "https://c.example.com", "label": "tertiary"},
				{"url": "https://b.example.com", "priority": 2, "label": "secondary"},
				{"url": "https://a.example.com", "priority": 1, "label": "primary"}
			]
		}`)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil, http.DefaultClient, slog.Default())
	endpoints := r.Resolve(context.Background())

	require.Len(t, endpoints, 3)
	assert.Equal(t, "https://a.example.com", endpoints[0].URL)
	assert.Equal(t, "https://b.example.com", endpoints[1].URL)
	// Missing priority sorts last.
	assert.Equal(t, "https://c.example.com", endpoints[2].URL)
}

func TestResolve_DiscoveryFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{not json`)
		}},
		{"empty endpoint list", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"version": "1", "endpoints": []}`)
		}},
	}

	fallback := []Endpoint{{URL: "https://fallback.example.com", Priority: 1, Label: "fallback"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewResolver(srv.URL, fallback, http.DefaultClient, slog.Default())
			endpoints := r.Resolve(context.Background())

			require.Len(t, endpoints, 1)
			assert.Equal(t, "https://fallback.example.com", endpoints[0].URL)
		})
	}
}

func TestResolve_UnreachableDiscoveryFallsBack(t *testing.T) {
	r := NewResolver("http://127.0.0.1:1/endpoints.json", nil, http.DefaultClient, slog.Default())
	endpoints := r.Resolve(context.Background())

	// The default fallback list is never empty.
	require.NotEmpty(t, endpoints)
	assert.Equal(t, DefaultFallbackEndpoints, endpoints)
}

func TestSelectHealthy_FirstHealthyWins(t *testing.T) {
	var downProbes atomic.Int32

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downProbes.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		fmt.Fprint(w, `{"status": "healthy"}`)
	}))
	defer healthy.Close()

	r := NewResolver("", nil, http.DefaultClient, slog.Default())
	endpoints := []Endpoint{
		{URL: down.URL, Priority: 1, Label: "down"},
		{URL: healthy.URL, Priority: 2, Label: "up"},
	}

	selected, err := r.SelectHealthy(context.Background(), endpoints)
	require.NoError(t, err)
	assert.Equal(t, healthy.URL, selected.URL)
	// The lower-priority endpoint was attempted before the healthy one.
	assert.Equal(t, int32(1), downProbes.Load())
}

func TestSelectHealthy_SkipsNonHealthyStatus(t *testing.T) {
	degraded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "degraded"}`)
	}))
	defer degraded.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "healthy"}`)
	}))
	defer healthy.Close()

	r := NewResolver("", nil, http.DefaultClient, slog.Default())
	selected, err := r.SelectHealthy(context.Background(), []Endpoint{
		{URL: degraded.URL, Priority: 1},
		{URL: healthy.URL, Priority: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, healthy.URL, selected.URL)
}

func TestSelectHealthy_AllDown(t *testing.T) {
	r := NewResolver("", nil, http.DefaultClient, slog.Default())

	_, err := r.SelectHealthy(context.Background(), []Endpoint{
		{URL: "http://127.0.0.1:1", Priority: 1},
		{URL: "http://127.0.0.1:2", Priority: 2},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoHealthyEndpoint)
}

func TestProbe_MalformedHealthBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	r := NewResolver("", nil, http.DefaultClient, slog.Default())
	status := r.Probe(context.Background(), Endpoint{URL: srv.URL})

	assert.False(t, status.Healthy)
	assert.Equal(t, "malformed health response", status.Detail)
}
