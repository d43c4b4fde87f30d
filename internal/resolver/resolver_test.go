package resolver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightbite/internal/heuristic"
	"nightbite/internal/model"
)

type intentServer struct {
	*httptest.Server
	hits    atomic.Int32
	queries chan string
}

func newIntentServer(t *testing.T, handler func(w http.ResponseWriter, query string)) *intentServer {
	t.Helper()
	s := &intentServer{queries: make(chan string, 16)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		var req model.SearchIntentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.queries <- req.Query
		handler(w, req.Query)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestResolver(t *testing.T, endpoint string) *Resolver {
	t.Helper()
	cache, err := NewLRUCache(8)
	require.NoError(t, err)
	r, err := New(endpoint, nil, cache, nil)
	require.NoError(t, err)
	return r
}

func TestResolve_UsesEndpointOncePerQuery(t *testing.T) {
	srv := newIntentServer(t, func(w http.ResponseWriter, query string) {
		_, _ = w.Write([]byte(`{"intent":{"terms":["tonkotsu"],"locationTerms":["shibuya"],"targetMinutes":1380,"maxBudgetYen":null,"wantsNearby":false},"source":"groq"}`))
	})
	r := newTestResolver(t, srv.URL)

	first := r.Resolve(context.Background(), "  late night ramen in shibuya ")
	assert.Equal(t, "late night ramen in shibuya", <-srv.queries)
	assert.Equal(t, []string{"tonkotsu"}, first.Terms)
	assert.Equal(t, model.IntPtr(1380), first.TargetMinutes)

	second := r.Resolve(context.Background(), "late night ramen in shibuya")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestResolve_ReturnsIndependentCopies(t *testing.T) {
	srv := newIntentServer(t, func(w http.ResponseWriter, query string) {
		_, _ = w.Write([]byte(`{"intent":{"terms":["sushi"],"locationTerms":[],"targetMinutes":null,"maxBudgetYen":3000,"wantsNearby":true},"source":"groq"}`))
	})
	r := newTestResolver(t, srv.URL)

	first := r.Resolve(context.Background(), "sushi")
	first.Terms[0] = "mutated"
	*first.MaxBudgetYen = 1

	second := r.Resolve(context.Background(), "sushi")
	assert.Equal(t, []string{"sushi"}, second.Terms)
	assert.Equal(t, model.IntPtr(3000), second.MaxBudgetYen)
}

func TestResolve_ClampsEndpointIntent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMinutes int
		wantBudget  int
	}{
		{
			name:        "above range",
			body:        `{"intent":{"terms":["ramen"],"locationTerms":[],"targetMinutes":5000,"maxBudgetYen":9000000000,"wantsNearby":false},"source":"groq"}`,
			wantMinutes: 1439,
			wantBudget:  math.MaxInt32,
		},
		{
			name:        "below range",
			body:        `{"intent":{"terms":["ramen"],"locationTerms":[],"targetMinutes":-30,"maxBudgetYen":-300,"wantsNearby":false},"source":"groq"}`,
			wantMinutes: 0,
			wantBudget:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newIntentServer(t, func(w http.ResponseWriter, query string) {
				_, _ = w.Write([]byte(tt.body))
			})
			r := newTestResolver(t, srv.URL)

			for i := 0; i < 2; i++ {
				got := r.Resolve(context.Background(), "ramen")
				require.NotNil(t, got.TargetMinutes)
				require.NotNil(t, got.MaxBudgetYen)
				assert.Equal(t, tt.wantMinutes, *got.TargetMinutes)
				assert.Equal(t, tt.wantBudget, *got.MaxBudgetYen)
			}
			assert.Equal(t, int32(1), srv.hits.Load())
		})
	}
}

func TestResolve_FallsBackToHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, query string)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, query string) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "null intent",
			handler: func(w http.ResponseWriter, query string) {
				_, _ = w.Write([]byte(`{"intent":null,"source":"empty"}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, query string) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
	}

	const query = "cheap izakaya near me"
	want := heuristic.Extract(query)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newIntentServer(t, tt.handler)
			r := newTestResolver(t, srv.URL)

			assert.Equal(t, want, r.Resolve(context.Background(), query))
			assert.Equal(t, want, r.Resolve(context.Background(), query))
			assert.Equal(t, int32(1), srv.hits.Load(), "fallback results are cached")
		})
	}
}

func TestResolve_UnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	r := newTestResolver(t, endpoint)
	assert.Equal(t, heuristic.Extract("sushi in ginza"), r.Resolve(context.Background(), "sushi in ginza"))
}

func TestResolve_Cancelled(t *testing.T) {
	srv := newIntentServer(t, func(w http.ResponseWriter, query string) {
		_, _ = w.Write([]byte(`{"intent":{"terms":["x"],"locationTerms":[],"targetMinutes":null,"maxBudgetYen":null,"wantsNearby":false},"source":"groq"}`))
	})
	r := newTestResolver(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.Resolve(ctx, "brunch in ebisu")
	assert.Equal(t, heuristic.Extract("brunch in ebisu"), got)
	assert.Equal(t, int32(0), srv.hits.Load())
}

func TestResolve_EmptyQuery(t *testing.T) {
	srv := newIntentServer(t, func(w http.ResponseWriter, query string) {
		t.Errorf("unexpected request for %q", query)
	})
	cache, err := NewLRUCache(8)
	require.NoError(t, err)
	r, err := New(srv.URL, nil, cache, nil)
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, heuristic.Extract(""), r.Resolve(context.Background(), q))
	}
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_Evicts(t *testing.T) {
	cache, err := NewLRUCache(2)
	require.NoError(t, err)
	ctx := context.Background()

	cache.Set(ctx, "a", heuristic.Extract("ramen"))
	cache.Set(ctx, "b", heuristic.Extract("sushi"))
	_, _ = cache.Get(ctx, "a")
	cache.Set(ctx, "c", heuristic.Extract("yakitori"))

	_, ok := cache.Get(ctx, "b")
	assert.False(t, ok)
	got, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []string{"ramen"}, got.Terms)
	assert.Equal(t, 2, cache.Len())
}
