// Package resolver is the client side of intent resolution: it asks the
// search-intent endpoint once per distinct query and caches the answer,
// falling back to the local heuristic when the endpoint cannot help.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nightbite/internal/heuristic"
	"nightbite/internal/model"
)

// Resolver resolves free-text queries into intents. Concurrent misses for
// the same query each issue their own request.
type Resolver struct {
	endpoint   string
	httpClient *http.Client
	cache      Cache
	logger     *zap.Logger
}

// New creates a resolver posting to endpoint. A nil httpClient uses
// http.DefaultClient; a nil cache gets a default-sized LRU.
func New(endpoint string, httpClient *http.Client, cache Cache, logger *zap.Logger) (*Resolver, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cache == nil {
		lruCache, err := NewLRUCache(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		cache = lruCache
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		endpoint:   endpoint,
		httpClient: httpClient,
		cache:      cache,
		logger:     logger.Named("resolver"),
	}, nil
}

// Resolve never fails. Whatever it returns, including heuristic fallbacks,
// is cached under the trimmed query and not retried.
func (r *Resolver) Resolve(ctx context.Context, query string) model.ParsedIntent {
	key := strings.TrimSpace(query)
	if key == "" {
		return heuristic.Extract("")
	}

	if intent, ok := r.cache.Get(ctx, key); ok {
		return intent
	}

	intent, err := r.fetch(ctx, key)
	if err != nil {
		r.logger.Warn("intent endpoint unavailable, using heuristic",
			zap.String("query", key),
			zap.Error(err))
		intent = heuristic.Extract(key)
	}

	r.cache.Set(ctx, key, intent)
	return intent.Clone()
}

func (r *Resolver) fetch(ctx context.Context, query string) (model.ParsedIntent, error) {
	body, err := json.Marshal(model.SearchIntentRequest{Query: query})
	if err != nil {
		return model.ParsedIntent{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.ParsedIntent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.ParsedIntent{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return model.ParsedIntent{}, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, snippet)
	}

	var envelope model.ResolutionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return model.ParsedIntent{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Intent == nil {
		r.logger.Debug("endpoint returned no intent, using heuristic",
			zap.String("query", query),
			zap.String("source", string(envelope.Source)))
		return heuristic.Extract(query), nil
	}

	r.logger.Debug("resolved intent",
		zap.String("query", query),
		zap.String("source", string(envelope.Source)))
	return inRange(*envelope.Intent), nil
}
