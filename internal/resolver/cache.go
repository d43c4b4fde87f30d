package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"nightbite/internal/heuristic"
	"nightbite/internal/model"
)

// DefaultCacheSize bounds the in-process cache when no size is configured
const DefaultCacheSize = 1024

// RedisKeyPrefix namespaces cached intents in a shared Redis
const RedisKeyPrefix = "nightbite:intent:"

// Cache stores resolved intents by trimmed query. Implementations must be
// safe for concurrent use and must not hand out memory shared with callers.
type Cache interface {
	Get(ctx context.Context, key string) (model.ParsedIntent, bool)
	Set(ctx context.Context, key string, intent model.ParsedIntent)
}

// LRUCache is a bounded in-process cache
type LRUCache struct {
	entries *lru.Cache[string, model.ParsedIntent]
}

// NewLRUCache creates an LRU cache holding at most size entries
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, model.ParsedIntent](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (model.ParsedIntent, bool) {
	intent, ok := c.entries.Get(key)
	if !ok {
		return model.ParsedIntent{}, false
	}
	return intent.Clone(), true
}

func (c *LRUCache) Set(_ context.Context, key string, intent model.ParsedIntent) {
	c.entries.Add(key, intent.Clone())
}

// Len reports the number of cached entries
func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// RedisCache shares resolved intents between processes. Redis failures are
// logged and treated as a miss or a dropped write.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed cache. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("redis_cache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (model.ParsedIntent, bool) {
	// a cancelled caller still gets an entry that is already there
	data, err := c.client.Get(context.WithoutCancel(ctx), RedisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.ParsedIntent{}, false
	} else if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return model.ParsedIntent{}, false
	}

	var intent model.ParsedIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return model.ParsedIntent{}, false
	}
	return inRange(intent), true
}

func (c *RedisCache) Set(ctx context.Context, key string, intent model.ParsedIntent) {
	data, err := json.Marshal(intent)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	// a cancelled lookup still leaves its result behind for the next caller
	if err := c.client.Set(context.WithoutCancel(ctx), RedisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// inRange restores the intent invariants on data this process did not
// produce: non-nil term slices, minutes in [0, 1440), budget in [0, MaxInt32]
func inRange(intent model.ParsedIntent) model.ParsedIntent {
	if intent.Terms == nil {
		intent.Terms = []string{}
	}
	if intent.LocationTerms == nil {
		intent.LocationTerms = []string{}
	}
	if intent.TargetMinutes != nil {
		intent.TargetMinutes = model.IntPtr(heuristic.ClampMinutes(float64(*intent.TargetMinutes)))
	}
	if intent.MaxBudgetYen != nil {
		intent.MaxBudgetYen = model.IntPtr(heuristic.ClampBudget(float64(*intent.MaxBudgetYen)))
	}
	return intent
}
