package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/quiz"
)

// cacheKeyVersion is bumped whenever the cached payload shape changes.
const cacheKeyVersion = "v1"

// Cache stores fetched candidate lists.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	Prefix      string
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisCache creates a cache client. It does not connect until first
// use; call Ping to verify the server is reachable.
func NewRedisCache(opts RedisOptions) *RedisCache {
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = 2 * time.Second
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "adaptiq"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dial,
		MaxRetries:  -1,
	})
	return &RedisCache{rdb: rdb, prefix: prefix}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+":"+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+":"+key, val, ttl).Err()
}

// CachedSource is a decorator that serves repeated fetches from a Cache.
// Cache failures are logged and fall through to the inner source.
type CachedSource struct {
	inner Source
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// WithCache wraps src with cache. Entries expire after ttl.
func WithCache(src Source, cache Cache, ttl time.Duration, log *logger.Logger) Source {
	return &CachedSource{inner: src, cache: cache, ttl: ttl, log: logger.OrNop(log)}
}

func (c *CachedSource) Fetch(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error) {
	key := cacheKey(topic, grade, f)

	raw, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("question bank cache read failed", "key", key, "error", err)
	case ok:
		var cands []quiz.Candidate
		if err := json.Unmarshal(raw, &cands); err == nil {
			return cands, nil
		}
		c.log.Warn("discarding corrupt question bank cache entry", "key", key)
	}

	cands, err := c.inner.Fetch(ctx, topic, grade, f)
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(cands)
	if err != nil {
		return cands, nil
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("question bank cache write failed", "key", key, "error", err)
	}
	return cands, nil
}

func cacheKey(topic string, grade int, f Filters) string {
	subs := slices.Clone(f.Subtopics)
	slices.Sort(subs)
	return fmt.Sprintf("bank:%s:%s:%d:%s:%.2f:%d",
		cacheKeyVersion, topic, grade, strings.Join(subs, ","), f.Difficulty, f.Limit)
}
