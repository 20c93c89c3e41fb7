package translation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Cache stores translated strings by key.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *goredis.Client
}

// NewRedisCache connects to the Redis server at addr. The connection is lazy;
// call Ping to check it.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{rdb: goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedTranslator memoizes another Translator. Cache failures are logged and
// bypassed.
type CachedTranslator struct {
	next   Translator
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ Translator = (*CachedTranslator)(nil)

// NewCachedTranslator wraps next with cache.
func NewCachedTranslator(next Translator, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedTranslator {
	return &CachedTranslator{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "translation_cache"),
	}
}

// CacheKey returns the key a translation is stored under:
// cloze:tr:{from}:{to}:{sha1(text)}.
func CacheKey(text string, from, to domain.Language) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("cloze:tr:%s:%s:%s", from, to, hex.EncodeToString(sum[:]))
}

// Translate implements Translator.
func (t *CachedTranslator) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	key := CacheKey(text, from, to)

	v, ok, err := t.cache.Get(ctx, key)
	switch {
	case err != nil:
		t.logger.WarnContext(ctx, "translation cache read failed", "error", err)
	case ok:
		return v, nil
	}

	out, err := t.next.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}

	if err := t.cache.Set(ctx, key, out, t.ttl); err != nil {
		t.logger.WarnContext(ctx, "translation cache write failed", "error", err)
	}
	return out, nil
}
