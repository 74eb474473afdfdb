package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlunit"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "tlunit:tm:"
	scanBatch          = 200
)

// RedisCache is a Redis-backed translation memory. Values are stored as
// plain strings, so provenance is not kept.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	timeout   time.Duration
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: "tlunit:tm:")
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &tlunit.CacheError{Message: "invalid redis url", Cause: err}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &tlunit.CacheError{Message: "redis ping failed", Cause: err}
	}

	return NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultRedisPrefix
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		timeout:   5 * time.Second,
	}
}

func (c *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Get retrieves a translation. Redis errors are reported as misses.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := c.ctx()
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a translation. Empty values are not stored.
func (c *RedisCache) Set(key string, value string) error {
	if value == "" {
		return nil
	}
	ctx, cancel := c.ctx()
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return &tlunit.CacheError{Message: "redis set failed", Cause: err}
	}
	return nil
}

// SetEntry stores e.Value under e.Key.
func (c *RedisCache) SetEntry(e Entry) error {
	return c.Set(e.Key, e.Value)
}

// Keys lists every key under the prefix with SCAN, prefix removed and
// sorted.
func (c *RedisCache) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, &tlunit.CacheError{Message: "redis scan failed", Cause: err}
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, c.keyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)

	// SCAN may return a key more than once
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			out = append(out, k)
		}
	}
	return out, nil
}

// Entries reads every entry under the prefix. Keys that vanish between the
// scan and the read are skipped.
func (c *RedisCache) Entries() ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	keys, err := c.Keys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := start + scanBatch
		if end > len(keys) {
			end = len(keys)
		}
		full := make([]string, end-start)
		for i, k := range keys[start:end] {
			full[i] = c.keyPrefix + k
		}

		vals, err := c.client.MGet(ctx, full...).Result()
		if err != nil {
			return nil, &tlunit.CacheError{Message: "redis mget failed", Cause: err}
		}
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				continue
			}
			entries = append(entries, Entry{Key: keys[start+i], Value: s})
		}
	}
	return entries, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return &tlunit.CacheError{Message: "redis ping failed", Cause: err}
	}
	return nil
}

var _ EntryStore = (*RedisCache)(nil)
