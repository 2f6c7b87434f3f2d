package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careerlens/careerlens-api/internal/metrics"
)

const keyPrefix = "cl:"

// Options configures a Cache
type Options struct {
	RedisAddress    string // empty disables L2
	RedisPassword   string
	RedisDB         int
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// Cache is a 2-tier cache: L1 in-memory, L2 Redis.
// Values are stored as JSON so both tiers hold identical bytes.
// A nil *Cache is valid and never hits.
type Cache struct {
	l1         sync.Map      // key → *entry
	rdb        *redis.Client // nil if Redis unavailable
	ttl        time.Duration
	maxEntries int
	cleanup    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// New creates a cache and connects L2 when an address is given.
// An unreachable Redis only disables L2.
func New(ctx context.Context, opts Options) *Cache {
	c := &Cache{
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		cleanup:    opts.CleanupInterval,
	}
	if c.ttl <= 0 {
		c.ttl = 10 * time.Minute
	}

	if opts.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddress,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("cache: redis unreachable, L2 disabled", "address", opts.RedisAddress, "error", err)
			rdb.Close()
		} else {
			c.rdb = rdb
			slog.Info("cache: L2 redis connected", "address", opts.RedisAddress)
		}
	}

	slog.Info("cache: initialized", "ttl", c.ttl, "redis", c.rdb != nil, "max_entries", c.maxEntries)
	return c
}

// Key builds a deterministic key in namespace ns from parts.
// Keys in one namespace share a prefix so InvalidatePrefix can drop them together.
func Key(ns string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s%s:%x", keyPrefix, ns, hash[:12])
}

// Prefix returns the key prefix of namespace ns
func Prefix(ns string) string {
	return keyPrefix + ns + ":"
}

// Get loads key into dest. It tries L1, then L2; an L2 hit populates L1.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	if val, ok := c.l1.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) && json.Unmarshal(e.data, dest) == nil {
			c.hit("l1")
			return true
		}
		c.l1.Delete(key) // expired or corrupt
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(data, dest) == nil {
			c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})
			c.hit("l2")
			return true
		}
		if err != nil && err != redis.Nil {
			slog.Debug("cache: L2 get failed", "key", key, "error", err)
		}
	}

	c.misses.Add(1)
	metrics.CacheRequests.WithLabelValues("all", "miss").Inc()
	return false
}

func (c *Cache) hit(tier string) {
	c.hits.Add(1)
	metrics.CacheRequests.WithLabelValues(tier, "hit").Inc()
}

// Set stores value in both tiers
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Debug("cache: marshal failed", "key", key, "error", err)
		return
	}

	c.evictIfNeeded()
	c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", "key", key, "error", err)
		}
	}
}

// InvalidatePrefix removes every key starting with prefix from both tiers
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}

	c.l1.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.l1.Delete(key)
		}
		return true
	})

	if c.rdb == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Stats returns hit and miss counters
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// RedisEnabled reports whether L2 is connected
func (c *Cache) RedisEnabled() bool {
	return c != nil && c.rdb != nil
}

// Ping checks L2 connectivity; a cache without L2 is always healthy
func (c *Cache) Ping(ctx context.Context) error {
	if !c.RedisEnabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis client
func (c *Cache) Close() error {
	if !c.RedisEnabled() {
		return nil
	}
	return c.rdb.Close()
}

// evictIfNeeded drops expired entries, then the soonest-expiring ones,
// until L1 is under maxEntries.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if e, ok := val.(*entry); ok && e.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

// Run removes expired L1 entries periodically until ctx is cancelled
func (c *Cache) Run(ctx context.Context) {
	if c == nil {
		return
	}
	interval := c.cleanup
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
