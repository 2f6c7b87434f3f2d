package services

import (
	"context"
	"fmt"

	"github.com/careerlens/careerlens-api/internal/cache"
)

// RedisCheck pings the cache's L2 tier. A cache without Redis reports ErrDisabled.
func RedisCheck(c *cache.Cache) *BaseChecker {
	return NewChecker("redis", func(ctx context.Context) error {
		if !c.RedisEnabled() {
			return ErrDisabled
		}
		if err := c.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		return nil
	})
}
