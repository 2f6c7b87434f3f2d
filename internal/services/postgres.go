package services

import (
	"context"
	"fmt"
)

// Pinger is satisfied by the storage repositories
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresCheck pings the primary store
func PostgresCheck(p Pinger) *BaseChecker {
	return NewChecker("postgres", func(ctx context.Context) error {
		if p == nil {
			return fmt.Errorf("no database configured")
		}
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
		return nil
	})
}
