package services

import (
	"context"
	"errors"
)

// ErrDisabled marks an optional dependency that is not configured.
// It is reported but does not fail readiness.
var ErrDisabled = errors.New("not configured")

// Checker reports whether a dependency is usable
type Checker interface {
	// Name identifies the dependency in health reports
	Name() string

	// HealthCheck checks if the dependency is available
	HealthCheck(ctx context.Context) error
}

// BaseChecker adapts a function to Checker
type BaseChecker struct {
	name  string
	check func(ctx context.Context) error
}

// NewChecker creates a Checker from a function
func NewChecker(name string, check func(ctx context.Context) error) *BaseChecker {
	return &BaseChecker{name: name, check: check}
}

// Name returns the dependency name
func (c *BaseChecker) Name() string {
	return c.name
}

// HealthCheck runs the check function
func (c *BaseChecker) HealthCheck(ctx context.Context) error {
	return c.check(ctx)
}

// AdvisorCheck reports the AI provider configuration. No request is made to
// the provider; an unconfigured key reports ErrDisabled.
func AdvisorCheck(enabled func() bool) *BaseChecker {
	return NewChecker("openai", func(context.Context) error {
		if !enabled() {
			return ErrDisabled
		}
		return nil
	})
}
