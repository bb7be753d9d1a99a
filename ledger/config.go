package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Config holds the tunable knobs the fold needs.
type Config struct {
	// Tolerance is the epsilon used by the reimbursement queue's
	// exact-amount pop and comparable near-zero checks.
	Tolerance decimal.Decimal
}

// NewConfig creates a Config with the module's default tolerance.
func NewConfig() *Config {
	return &Config{
		Tolerance: Epsilon,
	}
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context, or a default Config
// if none was attached.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
