package commission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/shared"
)

// DefaultRate is applied when a booking has no platform or the platform has
// no stored rate.
var DefaultRate = decimal.RequireFromString("15.00")

// RateStore is the lookup surface the resolver needs.
type RateStore interface {
	GetByName(ctx context.Context, name string) (PlatformRate, error)
}

// Resolver maps a platform name to its commission rate, falling back to
// DefaultRate for unknown platforms and direct bookings.
type Resolver struct {
	store  RateStore
	logger *slog.Logger
}

// NewResolver constructs a resolver.
func NewResolver(store RateStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the rate for platform. An empty platform means a direct
// booking and resolves to the default without a lookup. An unknown platform
// also resolves to the default, logged at warn so silently mispriced
// platforms surface in the logs.
func (r *Resolver) Resolve(ctx context.Context, platform string) (decimal.Decimal, error) {
	if platform == "" {
		return DefaultRate, nil
	}
	rate, err := r.store.GetByName(ctx, platform)
	if errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("no commission rate for platform, using default",
			slog.String("platform", platform),
			slog.String("default_rate", DefaultRate.String()))
		return DefaultRate, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}
