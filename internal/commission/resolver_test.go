package commission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/shared"
)

type mapRateStore struct {
	rates map[string]PlatformRate
}

func (m *mapRateStore) GetByName(ctx context.Context, name string) (PlatformRate, error) {
	if p, ok := m.rates[strings.ToLower(name)]; ok {
		return p, nil
	}
	return PlatformRate{}, shared.NotFoundf("platform rate")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveKnownPlatform(t *testing.T) {
	store := &mapRateStore{rates: map[string]PlatformRate{
		"airbnb": {Name: "Airbnb", Rate: dec("3.00"), Active: true},
	}}
	resolver := NewResolver(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rate, err := resolver.Resolve(context.Background(), "airbnb")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !rate.Equal(dec("3.00")) {
		t.Fatalf("expected rate 3.00, got %s", rate)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	store := &mapRateStore{rates: map[string]PlatformRate{
		"booking.com": {Name: "Booking.com", Rate: dec("18.00"), Active: true},
	}}
	resolver := NewResolver(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rate, err := resolver.Resolve(context.Background(), "BOOKING.COM")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !rate.Equal(dec("18.00")) {
		t.Fatalf("expected rate 18.00, got %s", rate)
	}
}

func TestResolveInactivePlatformStillMatches(t *testing.T) {
	store := &mapRateStore{rates: map[string]PlatformRate{
		"vrbo": {Name: "Vrbo", Rate: dec("8.00"), Active: false},
	}}
	resolver := NewResolver(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rate, err := resolver.Resolve(context.Background(), "vrbo")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !rate.Equal(dec("8.00")) {
		t.Fatalf("inactive rows must still resolve, got %s", rate)
	}
}

func TestResolveUnknownPlatformDefaults(t *testing.T) {
	resolver := NewResolver(&mapRateStore{rates: map[string]PlatformRate{}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rate, err := resolver.Resolve(context.Background(), "nosuchplatform")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !rate.Equal(DefaultRate) {
		t.Fatalf("expected default rate %s, got %s", DefaultRate, rate)
	}
}

func TestResolveDirectBookingDefaults(t *testing.T) {
	resolver := NewResolver(&mapRateStore{rates: map[string]PlatformRate{}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rate, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !rate.Equal(dec("15.00")) {
		t.Fatalf("expected 15.00 for direct bookings, got %s", rate)
	}
}

type failingRateStore struct{}

func (failingRateStore) GetByName(ctx context.Context, name string) (PlatformRate, error) {
	return PlatformRate{}, errors.New("connection refused")
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	resolver := NewResolver(failingRateStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := resolver.Resolve(context.Background(), "airbnb"); err == nil {
		t.Fatal("expected error from failing store")
	}
}
