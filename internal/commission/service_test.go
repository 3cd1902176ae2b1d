package commission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/projectledger/projectledger/internal/shared"
)

type mockCommissionStore struct {
	mapRateStore
	createFn func(ctx context.Context, p PlatformRate) (PlatformRate, error)
	updateFn func(ctx context.Context, id int64, p PlatformRate) error
	getFn    func(ctx context.Context, id int64) (PlatformRate, error)
}

func (m *mockCommissionStore) Get(ctx context.Context, id int64) (PlatformRate, error) {
	return m.getFn(ctx, id)
}

func (m *mockCommissionStore) List(ctx context.Context) ([]PlatformRate, error) { return nil, nil }

func (m *mockCommissionStore) Create(ctx context.Context, p PlatformRate) (PlatformRate, error) {
	return m.createFn(ctx, p)
}

func (m *mockCommissionStore) Update(ctx context.Context, id int64, p PlatformRate) error {
	return m.updateFn(ctx, id, p)
}

func (m *mockCommissionStore) Delete(ctx context.Context, id int64) error { return nil }

func TestCreatePlatformRate(t *testing.T) {
	store := &mockCommissionStore{
		mapRateStore: mapRateStore{rates: map[string]PlatformRate{}},
		createFn: func(ctx context.Context, p PlatformRate) (PlatformRate, error) {
			p.ID = 1
			return p, nil
		},
	}
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	created, err := svc.Create(context.Background(), CreatePlatformRateRequest{Name: "Airbnb", Rate: dec("3.00")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.Active {
		t.Fatal("new platform rates must start active")
	}
}

func TestCreatePlatformRateDuplicateName(t *testing.T) {
	store := &mockCommissionStore{
		mapRateStore: mapRateStore{rates: map[string]PlatformRate{
			"airbnb": {ID: 1, Name: "Airbnb", Rate: dec("3.00")},
		}},
	}
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Create(context.Background(), CreatePlatformRateRequest{Name: "AIRBNB", Rate: dec("5.00")})
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreatePlatformRateOutOfRange(t *testing.T) {
	store := &mockCommissionStore{mapRateStore: mapRateStore{rates: map[string]PlatformRate{}}}
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, rate := range []string{"-1.00", "100.01"} {
		_, err := svc.Create(context.Background(), CreatePlatformRateRequest{Name: "X", Rate: dec(rate)})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("rate %s: expected invalid input error, got %v", rate, err)
		}
	}
}

func TestUpdatePlatformRateDeactivate(t *testing.T) {
	var saved PlatformRate
	store := &mockCommissionStore{
		getFn: func(ctx context.Context, id int64) (PlatformRate, error) {
			return PlatformRate{ID: id, Name: "Vrbo", Rate: dec("8.00"), Active: true}, nil
		},
		updateFn: func(ctx context.Context, id int64, p PlatformRate) error {
			saved = p
			return nil
		},
	}
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	inactive := false
	updated, err := svc.Update(context.Background(), 2, UpdatePlatformRateRequest{Active: &inactive})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if saved.Active || updated.Active {
		t.Fatal("expected rate to be deactivated")
	}
	if !saved.Rate.Equal(dec("8.00")) {
		t.Fatalf("rate must be unchanged, got %s", saved.Rate)
	}
}
