package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/money"
	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	RateStore
	Get(ctx context.Context, id int64) (PlatformRate, error)
	List(ctx context.Context) ([]PlatformRate, error)
	Create(ctx context.Context, p PlatformRate) (PlatformRate, error)
	Update(ctx context.Context, id int64, p PlatformRate) error
	Delete(ctx context.Context, id int64) error
}

// Service manages the global platform commission table.
type Service struct {
	repo   Store
	logger *slog.Logger
}

// NewService constructs a commission service.
func NewService(repo Store, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create adds a platform rate. Names are unique case-insensitively and
// rates must lie in [0, 100].
func (s *Service) Create(ctx context.Context, req CreatePlatformRateRequest) (PlatformRate, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return PlatformRate{}, err
	}
	if err := validRate(req.Rate); err != nil {
		return PlatformRate{}, err
	}
	if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return PlatformRate{}, shared.Conflictf("platform %q already has a commission rate", req.Name)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return PlatformRate{}, fmt.Errorf("check platform name: %w", err)
	}

	created, err := s.repo.Create(ctx, PlatformRate{
		Name:        req.Name,
		Rate:        req.Rate,
		Active:      true,
		Description: req.Description,
	})
	if err != nil {
		return PlatformRate{}, fmt.Errorf("create platform rate: %w", err)
	}
	s.logger.Info("platform rate created",
		slog.String("platform", created.Name), slog.String("rate", created.Rate.String()))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (PlatformRate, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]PlatformRate, error) {
	return s.repo.List(ctx)
}

// Update changes rate, active flag or description. The name is immutable;
// rename by creating a new entry.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePlatformRateRequest) (PlatformRate, error) {
	rate, err := s.repo.Get(ctx, id)
	if err != nil {
		return PlatformRate{}, err
	}
	if req.Rate != nil {
		if err := validRate(*req.Rate); err != nil {
			return PlatformRate{}, err
		}
		rate.Rate = *req.Rate
	}
	if req.Active != nil {
		rate.Active = *req.Active
	}
	if req.Description != nil {
		rate.Description = req.Description
	}
	if err := s.repo.Update(ctx, id, rate); err != nil {
		return PlatformRate{}, fmt.Errorf("update platform rate: %w", err)
	}
	return rate, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(money.Hundred) {
		return shared.Invalidf("commission rate must be between 0 and 100")
	}
	return nil
}
