package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/platform/db"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (Booking, error)
	ListByProject(ctx context.Context, projectID int64) ([]Booking, error)
	ListByStatus(ctx context.Context, projectID int64, status BookingStatus) ([]Booking, error)
	ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]Booking, error)
	ListByYear(ctx context.Context, projectID int64, year int) ([]Booking, error)
	ListByPlatform(ctx context.Context, projectID int64, platform string) ([]Booking, error)
	HasOverlap(ctx context.Context, q db.Querier, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error)
	Insert(ctx context.Context, q db.Querier, b Booking) (Booking, error)
	Save(ctx context.Context, q db.Querier, b Booking) error
	UpdateStatus(ctx context.Context, id int64, status BookingStatus) error
	Delete(ctx context.Context, id int64) error
}

// ProjectDirectory resolves the project a booking belongs to.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (projects.Project, error)
}

// RateResolver resolves the commission rate for a platform name.
type RateResolver interface {
	Resolve(ctx context.Context, platform string) (decimal.Decimal, error)
}

// Service manages bookings. Every write re-derives the financial columns
// and runs the overlap check and the write in a single transaction.
type Service struct {
	repo     Store
	projects ProjectDirectory
	rates    RateResolver
	logger   *slog.Logger
	withTx   func(ctx context.Context, fn func(db.Querier) error) error
}

// NewService constructs a booking service backed by pool for transactional
// writes.
func NewService(pool *pgxpool.Pool, repo Store, directory ProjectDirectory, rates RateResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: directory,
		rates:    rates,
		logger:   logger,
		withTx: func(ctx context.Context, fn func(db.Querier) error) error {
			return db.WithTx(ctx, pool, func(tx pgx.Tx) error { return fn(tx) })
		},
	}
}

// Create registers a booking. The project must exist, the stay must not
// overlap any PENDING or CONFIRMED booking of the same project, and all
// derived figures are computed server-side.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (Booking, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Booking{}, err
	}
	if _, err := s.projects.Get(ctx, req.ProjectID); err != nil {
		return Booking{}, err
	}

	rate, err := s.rates.Resolve(ctx, platformName(req.Platform))
	if err != nil {
		return Booking{}, fmt.Errorf("resolve commission rate: %w", err)
	}
	derived, err := Derive(req.CheckinDate, req.CheckoutDate, req.TotalPrice, rate)
	if err != nil {
		return Booking{}, err
	}

	booking := Booking{
		ProjectID:        req.ProjectID,
		GuestName:        req.GuestName,
		Platform:         req.Platform,
		CheckinDate:      req.CheckinDate,
		CheckoutDate:     req.CheckoutDate,
		Status:           StatusPending,
		TotalPrice:       req.TotalPrice,
		Nights:           derived.Nights,
		PricePerNight:    derived.PricePerNight,
		CommissionRate:   rate,
		CommissionAmount: derived.CommissionAmount,
		NetRevenue:       derived.NetRevenue,
		GuestCount:       req.GuestCount,
		Notes:            req.Notes,
	}

	err = s.withTx(ctx, func(q db.Querier) error {
		overlap, err := s.repo.HasOverlap(ctx, q, booking.ProjectID, booking.CheckinDate, booking.CheckoutDate, 0)
		if err != nil {
			return fmt.Errorf("check booking overlap: %w", err)
		}
		if overlap {
			return shared.Conflictf("booking dates overlap an existing booking")
		}
		booking, err = s.repo.Insert(ctx, q, booking)
		return err
	})
	if err != nil {
		return Booking{}, err
	}

	s.logger.Info("booking created",
		slog.Int64("id", booking.ID),
		slog.Int64("project_id", booking.ProjectID),
		slog.Int("nights", booking.Nights))
	return booking, nil
}

// Update applies a partial update. The overlap check runs only when the
// dates changed, and the commission rate is re-resolved only when the
// platform or the price changed; a pure date change keeps the stored rate.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBookingRequest) (Booking, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Booking{}, err
	}
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}

	if req.GuestName != nil {
		booking.GuestName = *req.GuestName
	}
	if req.GuestCount != nil {
		booking.GuestCount = req.GuestCount
	}
	if req.Notes != nil {
		booking.Notes = req.Notes
	}

	datesChanged := false
	if req.CheckinDate != nil && !req.CheckinDate.Equal(booking.CheckinDate) {
		booking.CheckinDate = *req.CheckinDate
		datesChanged = true
	}
	if req.CheckoutDate != nil && !req.CheckoutDate.Equal(booking.CheckoutDate) {
		booking.CheckoutDate = *req.CheckoutDate
		datesChanged = true
	}

	platformChanged := req.Platform != nil && platformName(req.Platform) != platformName(booking.Platform)
	if platformChanged {
		booking.Platform = req.Platform
	}
	priceChanged := req.TotalPrice != nil && !req.TotalPrice.Equal(booking.TotalPrice)
	if priceChanged {
		booking.TotalPrice = *req.TotalPrice
	}

	if platformChanged || priceChanged {
		rate, err := s.rates.Resolve(ctx, platformName(booking.Platform))
		if err != nil {
			return Booking{}, fmt.Errorf("resolve commission rate: %w", err)
		}
		booking.CommissionRate = rate
	}

	derived, err := Derive(booking.CheckinDate, booking.CheckoutDate, booking.TotalPrice, booking.CommissionRate)
	if err != nil {
		return Booking{}, err
	}
	booking.Nights = derived.Nights
	booking.PricePerNight = derived.PricePerNight
	booking.CommissionAmount = derived.CommissionAmount
	booking.NetRevenue = derived.NetRevenue

	err = s.withTx(ctx, func(q db.Querier) error {
		if datesChanged {
			overlap, err := s.repo.HasOverlap(ctx, q, booking.ProjectID, booking.CheckinDate, booking.CheckoutDate, booking.ID)
			if err != nil {
				return fmt.Errorf("check booking overlap: %w", err)
			}
			if overlap {
				return shared.Conflictf("booking dates overlap an existing booking")
			}
		}
		return s.repo.Save(ctx, q, booking)
	})
	if err != nil {
		return Booking{}, err
	}
	return booking, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]Booking, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) ListByStatus(ctx context.Context, projectID int64, status BookingStatus) ([]Booking, error) {
	return s.repo.ListByStatus(ctx, projectID, status)
}

func (s *Service) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]Booking, error) {
	if to.Before(from) {
		return nil, shared.Invalidf("range end before range start")
	}
	return s.repo.ListByDateRange(ctx, projectID, from, to)
}

func (s *Service) ListByYear(ctx context.Context, projectID int64, year int) ([]Booking, error) {
	return s.repo.ListByYear(ctx, projectID, year)
}

func (s *Service) ListByPlatform(ctx context.Context, projectID int64, platform string) ([]Booking, error) {
	return s.repo.ListByPlatform(ctx, projectID, platform)
}

// Confirm moves a PENDING booking to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, id int64) (Booking, error) {
	return s.transition(ctx, id, StatusConfirmed, StatusPending)
}

// Cancel cancels a booking that has not been completed yet.
func (s *Service) Cancel(ctx context.Context, id int64) (Booking, error) {
	return s.transition(ctx, id, StatusCancelled, StatusPending, StatusConfirmed)
}

// Complete closes out a CONFIRMED booking after checkout.
func (s *Service) Complete(ctx context.Context, id int64) (Booking, error) {
	return s.transition(ctx, id, StatusCompleted, StatusConfirmed)
}

func (s *Service) transition(ctx context.Context, id int64, to BookingStatus, from ...BookingStatus) (Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	allowed := false
	for _, f := range from {
		if booking.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return Booking{}, shared.Conflictf("cannot move booking from %s to %s", booking.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	booking.Status = to
	s.logger.Info("booking status changed", slog.Int64("id", id), slog.String("status", string(to)))
	return booking, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func platformName(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
