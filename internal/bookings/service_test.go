package bookings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/platform/db"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

type mockStore struct {
	getFn          func(ctx context.Context, id int64) (Booking, error)
	hasOverlapFn   func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error)
	insertFn       func(ctx context.Context, b Booking) (Booking, error)
	saveFn         func(ctx context.Context, b Booking) error
	updateStatusFn func(ctx context.Context, id int64, status BookingStatus) error
}

func (m *mockStore) Get(ctx context.Context, id int64) (Booking, error) { return m.getFn(ctx, id) }

func (m *mockStore) ListByProject(ctx context.Context, projectID int64) ([]Booking, error) {
	return nil, nil
}

func (m *mockStore) ListByStatus(ctx context.Context, projectID int64, status BookingStatus) ([]Booking, error) {
	return nil, nil
}

func (m *mockStore) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]Booking, error) {
	return nil, nil
}

func (m *mockStore) ListByYear(ctx context.Context, projectID int64, year int) ([]Booking, error) {
	return nil, nil
}

func (m *mockStore) ListByPlatform(ctx context.Context, projectID int64, platform string) ([]Booking, error) {
	return nil, nil
}

func (m *mockStore) HasOverlap(ctx context.Context, q db.Querier, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
	return m.hasOverlapFn(ctx, projectID, checkin, checkout, excludeID)
}

func (m *mockStore) Insert(ctx context.Context, q db.Querier, b Booking) (Booking, error) {
	return m.insertFn(ctx, b)
}

func (m *mockStore) Save(ctx context.Context, q db.Querier, b Booking) error {
	return m.saveFn(ctx, b)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id int64, status BookingStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockStore) Delete(ctx context.Context, id int64) error { return nil }

type mockDirectory struct {
	getFn func(ctx context.Context, id int64) (projects.Project, error)
}

func (m *mockDirectory) Get(ctx context.Context, id int64) (projects.Project, error) {
	return m.getFn(ctx, id)
}

type fixedRate struct {
	rate     decimal.Decimal
	resolved []string
}

func (f *fixedRate) Resolve(ctx context.Context, platform string) (decimal.Decimal, error) {
	f.resolved = append(f.resolved, platform)
	return f.rate, nil
}

func newTestService(store *mockStore, directory *mockDirectory, rates *fixedRate) *Service {
	return &Service{
		repo:     store,
		projects: directory,
		rates:    rates,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		withTx: func(ctx context.Context, fn func(db.Querier) error) error {
			return fn(nil)
		},
	}
}

func activeDirectory() *mockDirectory {
	return &mockDirectory{
		getFn: func(ctx context.Context, id int64) (projects.Project, error) {
			return projects.Project{ID: id, Type: projects.TypeVacationRental}, nil
		},
	}
}

func TestCreateBookingDerivesFinancials(t *testing.T) {
	var inserted Booking
	store := &mockStore{
		hasOverlapFn: func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
			if excludeID != 0 {
				t.Fatalf("create must not exclude any booking, got %d", excludeID)
			}
			return false, nil
		},
		insertFn: func(ctx context.Context, b Booking) (Booking, error) {
			inserted = b
			b.ID = 42
			return b, nil
		},
	}
	svc := newTestService(store, activeDirectory(), &fixedRate{rate: dec("15.00")})

	platform := "Airbnb"
	created, err := svc.Create(context.Background(), CreateBookingRequest{
		ProjectID:    1,
		GuestName:    "Ana",
		Platform:     &platform,
		CheckinDate:  date(2024, 6, 1),
		CheckoutDate: date(2024, 6, 4),
		TotalPrice:   dec("300.00"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected id 42, got %d", created.ID)
	}
	if created.Status != StatusPending {
		t.Fatalf("new bookings must start PENDING, got %s", created.Status)
	}
	if inserted.Nights != 3 ||
		!inserted.PricePerNight.Equal(dec("100.00")) ||
		!inserted.CommissionAmount.Equal(dec("45.00")) ||
		!inserted.NetRevenue.Equal(dec("255.00")) {
		t.Fatalf("derived figures wrong: %+v", inserted)
	}
}

func TestCreateBookingOverlapConflict(t *testing.T) {
	store := &mockStore{
		hasOverlapFn: func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
			return true, nil
		},
		insertFn: func(ctx context.Context, b Booking) (Booking, error) {
			t.Fatal("insert must not run when the stay overlaps")
			return Booking{}, nil
		},
	}
	svc := newTestService(store, activeDirectory(), &fixedRate{rate: dec("15.00")})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		ProjectID:    1,
		GuestName:    "Ana",
		CheckinDate:  date(2024, 6, 1),
		CheckoutDate: date(2024, 6, 4),
		TotalPrice:   dec("300.00"),
	})
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateBookingUnknownProject(t *testing.T) {
	directory := &mockDirectory{
		getFn: func(ctx context.Context, id int64) (projects.Project, error) {
			return projects.Project{}, shared.NotFoundf("project %d", id)
		},
	}
	svc := newTestService(&mockStore{}, directory, &fixedRate{rate: dec("15.00")})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		ProjectID:    99,
		GuestName:    "Ana",
		CheckinDate:  date(2024, 6, 1),
		CheckoutDate: date(2024, 6, 4),
		TotalPrice:   dec("300.00"),
	})
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func existingBooking() Booking {
	platform := "Airbnb"
	return Booking{
		ID:               7,
		ProjectID:        1,
		GuestName:        "Ana",
		Platform:         &platform,
		CheckinDate:      date(2024, 6, 1),
		CheckoutDate:     date(2024, 6, 4),
		Status:           StatusConfirmed,
		TotalPrice:       dec("300.00"),
		Nights:           3,
		PricePerNight:    dec("100.00"),
		CommissionRate:   dec("15.00"),
		CommissionAmount: dec("45.00"),
		NetRevenue:       dec("255.00"),
	}
}

func TestUpdateBookingDateChangeKeepsRate(t *testing.T) {
	overlapChecked := false
	var saved Booking
	store := &mockStore{
		getFn: func(ctx context.Context, id int64) (Booking, error) { return existingBooking(), nil },
		hasOverlapFn: func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
			overlapChecked = true
			if excludeID != 7 {
				t.Fatalf("overlap check must exclude the booking itself, got %d", excludeID)
			}
			return false, nil
		},
		saveFn: func(ctx context.Context, b Booking) error {
			saved = b
			return nil
		},
	}
	rates := &fixedRate{rate: dec("20.00")}
	svc := newTestService(store, activeDirectory(), rates)

	newCheckout := date(2024, 6, 6)
	updated, err := svc.Update(context.Background(), 7, UpdateBookingRequest{CheckoutDate: &newCheckout})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !overlapChecked {
		t.Fatal("date change must trigger the overlap check")
	}
	if len(rates.resolved) != 0 {
		t.Fatal("date-only change must not re-resolve the commission rate")
	}
	if saved.Nights != 5 {
		t.Fatalf("expected 5 nights after checkout move, got %d", saved.Nights)
	}
	if !updated.PricePerNight.Equal(dec("60.00")) {
		t.Fatalf("expected price per night 60.00, got %s", updated.PricePerNight)
	}
	if !updated.CommissionAmount.Equal(dec("45.00")) {
		t.Fatalf("commission must stay at the stored rate, got %s", updated.CommissionAmount)
	}
}

func TestUpdateBookingPriceChangeReResolvesRate(t *testing.T) {
	var saved Booking
	store := &mockStore{
		getFn: func(ctx context.Context, id int64) (Booking, error) { return existingBooking(), nil },
		hasOverlapFn: func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
			t.Fatal("price-only change must not trigger the overlap check")
			return false, nil
		},
		saveFn: func(ctx context.Context, b Booking) error {
			saved = b
			return nil
		},
	}
	rates := &fixedRate{rate: dec("20.00")}
	svc := newTestService(store, activeDirectory(), rates)

	newPrice := dec("600.00")
	_, err := svc.Update(context.Background(), 7, UpdateBookingRequest{TotalPrice: &newPrice})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(rates.resolved) != 1 {
		t.Fatalf("price change must re-resolve the rate once, got %d calls", len(rates.resolved))
	}
	if !saved.CommissionRate.Equal(dec("20.00")) {
		t.Fatalf("expected re-resolved rate 20.00, got %s", saved.CommissionRate)
	}
	if !saved.CommissionAmount.Equal(dec("120.00")) {
		t.Fatalf("expected commission 120.00, got %s", saved.CommissionAmount)
	}
	if !saved.NetRevenue.Equal(dec("480.00")) {
		t.Fatalf("expected net revenue 480.00, got %s", saved.NetRevenue)
	}
}

func TestUpdateBookingOverlapConflict(t *testing.T) {
	store := &mockStore{
		getFn: func(ctx context.Context, id int64) (Booking, error) { return existingBooking(), nil },
		hasOverlapFn: func(ctx context.Context, projectID int64, checkin, checkout time.Time, excludeID int64) (bool, error) {
			return true, nil
		},
		saveFn: func(ctx context.Context, b Booking) error {
			t.Fatal("save must not run when the stay overlaps")
			return nil
		},
	}
	svc := newTestService(store, activeDirectory(), &fixedRate{rate: dec("15.00")})

	newCheckin := date(2024, 6, 2)
	_, err := svc.Update(context.Background(), 7, UpdateBookingRequest{CheckinDate: &newCheckin})
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    BookingStatus
		call    func(svc *Service) error
		wantErr bool
	}{
		{"confirm pending", StatusPending, func(svc *Service) error {
			_, err := svc.Confirm(context.Background(), 7)
			return err
		}, false},
		{"confirm confirmed", StatusConfirmed, func(svc *Service) error {
			_, err := svc.Confirm(context.Background(), 7)
			return err
		}, true},
		{"complete confirmed", StatusConfirmed, func(svc *Service) error {
			_, err := svc.Complete(context.Background(), 7)
			return err
		}, false},
		{"complete pending", StatusPending, func(svc *Service) error {
			_, err := svc.Complete(context.Background(), 7)
			return err
		}, true},
		{"cancel completed", StatusCompleted, func(svc *Service) error {
			_, err := svc.Cancel(context.Background(), 7)
			return err
		}, true},
		{"cancel confirmed", StatusConfirmed, func(svc *Service) error {
			_, err := svc.Cancel(context.Background(), 7)
			return err
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{
				getFn: func(ctx context.Context, id int64) (Booking, error) {
					b := existingBooking()
					b.Status = tc.from
					return b, nil
				},
				updateStatusFn: func(ctx context.Context, id int64, status BookingStatus) error {
					return nil
				},
			}
			svc := newTestService(store, activeDirectory(), &fixedRate{rate: dec("15.00")})
			err := tc.call(svc)
			if tc.wantErr && !errors.Is(err, shared.ErrConflict) {
				t.Fatalf("expected conflict error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
