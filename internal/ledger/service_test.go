package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// stubStore embeds the Store interface so each test only overrides the
// methods it expects to be called.
type stubStore struct {
	Store
	createRecurringFn    func(ctx context.Context, c RecurringCost) (RecurringCost, error)
	createSubscriptionFn func(ctx context.Context, s Subscription) (Subscription, error)
	createOneTimeFn      func(ctx context.Context, c OneTimeCost) (OneTimeCost, error)
	getSubscriptionFn    func(ctx context.Context, id int64) (Subscription, error)
	updateSubscriptionFn func(ctx context.Context, id int64, s Subscription) error
}

func (s *stubStore) CreateRecurringCost(ctx context.Context, c RecurringCost) (RecurringCost, error) {
	return s.createRecurringFn(ctx, c)
}

func (s *stubStore) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	return s.createSubscriptionFn(ctx, sub)
}

func (s *stubStore) CreateOneTimeCost(ctx context.Context, c OneTimeCost) (OneTimeCost, error) {
	return s.createOneTimeFn(ctx, c)
}

func (s *stubStore) GetSubscription(ctx context.Context, id int64) (Subscription, error) {
	return s.getSubscriptionFn(ctx, id)
}

func (s *stubStore) UpdateSubscription(ctx context.Context, id int64, sub Subscription) error {
	return s.updateSubscriptionFn(ctx, id, sub)
}

type stubDirectory struct {
	err error
}

func (d *stubDirectory) Get(ctx context.Context, id int64) (projects.Project, error) {
	if d.err != nil {
		return projects.Project{}, d.err
	}
	return projects.Project{ID: id}, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newLedgerService(store *stubStore, directory *stubDirectory) *Service {
	return NewService(store, directory, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateOneTimeCostDefaultsPaymentStatus(t *testing.T) {
	var created OneTimeCost
	store := &stubStore{
		createOneTimeFn: func(ctx context.Context, c OneTimeCost) (OneTimeCost, error) {
			created = c
			c.ID = 1
			return c, nil
		},
	}
	svc := newLedgerService(store, &stubDirectory{})

	_, err := svc.CreateOneTimeCost(context.Background(), CreateOneTimeCostRequest{
		ProjectID: 1,
		Name:      "Domain renewal",
		Amount:    dec("24.90"),
		CostDate:  date(2024, 3, 10),
		Category:  CategoryInfrastructure,
	})
	if err != nil {
		t.Fatalf("CreateOneTimeCost returned error: %v", err)
	}
	if created.PaymentStatus != PaymentPending {
		t.Fatalf("expected default payment status PENDING, got %s", created.PaymentStatus)
	}
}

func TestCreateOneTimeCostRejectsNonPositiveAmount(t *testing.T) {
	svc := newLedgerService(&stubStore{}, &stubDirectory{})

	_, err := svc.CreateOneTimeCost(context.Background(), CreateOneTimeCostRequest{
		ProjectID: 1,
		Name:      "Domain renewal",
		Amount:    dec("0"),
		CostDate:  date(2024, 3, 10),
		Category:  CategoryInfrastructure,
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCreateOneTimeCostUnknownProject(t *testing.T) {
	directory := &stubDirectory{err: shared.NotFoundf("project 9")}
	svc := newLedgerService(&stubStore{}, directory)

	_, err := svc.CreateOneTimeCost(context.Background(), CreateOneTimeCostRequest{
		ProjectID: 9,
		Name:      "Domain renewal",
		Amount:    dec("24.90"),
		CostDate:  date(2024, 3, 10),
		Category:  CategoryInfrastructure,
	})
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateRecurringCostEndBeforeStart(t *testing.T) {
	svc := newLedgerService(&stubStore{}, &stubDirectory{})

	end := date(2024, 1, 1)
	_, err := svc.CreateRecurringCost(context.Background(), CreateRecurringCostRequest{
		ProjectID: 1,
		Name:      "Hosting",
		Amount:    dec("12.00"),
		Frequency: FrequencyMonthly,
		Category:  CategoryInfrastructure,
		StartDate: date(2024, 6, 1),
		EndDate:   &end,
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCreateRecurringCostDefaultsActive(t *testing.T) {
	var created RecurringCost
	store := &stubStore{
		createRecurringFn: func(ctx context.Context, c RecurringCost) (RecurringCost, error) {
			created = c
			c.ID = 1
			return c, nil
		},
	}
	svc := newLedgerService(store, &stubDirectory{})

	_, err := svc.CreateRecurringCost(context.Background(), CreateRecurringCostRequest{
		ProjectID: 1,
		Name:      "Hosting",
		Amount:    dec("12.00"),
		Frequency: FrequencyMonthly,
		Category:  CategoryInfrastructure,
		StartDate: date(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateRecurringCost returned error: %v", err)
	}
	if !created.Active || !created.AutoRenew {
		t.Fatalf("expected active auto-renewing cost by default, got %+v", created)
	}
}

func TestCreateSubscriptionRejectsNonPositiveMRR(t *testing.T) {
	svc := newLedgerService(&stubStore{}, &stubDirectory{})

	_, err := svc.CreateSubscription(context.Background(), CreateSubscriptionRequest{
		ProjectID:    1,
		CustomerName: "ACME",
		PlanName:     "pro",
		MRR:          dec("-5"),
		StartDate:    date(2024, 1, 1),
		Status:       SubscriptionActive,
		BillingCycle: BillingMonthly,
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestUpdateSubscriptionValidatesMovedEndDate(t *testing.T) {
	store := &stubStore{
		getSubscriptionFn: func(ctx context.Context, id int64) (Subscription, error) {
			return Subscription{
				ID:           id,
				ProjectID:    1,
				CustomerName: "ACME",
				PlanName:     "pro",
				MRR:          dec("50.00"),
				StartDate:    date(2024, 6, 1),
				Status:       SubscriptionActive,
				BillingCycle: BillingMonthly,
			}, nil
		},
	}
	svc := newLedgerService(store, &stubDirectory{})

	badEnd := date(2024, 5, 1)
	_, err := svc.UpdateSubscription(context.Background(), 3, UpdateSubscriptionRequest{EndDate: &badEnd})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
