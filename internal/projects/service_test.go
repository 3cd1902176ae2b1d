package projects

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/projectledger/projectledger/internal/shared"
)

type mockStore struct {
	getFn          func(ctx context.Context, id int64) (Project, error)
	existsByCodeFn func(ctx context.Context, code string) (bool, error)
	existsByNameFn func(ctx context.Context, name string) (bool, error)
	createFn       func(ctx context.Context, p Project) (Project, error)
	updateFn       func(ctx context.Context, id int64, p Project) error
	updateStatusFn func(ctx context.Context, id int64, status ProjectStatus) error
}

func (m *mockStore) Get(ctx context.Context, id int64) (Project, error) {
	return m.getFn(ctx, id)
}

func (m *mockStore) GetByCode(ctx context.Context, code string) (Project, error) {
	return Project{}, nil
}

func (m *mockStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return m.existsByCodeFn(ctx, code)
}

func (m *mockStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	return m.existsByNameFn(ctx, name)
}

func (m *mockStore) List(ctx context.Context) ([]Project, error) { return nil, nil }

func (m *mockStore) ListByStatus(ctx context.Context, status ProjectStatus) ([]Project, error) {
	return nil, nil
}

func (m *mockStore) ListByType(ctx context.Context, typ ProjectType) ([]Project, error) {
	return nil, nil
}

func (m *mockStore) Create(ctx context.Context, p Project) (Project, error) {
	return m.createFn(ctx, p)
}

func (m *mockStore) Update(ctx context.Context, id int64, p Project) error {
	return m.updateFn(ctx, id, p)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id int64, status ProjectStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockStore) Delete(ctx context.Context, id int64) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateProject(t *testing.T) {
	store := &mockStore{
		existsByCodeFn: func(ctx context.Context, code string) (bool, error) { return false, nil },
		existsByNameFn: func(ctx context.Context, name string) (bool, error) { return false, nil },
		createFn: func(ctx context.Context, p Project) (Project, error) {
			p.ID = 7
			return p, nil
		},
	}
	svc := NewService(store, testLogger())

	created, err := svc.Create(context.Background(), CreateProjectRequest{
		Code:     "apt-lisbon",
		Name:     "Lisbon Apartment",
		Type:     TypeVacationRental,
		Currency: "eur",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected id 7, got %d", created.ID)
	}
	if created.Status != StatusActive {
		t.Fatalf("new projects must start ACTIVE, got %s", created.Status)
	}
	if created.Currency != "EUR" {
		t.Fatalf("currency must be canonicalised to EUR, got %s", created.Currency)
	}
}

func TestCreateProjectDuplicateCode(t *testing.T) {
	store := &mockStore{
		existsByCodeFn: func(ctx context.Context, code string) (bool, error) { return true, nil },
		existsByNameFn: func(ctx context.Context, name string) (bool, error) { return false, nil },
	}
	svc := NewService(store, testLogger())

	_, err := svc.Create(context.Background(), CreateProjectRequest{
		Code:     "apt-lisbon",
		Name:     "Lisbon Apartment",
		Type:     TypeVacationRental,
		Currency: "EUR",
	})
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateProjectInvalidCurrency(t *testing.T) {
	svc := NewService(&mockStore{}, testLogger())

	_, err := svc.Create(context.Background(), CreateProjectRequest{
		Code:     "apt-lisbon",
		Name:     "Lisbon Apartment",
		Type:     TypeVacationRental,
		Currency: "XXZ",
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCreateProjectRejectsUnknownType(t *testing.T) {
	svc := NewService(&mockStore{}, testLogger())

	_, err := svc.Create(context.Background(), CreateProjectRequest{
		Code:     "shop",
		Name:     "Corner Shop",
		Type:     ProjectType("RETAIL"),
		Currency: "EUR",
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestUpdateProjectKeepsCodeImmutable(t *testing.T) {
	existing := Project{ID: 3, Code: "saas-main", Name: "SaaS", Type: TypeSaaS, Status: StatusActive, Currency: "USD"}
	var updated Project
	store := &mockStore{
		getFn: func(ctx context.Context, id int64) (Project, error) { return existing, nil },
		existsByNameFn: func(ctx context.Context, name string) (bool, error) {
			return false, nil
		},
		updateFn: func(ctx context.Context, id int64, p Project) error {
			updated = p
			return nil
		},
	}
	svc := NewService(store, testLogger())

	newName := "SaaS Platform"
	if _, err := svc.Update(context.Background(), 3, UpdateProjectRequest{Name: &newName}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Code != "saas-main" {
		t.Fatalf("code must not change on update, got %s", updated.Code)
	}
	if updated.Name != newName {
		t.Fatalf("expected name %q, got %q", newName, updated.Name)
	}
}

func TestChangeStatusUnknown(t *testing.T) {
	svc := NewService(&mockStore{}, testLogger())

	_, err := svc.ChangeStatus(context.Background(), 1, ProjectStatus("PAUSED"))
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
