package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/currency"

	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (Project, error)
	GetByCode(ctx context.Context, code string) (Project, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Project, error)
	ListByStatus(ctx context.Context, status ProjectStatus) ([]Project, error)
	ListByType(ctx context.Context, typ ProjectType) ([]Project, error)
	Create(ctx context.Context, p Project) (Project, error)
	Update(ctx context.Context, id int64, p Project) error
	UpdateStatus(ctx context.Context, id int64, status ProjectStatus) error
	Delete(ctx context.Context, id int64) error
}

// Service provides business logic for project management.
type Service struct {
	repo   Store
	logger *slog.Logger
}

// NewService constructs a project service.
func NewService(repo Store, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers a new project, rejecting duplicate codes and names.
func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (Project, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Project{}, err
	}
	cur, err := validCurrency(req.Currency)
	if err != nil {
		return Project{}, err
	}

	if exists, err := s.repo.ExistsByCode(ctx, req.Code); err != nil {
		return Project{}, fmt.Errorf("check project code: %w", err)
	} else if exists {
		return Project{}, shared.Conflictf("project with code %q already exists", req.Code)
	}
	if exists, err := s.repo.ExistsByName(ctx, req.Name); err != nil {
		return Project{}, fmt.Errorf("check project name: %w", err)
	} else if exists {
		return Project{}, shared.Conflictf("project with name %q already exists", req.Name)
	}

	project := Project{
		Code:                 req.Code,
		Name:                 req.Name,
		Type:                 req.Type,
		Status:               StatusActive,
		Description:          req.Description,
		StartDate:            req.StartDate,
		Currency:             cur,
		TargetOccupancyRate:  req.TargetOccupancyRate,
		TargetMonthlyRevenue: req.TargetMonthlyRevenue,
		TargetROI:            req.TargetROI,
	}
	created, err := s.repo.Create(ctx, project)
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("project created", slog.Int64("id", created.ID), slog.String("code", created.Code))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Project, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status ProjectStatus) ([]Project, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) ListByType(ctx context.Context, typ ProjectType) ([]Project, error) {
	return s.repo.ListByType(ctx, typ)
}

// ListActive returns projects eligible for KPI snapshotting.
func (s *Service) ListActive(ctx context.Context) ([]Project, error) {
	return s.repo.ListByStatus(ctx, StatusActive)
}

// Update applies a partial update. The project code is immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest) (Project, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Project{}, err
	}
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}

	if req.Name != nil && *req.Name != project.Name {
		if exists, err := s.repo.ExistsByName(ctx, *req.Name); err != nil {
			return Project{}, fmt.Errorf("check project name: %w", err)
		} else if exists {
			return Project{}, shared.Conflictf("project with name %q already exists", *req.Name)
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.Currency != nil {
		cur, err := validCurrency(*req.Currency)
		if err != nil {
			return Project{}, err
		}
		project.Currency = cur
	}
	if req.TargetOccupancyRate != nil {
		project.TargetOccupancyRate = req.TargetOccupancyRate
	}
	if req.TargetMonthlyRevenue != nil {
		project.TargetMonthlyRevenue = req.TargetMonthlyRevenue
	}
	if req.TargetROI != nil {
		project.TargetROI = req.TargetROI
	}

	if err := s.repo.Update(ctx, id, project); err != nil {
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ChangeStatus moves a project to an explicit lifecycle state.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status ProjectStatus) (Project, error) {
	switch status {
	case StatusActive, StatusArchived, StatusSuspended:
	default:
		return Project{}, shared.Invalidf("unknown project status %q", status)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Project{}, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Project{}, fmt.Errorf("change project status: %w", err)
	}
	s.logger.Info("project status changed", slog.Int64("id", id), slog.String("status", string(status)))
	return s.repo.Get(ctx, id)
}

// Archive marks a project archived.
func (s *Service) Archive(ctx context.Context, id int64) (Project, error) {
	return s.ChangeStatus(ctx, id, StatusArchived)
}

// Suspend marks a project suspended.
func (s *Service) Suspend(ctx context.Context, id int64) (Project, error) {
	return s.ChangeStatus(ctx, id, StatusSuspended)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// validCurrency checks the code against the ISO 4217 registry and returns
// its canonical upper-case form.
func validCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return "", shared.Invalidf("unknown currency code %q", code)
	}
	return unit.String(), nil
}
