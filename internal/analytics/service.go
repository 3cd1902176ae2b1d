package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	Upsert(ctx context.Context, e TrafficEntry) (TrafficEntry, error)
	Get(ctx context.Context, id int64) (TrafficEntry, error)
	ListByProject(ctx context.Context, projectID int64) ([]TrafficEntry, error)
	ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]TrafficEntry, error)
	SumTotals(ctx context.Context, projectID int64, from, to time.Time) (TrafficTotals, error)
	SumUsersBySource(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error)
	SumSessionsByDevice(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error)
	MonthlySeries(ctx context.Context, projectID int64) ([]MonthlyTraffic, error)
	DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error)
}

// ProjectDirectory resolves the projects traffic is imported for.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (projects.Project, error)
}

// Service provides business logic for traffic imports and aggregates.
type Service struct {
	repo     Store
	projects ProjectDirectory
	logger   *slog.Logger
}

// NewService constructs an analytics service.
func NewService(repo Store, directory ProjectDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, projects: directory, logger: logger}
}

// Upsert stores one traffic entry, replacing the figures of an existing
// entry with the same (project, date, device, source) key.
func (s *Service) Upsert(ctx context.Context, req UpsertEntryRequest) (TrafficEntry, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return TrafficEntry{}, err
	}
	if _, err := s.projects.Get(ctx, req.ProjectID); err != nil {
		return TrafficEntry{}, err
	}
	return s.repo.Upsert(ctx, TrafficEntry{
		ProjectID:     req.ProjectID,
		ReportDate:    req.ReportDate,
		Users:         req.Users,
		Sessions:      req.Sessions,
		Pageviews:     req.Pageviews,
		BounceRate:    req.BounceRate,
		DeviceType:    req.DeviceType,
		TrafficSource: req.TrafficSource,
		Conversions:   req.Conversions,
	})
}

// BatchImport upserts a list of entries, reusing the per-key upsert so a
// re-imported export lands on the same rows.
func (s *Service) BatchImport(ctx context.Context, req BatchImportRequest) (int, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return 0, err
	}
	for i, e := range req.Entries {
		if _, err := s.Upsert(ctx, e); err != nil {
			return i, fmt.Errorf("import entry %d: %w", i, err)
		}
	}
	s.logger.Info("traffic batch imported", slog.Int("entries", len(req.Entries)))
	return len(req.Entries), nil
}

func (s *Service) Get(ctx context.Context, id int64) (TrafficEntry, error) {
	return s.repo.Get(ctx, id)
}

// ListByProject returns a project's entries, newest report date first. An
// unknown project is rejected rather than returning an empty list.
func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]TrafficEntry, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]TrafficEntry, error) {
	if to.Before(from) {
		return nil, shared.Invalidf("range end before range start")
	}
	return s.repo.ListByDateRange(ctx, projectID, from, to)
}

func (s *Service) Totals(ctx context.Context, projectID int64, from, to time.Time) (TrafficTotals, error) {
	if to.Before(from) {
		return TrafficTotals{}, shared.Invalidf("range end before range start")
	}
	return s.repo.SumTotals(ctx, projectID, from, to)
}

func (s *Service) UsersBySource(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error) {
	if to.Before(from) {
		return nil, shared.Invalidf("range end before range start")
	}
	return s.repo.SumUsersBySource(ctx, projectID, from, to)
}

func (s *Service) SessionsByDevice(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error) {
	if to.Before(from) {
		return nil, shared.Invalidf("range end before range start")
	}
	return s.repo.SumSessionsByDevice(ctx, projectID, from, to)
}

func (s *Service) Monthly(ctx context.Context, projectID int64) ([]MonthlyTraffic, error) {
	return s.repo.MonthlySeries(ctx, projectID)
}

func (s *Service) DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error) {
	return s.repo.DeleteByDate(ctx, projectID, date)
}
