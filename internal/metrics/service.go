package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// MetricStore is the persistence surface for metric snapshots.
type MetricStore interface {
	Upsert(ctx context.Context, m CalculatedMetric) (CalculatedMetric, error)
	Get(ctx context.Context, id int64) (CalculatedMetric, error)
	ListByProject(ctx context.Context, projectID int64) ([]CalculatedMetric, error)
	ListByType(ctx context.Context, projectID int64, typ MetricType) ([]CalculatedMetric, error)
	ListByPeriod(ctx context.Context, projectID int64, period PeriodType) ([]CalculatedMetric, error)
	ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]CalculatedMetric, error)
	LatestOfType(ctx context.Context, projectID int64, typ MetricType) (CalculatedMetric, error)
	DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error)
}

// ProjectDirectory resolves projects for type-aware summaries.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (projects.Project, error)
}

// Service wraps the calculator with caching, deduplication and snapshot
// persistence.
type Service struct {
	calc     *Calculator
	repo     MetricStore
	projects ProjectDirectory
	cache    *Cache
	group    singleflight.Group
	logger   *slog.Logger
}

// NewService constructs a metrics service. cache may be nil.
func NewService(calc *Calculator, repo MetricStore, directory ProjectDirectory, cache *Cache, logger *slog.Logger) *Service {
	return &Service{calc: calc, repo: repo, projects: directory, cache: cache, logger: logger}
}

// Calculator exposes the underlying calculator for direct KPI queries.
func (s *Service) Calculator() *Calculator {
	return s.calc
}

// Invalidate bumps the cache version. Booking and ledger writes call this
// so stale KPI reads age out immediately.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Summary assembles the KPI dashboard for a project over a range. Results
// are cached under a versioned key and concurrent identical computations
// are collapsed into one.
func (s *Service) Summary(ctx context.Context, projectID int64, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		return Summary{}, shared.Invalidf("range end before range start")
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}

	key, err := s.cache.BuildKey(ctx, keySummary(projectID, from, to))
	if err != nil {
		return Summary{}, fmt.Errorf("build cache key: %w", err)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var summary Summary
		err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
			return s.computeSummary(ctx, project, from, to)
		})
		return summary, err
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func (s *Service) computeSummary(ctx context.Context, project projects.Project, from, to time.Time) (Summary, error) {
	summary := Summary{ProjectID: project.ID, From: from, To: to}

	var err error
	if summary.TotalRevenue, err = s.calc.TotalRevenue(ctx, project.ID, from, to); err != nil {
		return Summary{}, err
	}
	if summary.TotalCosts, err = s.calc.TotalCosts(ctx, project.ID, from, to); err != nil {
		return Summary{}, err
	}
	summary.Profit = summary.TotalRevenue.Sub(summary.TotalCosts)
	if summary.ROI, err = s.calc.ROI(ctx, project.ID, from, to); err != nil {
		return Summary{}, err
	}

	switch project.Type {
	case projects.TypeVacationRental:
		rental, err := s.rentalSummary(ctx, project.ID, from, to)
		if err != nil {
			return Summary{}, err
		}
		summary.Rental = rental
	case projects.TypeSaaS:
		saas, err := s.saasSummary(ctx, project.ID)
		if err != nil {
			return Summary{}, err
		}
		summary.SaaS = saas
	}
	return summary, nil
}

// rentalSummary computes the rental section. Occupancy and RevPAR are
// calendar-year figures, pinned to the year the range starts in; a range
// crossing a year boundary still reports the starting year, which the
// Year field makes explicit to callers.
func (s *Service) rentalSummary(ctx context.Context, projectID int64, from, to time.Time) (*RentalSummary, error) {
	year := from.Year()
	rental := &RentalSummary{Year: year}

	var err error
	if rental.ADR, err = s.calc.ADR(ctx, projectID, from, to); err != nil {
		return nil, err
	}
	if rental.OccupancyRate, err = s.calc.OccupancyRate(ctx, projectID, year); err != nil {
		return nil, err
	}
	if rental.RevPAR, err = s.calc.RevPAR(ctx, projectID, year); err != nil {
		return nil, err
	}
	if rental.TotalCommissions, err = s.calc.TotalCommissions(ctx, projectID, from, to); err != nil {
		return nil, err
	}
	if rental.NetRevenue, err = s.calc.NetBookingRevenue(ctx, projectID, from, to); err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *Service) saasSummary(ctx context.Context, projectID int64) (*SaaSSummary, error) {
	saas := &SaaSSummary{}

	var err error
	if saas.MRR, err = s.calc.MRR(ctx, projectID); err != nil {
		return nil, err
	}
	if saas.ARR, err = s.calc.ARR(ctx, projectID); err != nil {
		return nil, err
	}
	if saas.ARPU, err = s.calc.ARPU(ctx, projectID); err != nil {
		return nil, err
	}
	if saas.ActiveSubscriptions, err = s.calc.subscriptions.CountActiveSubscriptions(ctx, projectID); err != nil {
		return nil, err
	}
	return saas, nil
}

// Upsert stores a metric snapshot, overwriting the previous value of the
// same (project, date, type, period) key.
func (s *Service) Upsert(ctx context.Context, req UpsertMetricRequest) (CalculatedMetric, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return CalculatedMetric{}, err
	}
	if _, err := s.projects.Get(ctx, req.ProjectID); err != nil {
		return CalculatedMetric{}, err
	}
	return s.repo.Upsert(ctx, CalculatedMetric{
		ProjectID:  req.ProjectID,
		MetricType: req.MetricType,
		MetricDate: req.MetricDate,
		PeriodType: req.PeriodType,
		Value:      req.Value,
	})
}

// BatchImport upserts a list of snapshots, reusing the per-key upsert so
// replays are idempotent.
func (s *Service) BatchImport(ctx context.Context, req BatchImportRequest) (int, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return 0, err
	}
	for i, m := range req.Metrics {
		if _, err := s.Upsert(ctx, m); err != nil {
			return i, fmt.Errorf("import metric %d: %w", i, err)
		}
	}
	return len(req.Metrics), nil
}

func (s *Service) Get(ctx context.Context, id int64) (CalculatedMetric, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]CalculatedMetric, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) ListByType(ctx context.Context, projectID int64, typ MetricType) ([]CalculatedMetric, error) {
	return s.repo.ListByType(ctx, projectID, typ)
}

func (s *Service) ListByPeriod(ctx context.Context, projectID int64, period PeriodType) ([]CalculatedMetric, error) {
	return s.repo.ListByPeriod(ctx, projectID, period)
}

func (s *Service) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]CalculatedMetric, error) {
	if to.Before(from) {
		return nil, shared.Invalidf("range end before range start")
	}
	return s.repo.ListByDateRange(ctx, projectID, from, to)
}

func (s *Service) LatestOfType(ctx context.Context, projectID int64, typ MetricType) (CalculatedMetric, error) {
	return s.repo.LatestOfType(ctx, projectID, typ)
}

func (s *Service) DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error) {
	return s.repo.DeleteByDate(ctx, projectID, date)
}

// SnapshotMonth computes and upserts the monthly KPI snapshots for one
// project: ROI and PROFIT for every type, plus the rental or SaaS metrics
// the project type calls for. Snapshots are dated at the month start.
func (s *Service) SnapshotMonth(ctx context.Context, project projects.Project, monthStart time.Time) (int, error) {
	from := time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	values := map[MetricType]func() (decimal.Decimal, error){
		MetricROI:    func() (decimal.Decimal, error) { return s.calc.ROI(ctx, project.ID, from, to) },
		MetricProfit: func() (decimal.Decimal, error) { return s.calc.Profit(ctx, project.ID, from, to) },
	}
	switch project.Type {
	case projects.TypeVacationRental:
		values[MetricADR] = func() (decimal.Decimal, error) { return s.calc.ADR(ctx, project.ID, from, to) }
		values[MetricOccupancyRate] = func() (decimal.Decimal, error) { return s.calc.OccupancyRate(ctx, project.ID, from.Year()) }
		values[MetricRevPAR] = func() (decimal.Decimal, error) { return s.calc.RevPAR(ctx, project.ID, from.Year()) }
	case projects.TypeSaaS:
		values[MetricMRR] = func() (decimal.Decimal, error) { return s.calc.MRR(ctx, project.ID) }
		values[MetricARR] = func() (decimal.Decimal, error) { return s.calc.ARR(ctx, project.ID) }
	}

	count := 0
	for typ, compute := range values {
		value, err := compute()
		if err != nil {
			return count, fmt.Errorf("compute %s: %w", typ, err)
		}
		if _, err := s.repo.Upsert(ctx, CalculatedMetric{
			ProjectID:  project.ID,
			MetricType: typ,
			MetricDate: from,
			PeriodType: PeriodMonthly,
			Value:      value,
		}); err != nil {
			return count, fmt.Errorf("upsert %s: %w", typ, err)
		}
		count++
	}
	s.logger.Info("monthly KPI snapshot stored",
		slog.Int64("project_id", project.ID),
		slog.String("month", from.Format("2006-01")),
		slog.Int("metrics", count))
	return count, nil
}
