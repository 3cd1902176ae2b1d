package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/projectledger/projectledger/internal/metrics"
	"github.com/projectledger/projectledger/internal/projects"
)

type stubProjectStore struct {
	projects.Store
	active []projects.Project
}

func (s *stubProjectStore) Get(ctx context.Context, id int64) (projects.Project, error) {
	for _, p := range s.active {
		if p.ID == id {
			return p, nil
		}
	}
	return projects.Project{}, context.Canceled
}

func (s *stubProjectStore) ListByStatus(ctx context.Context, status projects.ProjectStatus) ([]projects.Project, error) {
	return s.active, nil
}

type zeroLedger struct{}

func (zeroLedger) SumOneTimeCosts(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) SumActiveMonthlyRecurring(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) SumRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) SumGrossRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) SumCommissions(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) SumNights(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	return 0, nil
}

func (zeroLedger) SumNightsByYear(ctx context.Context, projectID int64, year int) (int64, error) {
	return 0, nil
}

func (zeroLedger) SumActiveMRR(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (zeroLedger) CountActiveSubscriptions(ctx context.Context, projectID int64) (int64, error) {
	return 0, nil
}

type recordingMetricStore struct {
	metrics.MetricStore
	upserts []metrics.CalculatedMetric
}

func (m *recordingMetricStore) Upsert(ctx context.Context, metric metrics.CalculatedMetric) (metrics.CalculatedMetric, error) {
	m.upserts = append(m.upserts, metric)
	metric.ID = int64(len(m.upserts))
	return metric, nil
}

func newSnapshotJob(t *testing.T, active []projects.Project) (*MetricsSnapshotJob, *recordingMetricStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	projectsSvc := projects.NewService(&stubProjectStore{active: active}, logger)

	store := &recordingMetricStore{}
	ledger := zeroLedger{}
	metricsSvc := metrics.NewService(
		metrics.NewCalculator(ledger, ledger, ledger, ledger),
		store,
		projectsSvc,
		metrics.NewCache(nil, 0),
		logger,
	)

	job := NewMetricsSnapshotJob(metricsSvc, projectsSvc, logger)
	job.clock = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return job, store
}

func TestSnapshotJobCoversActiveProjects(t *testing.T) {
	job, store := newSnapshotJob(t, []projects.Project{
		{ID: 1, Type: projects.TypeFreelance, Status: projects.StatusActive},
		{ID: 2, Type: projects.TypeSaaS, Status: projects.StatusActive},
	})

	task, err := NewMetricsSnapshotTask(MetricsSnapshotPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// FREELANCE stores ROI and profit; SAAS adds MRR and ARR.
	require.Len(t, store.upserts, 6)
	for _, m := range store.upserts {
		require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), m.MetricDate)
	}
}

func TestSnapshotJobSingleProject(t *testing.T) {
	job, store := newSnapshotJob(t, []projects.Project{
		{ID: 7, Type: projects.TypeFreelance, Status: projects.StatusActive},
	})

	task, err := NewMetricsSnapshotTask(MetricsSnapshotPayload{ProjectID: 7, Month: "2024-03"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, store.upserts, 2)
	for _, m := range store.upserts {
		require.EqualValues(t, 7, m.ProjectID)
		require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.MetricDate)
	}
}

func TestSnapshotJobRejectsBadPayload(t *testing.T) {
	job, _ := newSnapshotJob(t, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskMetricsSnapshot, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewMetricsSnapshotTask(MetricsSnapshotPayload{Month: "June 2024"})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}
