package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/projectledger/projectledger/internal/metrics"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// MetricsSnapshotJob computes and upserts monthly KPI snapshots for every
// active project, or a single project when the payload names one.
type MetricsSnapshotJob struct {
	Metrics  *metrics.Service
	Projects *projects.Service
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewMetricsSnapshotJob wires dependencies for the snapshot handler.
func NewMetricsSnapshotJob(metricsSvc *metrics.Service, projectsSvc *projects.Service, logger *slog.Logger) *MetricsSnapshotJob {
	return &MetricsSnapshotJob{
		Metrics:  metricsSvc,
		Projects: projectsSvc,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes metrics snapshot tasks. Snapshots are keyed upserts, so
// retries and overlapping runs are idempotent.
func (j *MetricsSnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Metrics == nil || j.Projects == nil {
		return errors.New("metrics snapshot: handler not configured")
	}
	var payload MetricsSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	month, err := j.resolveMonth(payload.Month)
	if err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("run_id", payload.RunID), slog.String("month", month.Format("2006-01")))
	logger.Info("starting metrics snapshot")

	targets, err := j.resolveTargets(ctx, payload.ProjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.Warn("snapshot target missing", slog.Int64("project_id", payload.ProjectID))
			return asynq.SkipRetry
		}
		logger.Error("load snapshot targets", slog.Any("error", err))
		return err
	}

	start := j.now()
	stored := 0
	for _, project := range targets {
		count, err := j.Metrics.SnapshotMonth(ctx, project, month)
		if err != nil {
			logger.Error("snapshot project", slog.Int64("project_id", project.ID), slog.Any("error", err))
			return err
		}
		stored += count
	}

	logger.Info("completed metrics snapshot",
		slog.Int("projects", len(targets)),
		slog.Int("metrics", stored),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *MetricsSnapshotJob) resolveMonth(raw string) (time.Time, error) {
	if raw == "" {
		now := j.now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01", raw)
}

func (j *MetricsSnapshotJob) resolveTargets(ctx context.Context, projectID int64) ([]projects.Project, error) {
	if projectID > 0 {
		project, err := j.Projects.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return []projects.Project{project}, nil
	}
	return j.Projects.ListActive(ctx)
}

func (j *MetricsSnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMetricsSnapshot))
	}
	return slog.Default().With(slog.String("job", TaskMetricsSnapshot))
}

func (j *MetricsSnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
