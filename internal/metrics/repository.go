package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for metric snapshots.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const metricColumns = `id, project_id, metric_type, metric_date, period_type, value, created_at, updated_at`

func scanMetric(row pgx.Row) (CalculatedMetric, error) {
	var m CalculatedMetric
	err := row.Scan(&m.ID, &m.ProjectID, &m.MetricType, &m.MetricDate, &m.PeriodType, &m.Value,
		&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CalculatedMetric{}, shared.NotFoundf("metric")
	}
	return m, err
}

// Upsert inserts or overwrites the snapshot for the metric's unique key
// (project, metric date, metric type, period type). The write is atomic:
// concurrent upserts of the same key cannot produce duplicates, the last
// value wins.
func (r *Repository) Upsert(ctx context.Context, m CalculatedMetric) (CalculatedMetric, error) {
	query := `INSERT INTO calculated_metrics (project_id, metric_type, metric_date, period_type, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (project_id, metric_date, metric_type, period_type)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING ` + metricColumns
	now := time.Now()
	return scanMetric(r.pool.QueryRow(ctx, query, m.ProjectID, m.MetricType, m.MetricDate,
		m.PeriodType, m.Value, now))
}

func (r *Repository) Get(ctx context.Context, id int64) (CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics WHERE id = $1`
	return scanMetric(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics
		WHERE project_id = $1 ORDER BY metric_date DESC, metric_type`
	return r.queryMetrics(ctx, query, projectID)
}

func (r *Repository) ListByType(ctx context.Context, projectID int64, typ MetricType) ([]CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics
		WHERE project_id = $1 AND metric_type = $2 ORDER BY metric_date DESC`
	return r.queryMetrics(ctx, query, projectID, typ)
}

func (r *Repository) ListByPeriod(ctx context.Context, projectID int64, period PeriodType) ([]CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics
		WHERE project_id = $1 AND period_type = $2 ORDER BY metric_date DESC, metric_type`
	return r.queryMetrics(ctx, query, projectID, period)
}

func (r *Repository) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics
		WHERE project_id = $1 AND metric_date >= $2 AND metric_date <= $3
		ORDER BY metric_date, metric_type`
	return r.queryMetrics(ctx, query, projectID, from, to)
}

// LatestOfType returns the most recent snapshot of a metric type.
func (r *Repository) LatestOfType(ctx context.Context, projectID int64, typ MetricType) (CalculatedMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM calculated_metrics
		WHERE project_id = $1 AND metric_type = $2 ORDER BY metric_date DESC LIMIT 1`
	return scanMetric(r.pool.QueryRow(ctx, query, projectID, typ))
}

// DeleteByDate removes every snapshot dated on the given day, returning
// the number removed.
func (r *Repository) DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM calculated_metrics WHERE project_id = $1 AND metric_date = $2`,
		projectID, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) queryMetrics(ctx context.Context, query string, args ...any) ([]CalculatedMetric, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CalculatedMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
