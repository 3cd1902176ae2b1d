package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for traffic entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, project_id, report_date, users, sessions, pageviews, bounce_rate, device_type, traffic_source, conversions, created_at`

func scanEntry(row pgx.Row) (TrafficEntry, error) {
	var e TrafficEntry
	err := row.Scan(&e.ID, &e.ProjectID, &e.ReportDate, &e.Users, &e.Sessions, &e.Pageviews,
		&e.BounceRate, &e.DeviceType, &e.TrafficSource, &e.Conversions, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TrafficEntry{}, shared.NotFoundf("traffic entry")
	}
	return e, err
}

// Upsert inserts an entry or, when one exists for the same
// (project, report date, device type, traffic source) key, replaces its
// measured figures in place.
func (r *Repository) Upsert(ctx context.Context, e TrafficEntry) (TrafficEntry, error) {
	query := `INSERT INTO analytics_entries
			(project_id, report_date, users, sessions, pageviews, bounce_rate, device_type, traffic_source, conversions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (project_id, report_date, device_type, traffic_source) DO UPDATE SET
			users = EXCLUDED.users,
			sessions = EXCLUDED.sessions,
			pageviews = EXCLUDED.pageviews,
			bounce_rate = EXCLUDED.bounce_rate,
			conversions = EXCLUDED.conversions
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		e.ProjectID, e.ReportDate, e.Users, e.Sessions, e.Pageviews,
		e.BounceRate, e.DeviceType, e.TrafficSource, e.Conversions, time.Now(),
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return TrafficEntry{}, err
	}
	return e, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (TrafficEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM analytics_entries WHERE id = $1`
	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]TrafficEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM analytics_entries WHERE project_id = $1 ORDER BY report_date DESC`
	return r.queryEntries(ctx, query, projectID)
}

func (r *Repository) ListByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]TrafficEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM analytics_entries
		WHERE project_id = $1 AND report_date BETWEEN $2 AND $3 ORDER BY report_date ASC`
	return r.queryEntries(ctx, query, projectID, from, to)
}

func (r *Repository) SumTotals(ctx context.Context, projectID int64, from, to time.Time) (TrafficTotals, error) {
	query := `SELECT COALESCE(SUM(users), 0), COALESCE(SUM(sessions), 0), COALESCE(SUM(pageviews), 0)
		FROM analytics_entries WHERE project_id = $1 AND report_date BETWEEN $2 AND $3`
	var t TrafficTotals
	err := r.pool.QueryRow(ctx, query, projectID, from, to).Scan(&t.Users, &t.Sessions, &t.Pageviews)
	return t, err
}

func (r *Repository) SumUsersBySource(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error) {
	query := `SELECT COALESCE(traffic_source, 'unknown'), SUM(users) FROM analytics_entries
		WHERE project_id = $1 AND report_date BETWEEN $2 AND $3
		GROUP BY COALESCE(traffic_source, 'unknown') ORDER BY SUM(users) DESC`
	return r.groupedTotals(ctx, query, projectID, from, to)
}

func (r *Repository) SumSessionsByDevice(ctx context.Context, projectID int64, from, to time.Time) ([]GroupedTotal, error) {
	query := `SELECT COALESCE(device_type, 'unknown'), SUM(sessions) FROM analytics_entries
		WHERE project_id = $1 AND report_date BETWEEN $2 AND $3
		GROUP BY COALESCE(device_type, 'unknown') ORDER BY SUM(sessions) DESC`
	return r.groupedTotals(ctx, query, projectID, from, to)
}

// MonthlySeries sums the volume figures per calendar month over a
// project's whole history, oldest month first.
func (r *Repository) MonthlySeries(ctx context.Context, projectID int64) ([]MonthlyTraffic, error) {
	query := `SELECT EXTRACT(YEAR FROM report_date)::int, EXTRACT(MONTH FROM report_date)::int,
			SUM(users), SUM(sessions), SUM(pageviews)
		FROM analytics_entries WHERE project_id = $1
		GROUP BY 1, 2 ORDER BY 1, 2`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []MonthlyTraffic
	for rows.Next() {
		var m MonthlyTraffic
		if err := rows.Scan(&m.Year, &m.Month, &m.Users, &m.Sessions, &m.Pageviews); err != nil {
			return nil, err
		}
		series = append(series, m)
	}
	return series, rows.Err()
}

func (r *Repository) DeleteByDate(ctx context.Context, projectID int64, date time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM analytics_entries WHERE project_id = $1 AND report_date = $2`, projectID, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...any) ([]TrafficEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TrafficEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *Repository) groupedTotals(ctx context.Context, query string, args ...any) ([]GroupedTotal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GroupedTotal
	for rows.Next() {
		var g GroupedTotal
		if err := rows.Scan(&g.Key, &g.Total); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}
