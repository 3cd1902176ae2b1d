package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const revenueColumns = `id, project_id, name, amount, revenue_date, source, type, description,
	invoice_number, payment_status, created_at, updated_at`

func scanRevenueStream(row pgx.Row) (RevenueStream, error) {
	var s RevenueStream
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Amount, &s.RevenueDate, &s.Source, &s.Type,
		&s.Description, &s.InvoiceNumber, &s.PaymentStatus, &s.CreatedAt, &s.UpdatedAt)
	return s, notFoundOnNoRows(err, "revenue stream")
}

func (r *Repository) GetRevenueStream(ctx context.Context, id int64) (RevenueStream, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenue_streams WHERE id = $1`
	return scanRevenueStream(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListRevenueStreams(ctx context.Context, projectID int64) ([]RevenueStream, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenue_streams
		WHERE project_id = $1 ORDER BY revenue_date DESC`
	return r.queryRevenueStreams(ctx, query, projectID)
}

func (r *Repository) ListRevenueStreamsByType(ctx context.Context, projectID int64, typ RevenueType) ([]RevenueStream, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenue_streams
		WHERE project_id = $1 AND type = $2 ORDER BY revenue_date DESC`
	return r.queryRevenueStreams(ctx, query, projectID, typ)
}

func (r *Repository) ListRevenueStreamsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]RevenueStream, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenue_streams
		WHERE project_id = $1 AND revenue_date >= $2 AND revenue_date <= $3 ORDER BY revenue_date`
	return r.queryRevenueStreams(ctx, query, projectID, from, to)
}

func (r *Repository) queryRevenueStreams(ctx context.Context, query string, args ...any) ([]RevenueStream, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RevenueStream
	for rows.Next() {
		s, err := scanRevenueStream(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *Repository) CreateRevenueStream(ctx context.Context, s RevenueStream) (RevenueStream, error) {
	query := `INSERT INTO revenue_streams (project_id, name, amount, revenue_date, source, type,
			description, invoice_number, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, s.ProjectID, s.Name, s.Amount, s.RevenueDate, s.Source,
		s.Type, s.Description, s.InvoiceNumber, s.PaymentStatus, now).Scan(&s.ID)
	if err != nil {
		return RevenueStream{}, err
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

func (r *Repository) UpdateRevenueStream(ctx context.Context, id int64, s RevenueStream) error {
	query := `UPDATE revenue_streams SET name = $1, amount = $2, revenue_date = $3, source = $4,
			type = $5, description = $6, invoice_number = $7, payment_status = $8, updated_at = $9
		WHERE id = $10`
	tag, err := r.pool.Exec(ctx, query, s.Name, s.Amount, s.RevenueDate, s.Source, s.Type,
		s.Description, s.InvoiceNumber, s.PaymentStatus, time.Now(), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "revenue stream", id)
}

func (r *Repository) DeleteRevenueStream(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revenue_streams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "revenue stream", id)
}

// SumRevenue totals revenue-stream amounts dated within the range.
func (r *Repository) SumRevenue(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM revenue_streams
		WHERE project_id = $1 AND revenue_date >= $2 AND revenue_date <= $3`
	return r.sumQuery(ctx, query, projectID, from, to)
}

// SumRevenueByType groups revenue totals by revenue type.
func (r *Repository) SumRevenueByType(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	query := `SELECT type, SUM(amount) FROM revenue_streams
		WHERE project_id = $1 GROUP BY type ORDER BY type`
	return r.groupedSum(ctx, query, projectID)
}

// SumRevenueBySource groups revenue totals by source label. Rows without a
// source bucket under 'direct'.
func (r *Repository) SumRevenueBySource(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	query := `SELECT COALESCE(source, 'direct'), SUM(amount) FROM revenue_streams
		WHERE project_id = $1 GROUP BY COALESCE(source, 'direct') ORDER BY 1`
	return r.groupedSum(ctx, query, projectID)
}

// MonthlyRevenueSeries returns per-month revenue totals for a year.
func (r *Repository) MonthlyRevenueSeries(ctx context.Context, projectID int64, year int) ([]MonthlyAmount, error) {
	query := `SELECT EXTRACT(MONTH FROM revenue_date)::int, SUM(amount) FROM revenue_streams
		WHERE project_id = $1 AND EXTRACT(YEAR FROM revenue_date) = $2
		GROUP BY 1 ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, projectID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyAmount
	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		result = append(result, MonthlyAmount{Year: year, Month: time.Month(month), Total: total})
	}
	return result, rows.Err()
}
