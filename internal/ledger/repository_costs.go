package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const oneTimeCostColumns = `id, project_id, name, amount, cost_date, category, description,
	invoice_number, supplier, payment_status, created_at, updated_at`

func scanOneTimeCost(row pgx.Row) (OneTimeCost, error) {
	var c OneTimeCost
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Amount, &c.CostDate, &c.Category,
		&c.Description, &c.InvoiceNumber, &c.Supplier, &c.PaymentStatus, &c.CreatedAt, &c.UpdatedAt)
	return c, notFoundOnNoRows(err, "one-time cost")
}

func (r *Repository) GetOneTimeCost(ctx context.Context, id int64) (OneTimeCost, error) {
	query := `SELECT ` + oneTimeCostColumns + ` FROM one_time_costs WHERE id = $1`
	return scanOneTimeCost(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListOneTimeCosts(ctx context.Context, projectID int64) ([]OneTimeCost, error) {
	query := `SELECT ` + oneTimeCostColumns + ` FROM one_time_costs
		WHERE project_id = $1 ORDER BY cost_date DESC`
	return r.queryOneTimeCosts(ctx, query, projectID)
}

func (r *Repository) ListOneTimeCostsByCategory(ctx context.Context, projectID int64, category CostCategory) ([]OneTimeCost, error) {
	query := `SELECT ` + oneTimeCostColumns + ` FROM one_time_costs
		WHERE project_id = $1 AND category = $2 ORDER BY cost_date DESC`
	return r.queryOneTimeCosts(ctx, query, projectID, category)
}

func (r *Repository) ListOneTimeCostsByDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]OneTimeCost, error) {
	query := `SELECT ` + oneTimeCostColumns + ` FROM one_time_costs
		WHERE project_id = $1 AND cost_date >= $2 AND cost_date <= $3 ORDER BY cost_date`
	return r.queryOneTimeCosts(ctx, query, projectID, from, to)
}

func (r *Repository) queryOneTimeCosts(ctx context.Context, query string, args ...any) ([]OneTimeCost, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OneTimeCost
	for rows.Next() {
		c, err := scanOneTimeCost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *Repository) CreateOneTimeCost(ctx context.Context, c OneTimeCost) (OneTimeCost, error) {
	query := `INSERT INTO one_time_costs (project_id, name, amount, cost_date, category, description,
			invoice_number, supplier, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, c.ProjectID, c.Name, c.Amount, c.CostDate, c.Category,
		c.Description, c.InvoiceNumber, c.Supplier, c.PaymentStatus, now).Scan(&c.ID)
	if err != nil {
		return OneTimeCost{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *Repository) UpdateOneTimeCost(ctx context.Context, id int64, c OneTimeCost) error {
	query := `UPDATE one_time_costs SET name = $1, amount = $2, cost_date = $3, category = $4,
			description = $5, invoice_number = $6, supplier = $7, payment_status = $8, updated_at = $9
		WHERE id = $10`
	tag, err := r.pool.Exec(ctx, query, c.Name, c.Amount, c.CostDate, c.Category, c.Description,
		c.InvoiceNumber, c.Supplier, c.PaymentStatus, time.Now(), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "one-time cost", id)
}

func (r *Repository) DeleteOneTimeCost(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM one_time_costs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "one-time cost", id)
}

// SumOneTimeCosts totals one-time costs whose cost date falls in the range.
func (r *Repository) SumOneTimeCosts(ctx context.Context, projectID int64, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM one_time_costs
		WHERE project_id = $1 AND cost_date >= $2 AND cost_date <= $3`
	return r.sumQuery(ctx, query, projectID, from, to)
}

// SumOneTimeCostsByCategory groups one-time cost totals by category.
func (r *Repository) SumOneTimeCostsByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	query := `SELECT category, SUM(amount) FROM one_time_costs
		WHERE project_id = $1 GROUP BY category ORDER BY category`
	return r.groupedSum(ctx, query, projectID)
}
