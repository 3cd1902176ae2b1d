package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const recurringCostColumns = `id, project_id, name, amount, frequency, category, start_date,
	end_date, description, active, auto_renew, created_at, updated_at`

func scanRecurringCost(row pgx.Row) (RecurringCost, error) {
	var c RecurringCost
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Amount, &c.Frequency, &c.Category,
		&c.StartDate, &c.EndDate, &c.Description, &c.Active, &c.AutoRenew, &c.CreatedAt, &c.UpdatedAt)
	return c, notFoundOnNoRows(err, "recurring cost")
}

func (r *Repository) GetRecurringCost(ctx context.Context, id int64) (RecurringCost, error) {
	query := `SELECT ` + recurringCostColumns + ` FROM recurring_costs WHERE id = $1`
	return scanRecurringCost(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error) {
	query := `SELECT ` + recurringCostColumns + ` FROM recurring_costs
		WHERE project_id = $1 ORDER BY name`
	return r.queryRecurringCosts(ctx, query, projectID)
}

func (r *Repository) ListActiveRecurringCosts(ctx context.Context, projectID int64) ([]RecurringCost, error) {
	query := `SELECT ` + recurringCostColumns + ` FROM recurring_costs
		WHERE project_id = $1 AND active ORDER BY name`
	return r.queryRecurringCosts(ctx, query, projectID)
}

func (r *Repository) ListRecurringCostsByFrequency(ctx context.Context, projectID int64, freq Frequency) ([]RecurringCost, error) {
	query := `SELECT ` + recurringCostColumns + ` FROM recurring_costs
		WHERE project_id = $1 AND frequency = $2 ORDER BY name`
	return r.queryRecurringCosts(ctx, query, projectID, freq)
}

func (r *Repository) queryRecurringCosts(ctx context.Context, query string, args ...any) ([]RecurringCost, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecurringCost
	for rows.Next() {
		c, err := scanRecurringCost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *Repository) CreateRecurringCost(ctx context.Context, c RecurringCost) (RecurringCost, error) {
	query := `INSERT INTO recurring_costs (project_id, name, amount, frequency, category, start_date,
			end_date, description, active, auto_renew, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, c.ProjectID, c.Name, c.Amount, c.Frequency, c.Category,
		c.StartDate, c.EndDate, c.Description, c.Active, c.AutoRenew, now).Scan(&c.ID)
	if err != nil {
		return RecurringCost{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *Repository) UpdateRecurringCost(ctx context.Context, id int64, c RecurringCost) error {
	query := `UPDATE recurring_costs SET name = $1, amount = $2, frequency = $3, category = $4,
			start_date = $5, end_date = $6, description = $7, active = $8, auto_renew = $9,
			updated_at = $10
		WHERE id = $11`
	tag, err := r.pool.Exec(ctx, query, c.Name, c.Amount, c.Frequency, c.Category, c.StartDate,
		c.EndDate, c.Description, c.Active, c.AutoRenew, time.Now(), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "recurring cost", id)
}

func (r *Repository) DeleteRecurringCost(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recurring_costs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "recurring cost", id)
}

// SumActiveMonthlyRecurring totals active MONTHLY recurring costs. The
// cost calculator multiplies this by the months spanned by its range;
// quarterly and yearly entries are deliberately excluded, matching how the
// recurring burn rate has always been defined here.
func (r *Repository) SumActiveMonthlyRecurring(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM recurring_costs
		WHERE project_id = $1 AND active AND frequency = 'MONTHLY'`
	return r.sumQuery(ctx, query, projectID)
}

// SumActiveRecurringByCategory groups active recurring cost totals by
// category, regardless of frequency.
func (r *Repository) SumActiveRecurringByCategory(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	query := `SELECT category, SUM(amount) FROM recurring_costs
		WHERE project_id = $1 AND active GROUP BY category ORDER BY category`
	return r.groupedSum(ctx, query, projectID)
}
