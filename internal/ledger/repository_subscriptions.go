package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const subscriptionColumns = `id, project_id, customer_name, customer_email, plan_name, mrr,
	start_date, end_date, status, billing_cycle, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.ProjectID, &s.CustomerName, &s.CustomerEmail, &s.PlanName, &s.MRR,
		&s.StartDate, &s.EndDate, &s.Status, &s.BillingCycle, &s.CreatedAt, &s.UpdatedAt)
	return s, notFoundOnNoRows(err, "subscription")
}

func (r *Repository) GetSubscription(ctx context.Context, id int64) (Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) ListSubscriptions(ctx context.Context, projectID int64) ([]Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE project_id = $1 ORDER BY start_date DESC`
	return r.querySubscriptions(ctx, query, projectID)
}

func (r *Repository) ListSubscriptionsByStatus(ctx context.Context, projectID int64, status SubscriptionStatus) ([]Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE project_id = $1 AND status = $2 ORDER BY start_date DESC`
	return r.querySubscriptions(ctx, query, projectID, status)
}

func (r *Repository) ListSubscriptionsByPlan(ctx context.Context, projectID int64, plan string) ([]Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE project_id = $1 AND plan_name = $2 ORDER BY start_date DESC`
	return r.querySubscriptions(ctx, query, projectID, plan)
}

func (r *Repository) querySubscriptions(ctx context.Context, query string, args ...any) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *Repository) CreateSubscription(ctx context.Context, s Subscription) (Subscription, error) {
	query := `INSERT INTO subscriptions (project_id, customer_name, customer_email, plan_name, mrr,
			start_date, end_date, status, billing_cycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, s.ProjectID, s.CustomerName, s.CustomerEmail, s.PlanName,
		s.MRR, s.StartDate, s.EndDate, s.Status, s.BillingCycle, now).Scan(&s.ID)
	if err != nil {
		return Subscription{}, err
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

func (r *Repository) UpdateSubscription(ctx context.Context, id int64, s Subscription) error {
	query := `UPDATE subscriptions SET customer_name = $1, customer_email = $2, plan_name = $3,
			mrr = $4, start_date = $5, end_date = $6, status = $7, billing_cycle = $8, updated_at = $9
		WHERE id = $10`
	tag, err := r.pool.Exec(ctx, query, s.CustomerName, s.CustomerEmail, s.PlanName, s.MRR,
		s.StartDate, s.EndDate, s.Status, s.BillingCycle, time.Now(), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "subscription", id)
}

func (r *Repository) DeleteSubscription(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(tag, "subscription", id)
}

// SumActiveMRR totals the MRR of ACTIVE subscriptions.
func (r *Repository) SumActiveMRR(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(mrr), 0) FROM subscriptions
		WHERE project_id = $1 AND status = 'ACTIVE'`
	return r.sumQuery(ctx, query, projectID)
}

// CountActiveSubscriptions counts ACTIVE subscriptions.
func (r *Repository) CountActiveSubscriptions(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE project_id = $1 AND status = 'ACTIVE'`,
		projectID).Scan(&count)
	return count, err
}

// SumActiveMRRByPlan groups active MRR by plan name.
func (r *Repository) SumActiveMRRByPlan(ctx context.Context, projectID int64) ([]GroupedSum, error) {
	query := `SELECT plan_name, SUM(mrr) FROM subscriptions
		WHERE project_id = $1 AND status = 'ACTIVE' GROUP BY plan_name ORDER BY plan_name`
	return r.groupedSum(ctx, query, projectID)
}
