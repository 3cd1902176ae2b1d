package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the financial
// ledger. The entity-specific methods live in the repository_*.go files.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) sumQuery(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, args...).Scan(&sum)
	return sum, err
}

func (r *Repository) groupedSum(ctx context.Context, query string, args ...any) ([]GroupedSum, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GroupedSum
	for rows.Next() {
		var g GroupedSum
		if err := rows.Scan(&g.Key, &g.Total); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func notFoundOnNoRows(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.NotFoundf("%s", what)
	}
	return err
}

func affectedOrNotFound(tag interface{ RowsAffected() int64 }, what string, id int64) error {
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("%s %d", what, id)
	}
	return nil
}
