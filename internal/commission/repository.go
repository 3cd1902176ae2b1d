package commission

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for platform rates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const rateColumns = `id, name, rate, active, description, created_at, updated_at`

func scanRate(row pgx.Row) (PlatformRate, error) {
	var p PlatformRate
	err := row.Scan(&p.ID, &p.Name, &p.Rate, &p.Active, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PlatformRate{}, shared.NotFoundf("platform rate")
	}
	return p, err
}

func (r *Repository) Get(ctx context.Context, id int64) (PlatformRate, error) {
	query := `SELECT ` + rateColumns + ` FROM platform_commissions WHERE id = $1`
	return scanRate(r.pool.QueryRow(ctx, query, id))
}

// GetByName matches case-insensitively and does not filter on the active
// flag: an inactive row still resolves, so deactivating a platform does not
// silently switch its bookings to the default rate.
func (r *Repository) GetByName(ctx context.Context, name string) (PlatformRate, error) {
	query := `SELECT ` + rateColumns + ` FROM platform_commissions WHERE LOWER(name) = LOWER($1)`
	return scanRate(r.pool.QueryRow(ctx, query, name))
}

func (r *Repository) List(ctx context.Context) ([]PlatformRate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+rateColumns+` FROM platform_commissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PlatformRate
	for rows.Next() {
		p, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p PlatformRate) (PlatformRate, error) {
	query := `INSERT INTO platform_commissions (name, rate, active, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, p.Name, p.Rate, p.Active, p.Description, now).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return PlatformRate{}, shared.Conflictf("platform %q already has a commission rate", p.Name)
		}
		return PlatformRate{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *Repository) Update(ctx context.Context, id int64, p PlatformRate) error {
	query := `UPDATE platform_commissions SET rate = $1, active = $2, description = $3, updated_at = $4
		WHERE id = $5`
	tag, err := r.pool.Exec(ctx, query, p.Rate, p.Active, p.Description, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("platform rate %d", id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM platform_commissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("platform rate %d", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
