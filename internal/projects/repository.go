package projects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for projects.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, code, name, type, status, description, start_date, currency,
	target_occupancy_rate, target_monthly_revenue, target_roi, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &p.Status, &p.Description, &p.StartDate,
		&p.Currency, &p.TargetOccupancyRate, &p.TargetMonthlyRevenue, &p.TargetROI,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, shared.NotFoundf("project")
	}
	return p, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) GetByCode(ctx context.Context, code string) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE code = $1`
	return scanProject(r.pool.QueryRow(ctx, query, code))
}

func (r *Repository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *Repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (r *Repository) List(ctx context.Context) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY name`
	return r.queryProjects(ctx, query)
}

func (r *Repository) ListByStatus(ctx context.Context, status ProjectStatus) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status = $1 ORDER BY name`
	return r.queryProjects(ctx, query, status)
}

func (r *Repository) ListByType(ctx context.Context, typ ProjectType) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE type = $1 ORDER BY name`
	return r.queryProjects(ctx, query, typ)
}

func (r *Repository) queryProjects(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p Project) (Project, error) {
	query := `INSERT INTO projects (code, name, type, status, description, start_date, currency,
			target_occupancy_rate, target_monthly_revenue, target_roi, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, p.Code, p.Name, p.Type, p.Status, p.Description, p.StartDate,
		p.Currency, p.TargetOccupancyRate, p.TargetMonthlyRevenue, p.TargetROI, now).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Project{}, shared.Conflictf("project code or name already exists")
		}
		return Project{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *Repository) Update(ctx context.Context, id int64, p Project) error {
	query := `UPDATE projects SET name = $1, description = $2, start_date = $3, currency = $4,
			target_occupancy_rate = $5, target_monthly_revenue = $6, target_roi = $7, updated_at = $8
		WHERE id = $9`
	tag, err := r.pool.Exec(ctx, query, p.Name, p.Description, p.StartDate, p.Currency,
		p.TargetOccupancyRate, p.TargetMonthlyRevenue, p.TargetROI, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.Conflictf("project name already exists")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("project %d", id)
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status ProjectStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("project %d", id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("project %d", id)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
