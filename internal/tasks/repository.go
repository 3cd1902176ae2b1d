package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectledger/projectledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, project_id, title, tag, description, status, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Tag, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, shared.NotFoundf("task")
	}
	return t, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) List(ctx context.Context) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return r.queryTasks(ctx, query)
}

func (r *Repository) ListByStatus(ctx context.Context, status TaskStatus) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, status)
}

func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, projectID)
}

func (r *Repository) ListByProjectAndStatus(ctx context.Context, projectID int64, status TaskStatus) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, projectID, status)
}

func (r *Repository) ListByProjectAndTag(ctx context.Context, projectID int64, tag string) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND tag = $2 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, projectID, tag)
}

// DistinctTags lists the tags in use on a project, alphabetically.
func (r *Repository) DistinctTags(ctx context.Context, projectID int64) ([]string, error) {
	query := `SELECT DISTINCT tag FROM tasks WHERE project_id = $1 AND tag IS NOT NULL ORDER BY tag`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *Repository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID).Scan(&count)
	return count, err
}

func (r *Repository) CountByProjectGrouped(ctx context.Context, projectID int64) (map[TaskStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM tasks WHERE project_id = $1 GROUP BY status`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[TaskStatus]int64{}
	for rows.Next() {
		var status TaskStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *Repository) Create(ctx context.Context, t Task) (Task, error) {
	query := `INSERT INTO tasks (project_id, title, tag, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, t.ProjectID, t.Title, t.Tag, t.Description, t.Status, now).Scan(&t.ID)
	if err != nil {
		return Task{}, err
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func (r *Repository) Update(ctx context.Context, id int64, t Task) error {
	query := `UPDATE tasks SET project_id = $1, title = $2, tag = $3, description = $4, status = $5, updated_at = $6
		WHERE id = $7`
	tag, err := r.pool.Exec(ctx, query, t.ProjectID, t.Title, t.Tag, t.Description, t.Status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("task %d", id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("task %d", id)
	}
	return nil
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
