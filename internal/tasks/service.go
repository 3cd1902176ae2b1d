package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/shared"
)

// Store is the subset of repository operations the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (Task, error)
	List(ctx context.Context) ([]Task, error)
	ListByStatus(ctx context.Context, status TaskStatus) ([]Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]Task, error)
	ListByProjectAndStatus(ctx context.Context, projectID int64, status TaskStatus) ([]Task, error)
	ListByProjectAndTag(ctx context.Context, projectID int64, tag string) ([]Task, error)
	DistinctTags(ctx context.Context, projectID int64) ([]string, error)
	CountByProject(ctx context.Context, projectID int64) (int64, error)
	CountByProjectGrouped(ctx context.Context, projectID int64) (map[TaskStatus]int64, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, id int64, t Task) error
	Delete(ctx context.Context, id int64) error
}

// ProjectDirectory resolves the projects tasks are attached to.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (projects.Project, error)
}

// Service provides business logic for task management.
type Service struct {
	repo     Store
	projects ProjectDirectory
	logger   *slog.Logger
}

// NewService constructs a task service.
func NewService(repo Store, directory ProjectDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, projects: directory, logger: logger}
}

// Create attaches a task to an existing project. Status defaults to TODO.
func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (Task, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Task{}, err
	}
	if _, err := s.projects.Get(ctx, req.ProjectID); err != nil {
		return Task{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	created, err := s.repo.Create(ctx, Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Tag:         req.Tag,
		Description: req.Description,
		Status:      status,
	})
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", slog.Int64("id", created.ID), slog.Int64("project_id", created.ProjectID))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status TaskStatus) ([]Task, error) {
	if err := validStatus(status); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListByProject returns a project's tasks, optionally narrowed to one
// status or one tag. An unknown project is rejected rather than returning
// an empty board.
func (s *Service) ListByProject(ctx context.Context, projectID int64, status TaskStatus, tag string) ([]Task, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	switch {
	case status != "":
		if err := validStatus(status); err != nil {
			return nil, err
		}
		return s.repo.ListByProjectAndStatus(ctx, projectID, status)
	case tag != "":
		return s.repo.ListByProjectAndTag(ctx, projectID, tag)
	default:
		return s.repo.ListByProject(ctx, projectID)
	}
}

// Tags lists the distinct tags in use on a project.
func (s *Service) Tags(ctx context.Context, projectID int64) ([]string, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.DistinctTags(ctx, projectID)
}

// Counts summarizes a project's board by status.
func (s *Service) Counts(ctx context.Context, projectID int64) (TaskCounts, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return TaskCounts{}, err
	}
	total, err := s.repo.CountByProject(ctx, projectID)
	if err != nil {
		return TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}
	byStatus, err := s.repo.CountByProjectGrouped(ctx, projectID)
	if err != nil {
		return TaskCounts{}, fmt.Errorf("count tasks by status: %w", err)
	}
	return TaskCounts{Total: total, ByStatus: byStatus}, nil
}

// Update applies a partial update. Moving the task to another project
// requires that project to exist.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTaskRequest) (Task, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return Task{}, err
	}
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if req.ProjectID != nil && *req.ProjectID != task.ProjectID {
		if _, err := s.projects.Get(ctx, *req.ProjectID); err != nil {
			return Task{}, err
		}
		task.ProjectID = *req.ProjectID
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Tag != nil {
		task.Tag = req.Tag
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.repo.Update(ctx, id, task); err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validStatus(status TaskStatus) error {
	switch status {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled:
		return nil
	default:
		return shared.Invalidf("unknown task status %q", status)
	}
}
