// Package tasks tracks the work items attached to projects: operational
// todos with a status lifecycle and free-form tags for grouping.
package tasks

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// Task is a work item attached to a project.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	ProjectID   int64      `json:"project_id" db:"project_id"`
	Title       string     `json:"title" db:"title"`
	Tag         *string    `json:"tag,omitempty" db:"tag"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateTaskRequest struct {
	ProjectID   int64      `json:"project_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,max=255"`
	Tag         *string    `json:"tag,omitempty" validate:"omitempty,max=100"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED BLOCKED CANCELLED"`
}

// UpdateTaskRequest applies a partial update. A changed project id moves
// the task to another project.
type UpdateTaskRequest struct {
	ProjectID   *int64      `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Tag         *string     `json:"tag,omitempty" validate:"omitempty,max=100"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED BLOCKED CANCELLED"`
}

// TaskCounts summarizes a project's board.
type TaskCounts struct {
	Total    int64                `json:"total"`
	ByStatus map[TaskStatus]int64 `json:"by_status"`
}
