// Package jobs holds the background workers: periodic KPI snapshots and
// the queue plumbing around them.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMetricsSnapshot computes and stores monthly KPI snapshots.
	TaskMetricsSnapshot = "metrics:snapshot"
)

// MetricsSnapshotPayload scopes a snapshot run. ProjectID zero means every
// active project; an empty Month means the current month.
type MetricsSnapshotPayload struct {
	RunID     string `json:"run_id"`
	ProjectID int64  `json:"project_id,omitempty"`
	Month     string `json:"month,omitempty"`
}

// NewMetricsSnapshotTask constructs a snapshot task with a fresh run id.
func NewMetricsSnapshotTask(payload MetricsSnapshotPayload) (*asynq.Task, error) {
	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMetricsSnapshot, data), nil
}
