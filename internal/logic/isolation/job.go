package isolation

import (
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

const (
	MinDurationSeconds = 10
	MaxDurationSeconds = 3600
)

// Job is an isolation run against a single node.
type Job struct {
	ID          string                 `json:"task_id"`
	NodeName    string                 `json:"node_name"`
	Method      domain.IsolationMethod `json:"method"`
	Duration    int                    `json:"duration"`
	Status      domain.JobStatus       `json:"status"`
	Message     string                 `json:"message"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at"`
	RollbackAt  *time.Time             `json:"rollback_at,omitempty"`
}

func (j *Job) snapshot() Job {
	out := *j
	out.StartedAt = copyTime(j.StartedAt)
	out.CompletedAt = copyTime(j.CompletedAt)
	out.RollbackAt = copyTime(j.RollbackAt)

	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	ts := *t

	return &ts
}

// startRequest is validated before a job is created.
type startRequest struct {
	NodeName string `validate:"required,max=253"`
	Method   string `validate:"required,oneof=network kubelet runtime drain extreme_resource"`
	Duration int    `validate:"min=10,max=3600"`
}

// PendingRollback describes an armed rollback timer.
type PendingRollback struct {
	JobID    string                 `json:"task_id"`
	NodeName string                 `json:"node_name"`
	Method   domain.IsolationMethod `json:"method"`
	FireAt   time.Time              `json:"fire_at"`
}

// DrainReport summarizes a manual drain.
type DrainReport struct {
	NodeName string   `json:"node_name"`
	Total    int      `json:"total"`
	Deleted  int      `json:"deleted"`
	Failed   []string `json:"failed,omitempty"`
}
