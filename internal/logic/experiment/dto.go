package experiment

import (
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// Definition is a scheduled isolation run.
type Definition struct {
	Name     string
	Schedule string
	TZ       string
	NodeName string
	Method   domain.IsolationMethod
	Duration int
}

// Status is the scheduling state of one experiment.
type Status struct {
	Name      string                 `json:"name"`
	Schedule  string                 `json:"schedule"`
	TZ        string                 `json:"tz,omitempty"`
	NodeName  string                 `json:"node_name"`
	Method    domain.IsolationMethod `json:"method"`
	Duration  int                    `json:"duration"`
	NextRunAt time.Time              `json:"next_run_at"`
	LastRun   *Run                   `json:"last_run,omitempty"`
}

// Run records one triggered execution.
type Run struct {
	TaskID      string    `json:"task_id,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
	Error       string    `json:"error,omitempty"`
}
