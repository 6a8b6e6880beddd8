package incident

import (
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// DefaultCapacity is the number of records kept before the oldest is dropped.
const DefaultCapacity = 1000

// Record is one failure-to-recovery window of a pod.
type Record struct {
	ID           uint64              `json:"id"`
	PodName      string              `json:"pod_name"`
	Namespace    string              `json:"namespace"`
	Type         domain.IncidentType `json:"type"`
	Message      string              `json:"message"`
	StartTime    time.Time           `json:"start_time"`
	RecoveryTime *time.Time          `json:"recovery_time"`
	Quarantined  bool                `json:"quarantined"`
}

// Key returns the pod key of the record.
func (r *Record) Key() domain.PodKey {
	return domain.PodKey{Namespace: r.Namespace, Name: r.PodName}
}

// Open reports whether no recovery was observed yet.
func (r *Record) Open() bool {
	return r.RecoveryTime == nil
}

func (r *Record) snapshot() Record {
	out := *r
	if r.RecoveryTime != nil {
		ts := *r.RecoveryTime
		out.RecoveryTime = &ts
	}

	return out
}

// Stats summarizes the retained records.
type Stats struct {
	Total            int            `json:"total"`
	Open             int            `json:"open"`
	Recovered        int            `json:"recovered"`
	Quarantined      int            `json:"quarantined"`
	MeanRecoveryTime time.Duration  `json:"mean_recovery_time_ns"`
	ByType           map[string]int `json:"by_type"`
}
