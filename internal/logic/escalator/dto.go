package escalator

import (
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

// Alert is a failure signal for a single pod.
type Alert struct {
	PodName   string
	Namespace string
	Message   string
	Type      domain.IncidentType
	Time      time.Time
}

// Action is the remediation chosen for an alert.
type Action string

const (
	ActionRestart    Action = "restart"
	ActionQuarantine Action = "quarantine"
)

// Outcome describes what Ingest recorded and decided.
type Outcome struct {
	Record      incident.Record
	Closed      *incident.Record
	Counter     int
	Action      Action
	Quarantined bool
}
