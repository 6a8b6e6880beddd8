package migration

import "time"

// Placement is one observation of a pod.
type Placement struct {
	Timestamp    time.Time `json:"timestamp"`
	Node         string    `json:"node"`
	Phase        string    `json:"phase"`
	Ready        bool      `json:"ready"`
	RestartCount int32     `json:"restart_count"`
}

// Event reports that a pod moved from one scheduled node to another.
type Event struct {
	PodName   string    `json:"pod_name"`
	Namespace string    `json:"namespace"`
	FromNode  string    `json:"from_node"`
	ToNode    string    `json:"to_node"`
	Timestamp time.Time `json:"timestamp"`
	Phase     string    `json:"phase"`
	Ready     bool      `json:"ready"`
}

// Report is the export of all recorded migration events.
type Report struct {
	TotalMigrations int            `json:"total_migrations"`
	MigrationEvents []Event        `json:"migration_events"`
	FromNodeCounts  map[string]int `json:"from_node_counts"`
	ToNodeCounts    map[string]int `json:"to_node_counts"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// NodeLoad counts pods observed on one node.
type NodeLoad struct {
	Pods  int `json:"pods"`
	Ready int `json:"ready"`
}

// Distribution is the pod placement of the latest successful tick.
type Distribution struct {
	Nodes       map[string]NodeLoad `json:"nodes"`
	Unscheduled []string            `json:"unscheduled"`
	ObservedAt  time.Time           `json:"observed_at"`
	GeneratedAt time.Time           `json:"generated_at"`
}
