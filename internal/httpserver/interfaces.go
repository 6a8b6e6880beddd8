package httpserver

import (
	"context"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/appstate"
	"github.com/skillcoder/nodechaos-controller/internal/infra/pinger"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
	"github.com/skillcoder/nodechaos-controller/internal/logic/experiment"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
	"github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
	"github.com/skillcoder/nodechaos-controller/internal/logic/migration"
)

// appstater is an internal interface for application state management
type appstater interface {
	GetState() appstate.State
	IsHealthy() bool
	IsReady() bool
	GetUptime() time.Duration
	GetStartTime() time.Time
	GetAllStats() map[string]*pinger.Statistics
}

// AlertIngester accepts failure alerts.
type AlertIngester interface {
	Ingest(ctx context.Context, alert escalator.Alert) (escalator.Outcome, error)
}

// IncidentReader reads the incident log.
type IncidentReader interface {
	Capacity() int
	Recent(limit int) []incident.Record
	Stats() incident.Stats
}

// Isolator runs isolation jobs and manual evictions.
type Isolator interface {
	StartJob(ctx context.Context, nodeName string, method domain.IsolationMethod, duration int) (isolation.Job, error)
	Stop(ctx context.Context, id string) (isolation.Job, error)
	Status(id string) (isolation.Job, error)
	List() []isolation.Job
	PendingRollbacks() []isolation.PendingRollback
	EvictPod(ctx context.Context, namespace, name, reason string) (incident.Record, error)
}

// MigrationReader exposes the migration monitor views.
type MigrationReader interface {
	Report() migration.Report
	Distribution() migration.Distribution
	History(key domain.PodKey) ([]migration.Placement, error)
}

// ExperimentLister lists scheduled experiments.
type ExperimentLister interface {
	List() []experiment.Status
}

// NodeOperator runs node maintenance operations against the cluster.
type NodeOperator interface {
	ListNodes(ctx context.Context) ([]domain.Node, error)
	CordonNode(ctx context.Context, name string) error
	UncordonNode(ctx context.Context, name string) error
	DrainNode(ctx context.Context, name string) (domain.DrainResult, error)
}

// notFound is a private interface for checking "not found" errors
// without importing the adapter package.
type notFound interface {
	IsNotFound()
}
