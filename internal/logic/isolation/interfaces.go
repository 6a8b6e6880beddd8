package isolation

import (
	"context"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

// Gateway is the cluster port used by drain isolation and manual eviction.
type Gateway interface {
	ListPods(ctx context.Context, filter domain.PodFilter) ([]domain.Pod, error)
	DeletePod(ctx context.Context, namespace, name string) error
}

// NodeResolver maps a node name to its remote target.
type NodeResolver interface {
	ResolveNode(name string) (domain.NodeTarget, error)
}

// IncidentRecorder records incidents that are not alert driven.
type IncidentRecorder interface {
	Record(
		ctx context.Context,
		key domain.PodKey,
		incidentType domain.IncidentType,
		message string,
	) incident.Record
}

// notFound is a private interface for checking "not found" errors
// without importing the adapter package.
type notFound interface {
	IsNotFound()
}
