package migration

import (
	"context"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

// PodLister is the read side of the cluster gateway.
type PodLister interface {
	ListPods(
		ctx context.Context,
		filter domain.PodFilter,
	) ([]domain.Pod, error)
}

// Recoverer closes the open incident of a pod observed Running.
type Recoverer interface {
	Recover(
		ctx context.Context,
		key domain.PodKey,
		source string,
	) (incident.Record, bool)
}

// EventSink receives every emitted migration event.
type EventSink interface {
	Write(ctx context.Context, event Event) error
}
