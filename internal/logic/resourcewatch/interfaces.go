package resourcewatch

import (
	"context"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
)

// Repository is the port interface for K8s operations.
// Implementations are provided by adapters in the outbound layer.
type Repository interface {
	ListPods(
		ctx context.Context,
		filter domain.PodFilter,
	) ([]domain.Pod, error)

	PodMetrics(
		ctx context.Context,
		namespace,
		name string,
	) (*domain.PodMetrics, error)
}

// AlertIngester receives threshold alerts.
type AlertIngester interface {
	Ingest(
		ctx context.Context,
		alert escalator.Alert,
	) (escalator.Outcome, error)
}

// notFound is a private interface for checking "not found" errors
// without importing the adapter package.
type notFound interface {
	IsNotFound()
}
