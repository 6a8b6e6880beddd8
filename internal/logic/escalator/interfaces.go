package escalator

import "context"

// Remediator is the port for pod remediation commands.
type Remediator interface {
	DeletePod(
		ctx context.Context,
		namespace,
		name string,
	) error

	MovePodToNamespace(
		ctx context.Context,
		namespace,
		name,
		targetNamespace string,
	) error
}
