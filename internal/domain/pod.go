package domain

import (
	"time"

	"k8s.io/apimachinery/pkg/api/resource"
)

// UnscheduledNode is the node name reported for pods without a node assignment.
const UnscheduledNode = "Unscheduled"

// DefaultNamespace is used when an alert or request omits the namespace.
const DefaultNamespace = "default"

// PodPhaseRunning mirrors the Kubernetes Running phase.
const PodPhaseRunning = "Running"

// Pod is the cluster-agnostic view of a pod.
type Pod struct {
	Name         string
	Namespace    string
	NodeName     string
	Phase        string
	Ready        bool
	RestartCount int32
	CreatedAt    time.Time
	Labels       map[string]string
	Annotations  map[string]string
	MemoryLimit  *resource.Quantity
}

// Key returns the incident key of the pod.
func (p Pod) Key() PodKey {
	return PodKey{Namespace: p.Namespace, Name: p.Name}
}

// Node returns the pod node or UnscheduledNode.
func (p Pod) Node() string {
	if p.NodeName == "" {
		return UnscheduledNode
	}

	return p.NodeName
}

// PodMetrics holds aggregated usage of all pod containers.
type PodMetrics struct {
	MemoryUsage *resource.Quantity
}

// PodFilter narrows pod listings. Empty fields match everything.
type PodFilter struct {
	Namespace     string
	NodeName      string
	LabelSelector string
}

// PodKey identifies a pod across incidents, counters and placement history.
type PodKey struct {
	Namespace string
	Name      string
}

// String renders the key as namespace:name.
func (k PodKey) String() string {
	return k.Namespace + ":" + k.Name
}
