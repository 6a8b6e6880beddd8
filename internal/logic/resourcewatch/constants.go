package resourcewatch

const (
	DefaultPodLabelSelector             = "nodechaos.k8s.skillcoder.com/watch=true"
	DefaultAnnotationMemoryThresholdKey = "nodechaos.k8s.skillcoder.com/memory-threshold"
	DefaultMemoryThreshold              = "90%"

	// percentScale is the divisor for percentage values (e.g. 80% -> 80/100).
	percentScale = 100
)
