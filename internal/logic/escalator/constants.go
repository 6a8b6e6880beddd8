package escalator

import "time"

const (
	// DefaultQuarantineThreshold is the consecutive failure count that triggers quarantine.
	DefaultQuarantineThreshold = 3

	// DefaultQuarantineNamespace receives quarantined pods.
	DefaultQuarantineNamespace = "quarantine"

	remediationTimeout = 30 * time.Second

	// recordSource labels recoveries caused by a non-alert incident replacing an open one.
	recordSource = "eviction"

	tracerName = "github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
)
