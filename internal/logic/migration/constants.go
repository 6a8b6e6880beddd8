package migration

import "time"

const (
	DefaultInterval    = 10 * time.Second
	DefaultHistorySize = 100

	// DefaultHistoryRetention is the number of consecutive ticks a pod may be missing
	// from the listing before its placement history is dropped.
	DefaultHistoryRetention = 30

	recoverySource = "monitor"
)
