package isolation

import "time"

const (
	defaultCommandTimeout  = 30 * time.Second
	defaultRollbackTimeout = time.Minute
	defaultKubeletService  = "kubelet"
	defaultRuntimeService  = "containerd"
	defaultDrainQPS        = 5.0
	defaultMemoryFraction  = 0.99

	tracerName = "github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
)

// Options tunes the orchestrator. Zero values select defaults.
type Options struct {
	// CommandTimeout bounds a single remote command.
	CommandTimeout time.Duration

	// RollbackTimeout bounds the whole rollback of one job.
	RollbackTimeout time.Duration

	// DurationUnit is the length of one job duration step. Defaults to time.Second.
	DurationUnit time.Duration

	KubeletService string
	RuntimeService string

	// DrainQPS limits pod deletions per second during drain.
	DrainQPS float64

	// MemoryFraction of MemAvailable allocated by extreme resource isolation.
	MemoryFraction float64
}

func (o Options) withDefaults() Options {
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = defaultCommandTimeout
	}

	if o.RollbackTimeout <= 0 {
		o.RollbackTimeout = defaultRollbackTimeout
	}

	if o.DurationUnit <= 0 {
		o.DurationUnit = time.Second
	}

	if o.KubeletService == "" {
		o.KubeletService = defaultKubeletService
	}

	if o.RuntimeService == "" {
		o.RuntimeService = defaultRuntimeService
	}

	if o.DrainQPS <= 0 {
		o.DrainQPS = defaultDrainQPS
	}

	if o.MemoryFraction <= 0 || o.MemoryFraction > 1 {
		o.MemoryFraction = defaultMemoryFraction
	}

	return o
}
