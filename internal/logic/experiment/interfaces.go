package experiment

import (
	"context"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
)

// JobStarter launches isolation jobs.
type JobStarter interface {
	StartJob(
		ctx context.Context,
		nodeName string,
		method domain.IsolationMethod,
		duration int,
	) (isolation.Job, error)
}

// CronParser computes schedule occurrences.
type CronParser interface {
	NextAfter(spec, tz string, after time.Time) (time.Time, error)
}
