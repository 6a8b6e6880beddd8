package isolation

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
)

type rollbackFunc func(ctx context.Context) error

type scheduledRollback struct {
	pending PendingRollback
	run     rollbackFunc
	timer   *time.Timer
	once    sync.Once
	done    chan struct{}
}

// rollbackScheduler owns the rollback timers of all jobs. Timers can be enumerated and
// fired early, never cancelled.
type rollbackScheduler struct {
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]*scheduledRollback
	wg      sync.WaitGroup
}

func newRollbackScheduler(logger *slog.Logger, timeout time.Duration) *rollbackScheduler {
	return &rollbackScheduler{
		logger:  logger,
		timeout: timeout,
		entries: make(map[string]*scheduledRollback),
	}
}

// schedule arms a timer that runs fn after delay. A nil fn only marks the end of the hold period.
// The returned channel is closed once the rollback has run.
func (s *rollbackScheduler) schedule(
	job Job,
	delay time.Duration,
	fn rollbackFunc,
) (<-chan struct{}, time.Time) {
	fireAt := time.Now().Add(delay)
	entry := &scheduledRollback{
		pending: PendingRollback{
			JobID:    job.ID,
			NodeName: job.NodeName,
			Method:   job.Method,
			FireAt:   fireAt,
		},
		run:  fn,
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.entries[job.ID] = entry
	s.wg.Add(1)
	metrics.SetRollbacksPending(len(s.entries))
	entry.timer = time.AfterFunc(delay, func() { s.fire(entry) })
	s.mu.Unlock()

	return entry.done, fireAt
}

func (s *rollbackScheduler) fire(entry *scheduledRollback) {
	entry.once.Do(func() {
		defer s.wg.Done()
		defer close(entry.done)

		s.mu.Lock()
		delete(s.entries, entry.pending.JobID)
		metrics.SetRollbacksPending(len(s.entries))
		s.mu.Unlock()

		if entry.run == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		logger := s.logger.With(
			"taskID", entry.pending.JobID,
			"node", entry.pending.NodeName,
			"method", entry.pending.Method.String(),
		)

		err := entry.run(ctx)
		metrics.RecordRollback(entry.pending.Method.String(), err)

		if err != nil {
			logger.ErrorContext(ctx, "rollback failed", "reason", err)

			return
		}

		logger.InfoContext(ctx, "rollback completed")
	})
}

// pending lists armed timers ordered by fire time.
func (s *rollbackScheduler) pending() []PendingRollback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PendingRollback, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.pending)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].FireAt.Before(out[j].FireAt)
	})

	return out
}

// flush fires every armed timer now and waits for all rollbacks to finish.
func (s *rollbackScheduler) flush(ctx context.Context) error {
	s.mu.Lock()
	entries := make([]*scheduledRollback, 0, len(s.entries))

	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.timer.Stop()

		go s.fire(e)
	}

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func rollbackMethod(m domain.IsolationMethod) bool {
	return m == domain.MethodNetwork || m == domain.MethodKubelet || m == domain.MethodRuntime
}
