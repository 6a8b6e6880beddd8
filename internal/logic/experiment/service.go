// Package experiment triggers isolation jobs on cron schedules.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

// DefaultInterval is how often due experiments are checked.
const DefaultInterval = 15 * time.Second

// parkedUntil is the next run of an experiment whose schedule stopped resolving.
var parkedUntil = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

type entry struct {
	def     Definition
	next    time.Time
	lastRun *Run
}

type Service struct {
	logger   *slog.Logger
	starter  JobStarter
	cron     CronParser
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries []*entry
	lastEnd time.Time

	ready      chan struct{}
	doneCh     chan struct{}
	inShutdown atomic.Bool
}

// New validates the definitions and computes their first run after now.
func New(
	logger *slog.Logger,
	starter JobStarter,
	cron CronParser,
	defs []Definition,
	interval time.Duration,
) (*Service, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := &Service{
		logger:   logger.With("component", "experiment-scheduler"),
		starter:  starter,
		cron:     cron,
		interval: interval,
		now:      time.Now,
		ready:    make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	now := s.now()

	for _, def := range defs {
		next, err := cron.NextAfter(def.Schedule, def.TZ, now)
		if err != nil {
			return nil, fmt.Errorf("%w: experiment %s: %w", domain.ErrValidation, def.Name, err)
		}

		s.entries = append(s.entries, &entry{def: def, next: next})
	}

	return s, nil
}

func (s *Service) Name() string {
	return "experiment-scheduler"
}

func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "experiment scheduler is shutting down, skipping start")

		return nil
	}

	go s.RunCommand(ctx)

	return nil
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		s.mu.RLock()
		age := time.Since(s.lastEnd)
		s.mu.RUnlock()

		if age > 2*s.interval {
			return fmt.Errorf("last experiment check was too long ago: %s", age.Round(time.Second).String())
		}

		return nil
	default:
		return errors.New("experiment scheduler is not ready")
	}
}

// PingerReadyCritical keeps readiness independent of scheduled experiments.
func (s *Service) PingerReadyCritical() bool {
	return false
}

func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "experiment scheduler is already shutting down, skipping shutdown")

		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before scheduler loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "experiment scheduler shut downed")
	}

	return nil
}

// RunCommand checks due experiments every interval until ctx is done.
func (s *Service) RunCommand(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	close(s.ready)

	for {
		s.TickCommand(ctx, s.now())

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "terminating experiment scheduler loop")

			return
		}
	}
}

// TickCommand starts every experiment due at now and schedules its next run.
// A run missed by more than one occurrence fires once.
func (s *Service) TickCommand(ctx context.Context, now time.Time) int {
	s.mu.Lock()

	var due []*entry

	for _, e := range s.entries {
		if !e.next.After(now) {
			due = append(due, e)
		}
	}

	s.mu.Unlock()

	for _, e := range due {
		s.trigger(ctx, e, now)
	}

	s.mu.Lock()
	s.lastEnd = time.Now()
	s.mu.Unlock()

	return len(due)
}

func (s *Service) trigger(ctx context.Context, e *entry, now time.Time) {
	logger := s.logger.With("experiment", e.def.Name, "node", e.def.NodeName, "method", e.def.Method.String())

	run := &Run{TriggeredAt: now}

	if s.inShutdown.Load() {
		run.Error = "scheduler is shutting down"
	} else {
		job, err := s.starter.StartJob(ctx, e.def.NodeName, e.def.Method, e.def.Duration)
		if err != nil {
			run.Error = err.Error()

			logger.ErrorContext(ctx, "experiment start failed", "reason", err)
		} else {
			run.TaskID = job.ID

			logger.InfoContext(ctx, "experiment started", "taskID", job.ID)
		}
	}

	next, err := s.cron.NextAfter(e.def.Schedule, e.def.TZ, now)
	if err != nil {
		logger.ErrorContext(ctx, "compute next experiment run", "reason", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.lastRun = run

	if err != nil {
		e.next = parkedUntil

		return
	}

	e.next = next
}

// List returns every experiment ordered by next run.
func (s *Service) List() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Status, 0, len(s.entries))

	for _, e := range s.entries {
		st := Status{
			Name:      e.def.Name,
			Schedule:  e.def.Schedule,
			TZ:        e.def.TZ,
			NodeName:  e.def.NodeName,
			Method:    e.def.Method,
			Duration:  e.def.Duration,
			NextRunAt: e.next,
		}

		if e.lastRun != nil {
			run := *e.lastRun
			st.LastRun = &run
		}

		out = append(out, st)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextRunAt.Before(out[j].NextRunAt)
	})

	return out
}
