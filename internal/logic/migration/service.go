// Package migration polls pod placement and reports pods that changed nodes.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/infra/ring"
)

type Service struct {
	logger      *slog.Logger
	lister      PodLister
	recoverer   Recoverer
	sink        EventSink
	namespace   string
	interval    time.Duration
	historySize int
	retention   uint64
	now         func() time.Time

	ready      chan struct{}
	doneCh     chan struct{}
	inShutdown atomic.Bool

	mu          sync.RWMutex
	history     map[domain.PodKey]*ring.Buffer[Placement]
	lastSeen    map[domain.PodKey]uint64
	ticks       uint64
	events      []Event
	snapshot    []domain.Pod
	observedAt  time.Time
	lastTickEnd time.Time
}

// New creates a new migration monitor. sink may be nil.
func New(
	logger *slog.Logger,
	lister PodLister,
	recoverer Recoverer,
	sink EventSink,
	namespace string,
	interval time.Duration,
) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Service{
		logger:      logger.With("component", "migration-monitor"),
		lister:      lister,
		recoverer:   recoverer,
		sink:        sink,
		namespace:   namespace,
		interval:    interval,
		historySize: DefaultHistorySize,
		retention:   DefaultHistoryRetention,
		now:         time.Now,
		ready:       make(chan struct{}),
		doneCh:      make(chan struct{}),
		history:     make(map[domain.PodKey]*ring.Buffer[Placement]),
		lastSeen:    make(map[domain.PodKey]uint64),
	}
}

// Name returns the name of the monitor component
func (s *Service) Name() string {
	return "migration-monitor"
}

func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "migration monitor is shutting down, skipping start")

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
		lastTickAge := s.getLastTickAge()
		if lastTickAge > 2*s.interval {
			return fmt.Errorf("last monitor tick was too long ago: %s", lastTickAge.Round(time.Second).String())
		}

		return nil
	default:
		return errors.New("migration monitor is not ready")
	}
}

func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "migration monitor is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		s.logger.InfoContext(ctx, "migration monitor shut downed")
	}()

	s.logger.InfoContext(ctx, "shutting down migration monitor")

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before monitor loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "monitor loop exited")
	}

	return nil
}

// RunCommand ticks on the configured interval until ctx is done.
func (s *Service) RunCommand(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("monitor", "RunCommand")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	close(s.ready)

	for {
		if s.inShutdown.Load() {
			logger.InfoContext(ctx, "terminating migration monitor loop")

			return
		}

		_, err := s.Tick(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "monitor tick skipped", "reason", err)
		}

		s.setLastTickEnd()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.InfoContext(ctx, "terminating migration monitor loop")

			return
		}
	}
}

// Tick observes all pods once, records their placement and returns the migrations it detected.
// When the cluster cannot be listed nothing is recorded.
func (s *Service) Tick(ctx context.Context) ([]Event, error) {
	pods, err := s.lister.ListPods(ctx, domain.PodFilter{Namespace: s.namespace})
	if err != nil {
		metrics.RecordMonitorTickFailure()

		return nil, fmt.Errorf("list pods: %w", err)
	}

	now := s.now()
	events := s.observe(pods, now)

	for i := range pods {
		if pods[i].Phase != domain.PodPhaseRunning {
			continue
		}

		s.recoverer.Recover(ctx, pods[i].Key(), recoverySource)
	}

	if len(events) > 0 {
		metrics.RecordMigrations(len(events))
	}

	for i := range events {
		s.logger.InfoContext(ctx, "pod migrated",
			"namespace", events[i].Namespace,
			"pod", events[i].PodName,
			"from", events[i].FromNode,
			"to", events[i].ToNode,
		)

		if s.sink == nil {
			continue
		}

		if err := s.sink.Write(ctx, events[i]); err != nil {
			s.logger.ErrorContext(ctx, "write migration event", "reason", err)
		}
	}

	s.logger.DebugContext(ctx, "monitor tick done", "pods", len(pods), "migrations", len(events))

	return events, nil
}

func (s *Service) observe(pods []domain.Pod, now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event

	s.ticks++

	for i := range pods {
		pod := &pods[i]
		key := pod.Key()
		node := pod.Node()

		s.lastSeen[key] = s.ticks

		hist, ok := s.history[key]
		if !ok {
			hist = ring.New[Placement](s.historySize)
			s.history[key] = hist
		}

		if last, ok := hist.Last(); ok && migrated(last.Node, node) {
			events = append(events, Event{
				PodName:   pod.Name,
				Namespace: pod.Namespace,
				FromNode:  last.Node,
				ToNode:    node,
				Timestamp: now,
				Phase:     pod.Phase,
				Ready:     pod.Ready,
			})
		}

		hist.Push(Placement{
			Timestamp:    now,
			Node:         node,
			Phase:        pod.Phase,
			Ready:        pod.Ready,
			RestartCount: pod.RestartCount,
		})
	}

	s.pruneHistory()

	s.events = append(s.events, events...)
	s.snapshot = pods
	s.observedAt = now

	return events
}

// pruneHistory drops pods that have not been listed for the retention window.
func (s *Service) pruneHistory() {
	for key, seen := range s.lastSeen {
		if s.ticks-seen < s.retention {
			continue
		}

		delete(s.lastSeen, key)
		delete(s.history, key)
	}
}

func migrated(from, to string) bool {
	return from != to && from != domain.UnscheduledNode && to != domain.UnscheduledNode
}

// Report exports every recorded migration event.
func (s *Service) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := Report{
		TotalMigrations: len(s.events),
		MigrationEvents: slices.Clone(s.events),
		FromNodeCounts:  make(map[string]int),
		ToNodeCounts:    make(map[string]int),
		GeneratedAt:     s.now(),
	}

	if report.MigrationEvents == nil {
		report.MigrationEvents = []Event{}
	}

	for i := range s.events {
		report.FromNodeCounts[s.events[i].FromNode]++
		report.ToNodeCounts[s.events[i].ToNode]++
	}

	return report
}

// Distribution summarizes pods per node as of the latest successful tick.
func (s *Service) Distribution() Distribution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dist := Distribution{
		Nodes:       make(map[string]NodeLoad),
		Unscheduled: []string{},
		ObservedAt:  s.observedAt,
		GeneratedAt: s.now(),
	}

	for i := range s.snapshot {
		pod := &s.snapshot[i]

		node := pod.Node()
		if node == domain.UnscheduledNode {
			dist.Unscheduled = append(dist.Unscheduled, pod.Key().String())

			continue
		}

		load := dist.Nodes[node]
		load.Pods++

		if pod.Ready {
			load.Ready++
		}

		dist.Nodes[node] = load
	}

	return dist
}

// History returns the placement ring of the pod, oldest first.
func (s *Service) History(key domain.PodKey) ([]Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hist, ok := s.history[key]
	if !ok {
		return nil, fmt.Errorf("%w: no placement history for pod %s", domain.ErrNotFound, key)
	}

	return hist.Items(), nil
}

func (s *Service) getLastTickAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return time.Since(s.lastTickEnd)
}

func (s *Service) setLastTickEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTickEnd = time.Now()
}
