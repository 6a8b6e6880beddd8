// Package escalator turns pod failure alerts into incident records and restart or quarantine remediation.
package escalator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// remediationQueue holds the pending actions of one pod, oldest first.
type remediationQueue struct {
	actions []Action
}

// Service is the failure escalation state machine. Bookkeeping for one pod key is serialized;
// different keys proceed in parallel. Remediation runs after the key is released, on one
// worker per pod so actions keep the order in which they were decided.
type Service struct {
	logger              *slog.Logger
	store               *incident.Store
	remediator          Remediator
	threshold           int
	quarantineNamespace string
	tracer              trace.Tracer
	now                 func() time.Time

	mu       sync.Mutex
	locks    map[domain.PodKey]*keyLock
	counters map[domain.PodKey]int
	queues   map[domain.PodKey]*remediationQueue

	inShutdown atomic.Bool
	wg         sync.WaitGroup
}

// New creates a new escalator.
func New(
	logger *slog.Logger,
	store *incident.Store,
	remediator Remediator,
	threshold int,
	quarantineNamespace string,
) *Service {
	if threshold <= 0 {
		threshold = DefaultQuarantineThreshold
	}

	if quarantineNamespace == "" {
		quarantineNamespace = DefaultQuarantineNamespace
	}

	return &Service{
		logger:              logger.With("component", "escalator"),
		store:               store,
		remediator:          remediator,
		threshold:           threshold,
		quarantineNamespace: quarantineNamespace,
		tracer:              otel.Tracer(tracerName),
		now:                 time.Now,
		locks:               make(map[domain.PodKey]*keyLock),
		counters:            make(map[domain.PodKey]int),
		queues:              make(map[domain.PodKey]*remediationQueue),
	}
}

// Name returns the name of the escalator component
func (s *Service) Name() string {
	return "escalator"
}

// Shutdown stops accepting remediation and waits for queued remediations to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "escalator is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		s.logger.InfoContext(ctx, "escalator shut downed")
	}()

	// no enqueue can add to the wait group once this section is passed
	s.mu.Lock()
	pending := len(s.queues)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "shutting down escalator", "pendingRemediations", pending)

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before remediations finished: %w", ctx.Err())
	case <-done:
		return nil
	}
}

// Ingest records the alert, closing the previous open incident of the pod, and queues
// remediation. It returns before remediation runs. Remediation failures are logged and
// never undo the recorded incident.
func (s *Service) Ingest(ctx context.Context, alert Alert) (Outcome, error) {
	podName := strings.TrimSpace(alert.PodName)
	if podName == "" {
		return Outcome{}, fmt.Errorf("%w: pod name is required", domain.ErrValidation)
	}

	namespace := strings.TrimSpace(alert.Namespace)
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}

	at := alert.Time
	if at.IsZero() {
		at = s.now()
	}

	key := domain.PodKey{Namespace: namespace, Name: podName}

	ctx, span := s.tracer.Start(ctx, "escalator.Ingest", trace.WithAttributes(
		attribute.String("pod.namespace", namespace),
		attribute.String("pod.name", podName),
		attribute.String("incident.type", alert.Type.String()),
	))
	defer span.End()

	logger := s.logger.With("namespace", namespace, "pod", podName)

	unlock := s.lockKey(key)
	defer unlock()

	rec, closed := s.store.Open(key, alert.Type, alert.Message, at)
	metrics.RecordIncident(alert.Type.String())

	if closed != nil {
		metrics.RecordIncidentRecovered("alert")
		logger.DebugContext(ctx, "previous incident closed by new alert", "incidentID", closed.ID)
	}

	counter := s.incrementCounter(key)

	outcome := Outcome{
		Record:  rec,
		Closed:  closed,
		Counter: counter,
		Action:  ActionRestart,
	}

	if counter >= s.threshold {
		s.store.MarkQuarantined(rec.ID)
		s.resetCounter(key)

		outcome.Action = ActionQuarantine
		outcome.Quarantined = true
		outcome.Counter = 0
		outcome.Record.Quarantined = true
	}

	span.SetAttributes(
		attribute.Int("escalator.counter", outcome.Counter),
		attribute.String("escalator.action", string(outcome.Action)),
	)

	logger.InfoContext(ctx, "incident recorded",
		"incidentID", rec.ID,
		"type", alert.Type.String(),
		"failures", counter,
		"action", outcome.Action,
	)

	// enqueued while the key is held so queue order matches counter order
	s.enqueue(ctx, key, outcome.Action)

	return outcome, nil
}

// Recover closes the open incident of the pod. source labels the path that observed the recovery.
func (s *Service) Recover(
	ctx context.Context,
	key domain.PodKey,
	source string,
) (incident.Record, bool) {
	unlock := s.lockKey(key)
	defer unlock()

	rec, ok := s.store.CloseOpen(key, s.now())
	if !ok {
		return incident.Record{}, false
	}

	metrics.RecordIncidentRecovered(source)
	s.logger.InfoContext(ctx, "incident recovered",
		"namespace", key.Namespace,
		"pod", key.Name,
		"incidentID", rec.ID,
		"source", source,
	)

	return rec, true
}

// Record opens an incident without touching the failure counter or remediating.
func (s *Service) Record(
	ctx context.Context,
	key domain.PodKey,
	incidentType domain.IncidentType,
	message string,
) incident.Record {
	unlock := s.lockKey(key)
	defer unlock()

	rec, closed := s.store.Open(key, incidentType, message, s.now())
	metrics.RecordIncident(incidentType.String())

	if closed != nil {
		metrics.RecordIncidentRecovered(recordSource)
	}

	s.logger.InfoContext(ctx, "incident recorded",
		"namespace", key.Namespace,
		"pod", key.Name,
		"incidentID", rec.ID,
		"type", incidentType.String(),
	)

	return rec
}

// Counter returns the consecutive failure count of the pod.
func (s *Service) Counter(key domain.PodKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[key]
}

// ResetCounter clears the consecutive failure count of the pod.
func (s *Service) ResetCounter(key domain.PodKey) {
	unlock := s.lockKey(key)
	defer unlock()

	s.resetCounter(key)
}

// enqueue appends the action to the pod's queue and starts its worker when idle.
func (s *Service) enqueue(ctx context.Context, key domain.PodKey, action Action) {
	logger := s.logger.With("namespace", key.Namespace, "pod", key.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inShutdown.Load() {
		logger.WarnContext(ctx, "escalator is shutting down, skipping remediation", "action", action)

		return
	}

	q, ok := s.queues[key]
	if ok {
		q.actions = append(q.actions, action)

		return
	}

	q = &remediationQueue{actions: []Action{action}}
	s.queues[key] = q

	s.wg.Add(1)

	go s.runQueue(context.WithoutCancel(ctx), key, q, logger)
}

// runQueue remediates the pod until its queue is empty.
func (s *Service) runQueue(ctx context.Context, key domain.PodKey, q *remediationQueue, logger *slog.Logger) {
	defer s.wg.Done()

	for {
		s.mu.Lock()

		if len(q.actions) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()

			return
		}

		action := q.actions[0]
		q.actions = q.actions[1:]
		s.mu.Unlock()

		err := s.remediate(ctx, key, action)
		if err != nil {
			logger.ErrorContext(ctx, "remediation failed",
				"action", action,
				"reason", err,
			)
		}
	}
}

func (s *Service) remediate(ctx context.Context, key domain.PodKey, action Action) (err error) {
	ctx, span := s.tracer.Start(ctx, "escalator.remediate", trace.WithAttributes(
		attribute.String("pod.namespace", key.Namespace),
		attribute.String("pod.name", key.Name),
		attribute.String("escalator.action", string(action)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "remediation failed")
		}

		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, remediationTimeout)
	defer cancel()

	switch action {
	case ActionRestart:
		err = s.remediator.DeletePod(ctx, key.Namespace, key.Name)
	case ActionQuarantine:
		err = s.remediator.MovePodToNamespace(ctx, key.Namespace, key.Name, s.quarantineNamespace)
	default:
		err = fmt.Errorf("unknown remediation action %q", action)
	}

	metrics.RecordRemediation(string(action), err)

	if err != nil {
		return fmt.Errorf("%s pod %s: %w", action, key, err)
	}

	return nil
}

func (s *Service) incrementCounter(key domain.PodKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++

	return s.counters[key]
}

func (s *Service) resetCounter(key domain.PodKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
}

// lockKey acquires the per-key lock and returns its release function.
func (s *Service) lockKey(key domain.PodKey) func() {
	s.mu.Lock()

	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}

	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
	}
}
