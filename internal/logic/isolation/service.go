// Package isolation injects node faults and rolls them back after a fixed duration.
package isolation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

var errApplyPending = errors.New("isolation still applying when rollback timed out")

// Orchestrator runs isolation jobs. Status queries never wait on remote commands.
type Orchestrator struct {
	logger    *slog.Logger
	executor  domain.RemoteExecutor
	gateway   Gateway
	nodes     NodeResolver
	incidents IncidentRecorder
	opts      Options
	validate  *validator.Validate
	tracer    trace.Tracer
	rollbacks *rollbackScheduler

	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string

	handlesMu sync.Mutex
	handles   map[string]domain.ProcessHandle

	ready      chan struct{}
	readyOnce  sync.Once
	inShutdown atomic.Bool
	wg         sync.WaitGroup
}

// New creates a new isolation orchestrator.
func New(
	logger *slog.Logger,
	executor domain.RemoteExecutor,
	gateway Gateway,
	nodes NodeResolver,
	incidents IncidentRecorder,
	opts Options,
) *Orchestrator {
	opts = opts.withDefaults()
	logger = logger.With("component", "isolation")

	return &Orchestrator{
		logger:    logger,
		executor:  executor,
		gateway:   gateway,
		nodes:     nodes,
		incidents: incidents,
		opts:      opts,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		tracer:    otel.Tracer(tracerName),
		rollbacks: newRollbackScheduler(logger, opts.RollbackTimeout),
		jobs:      make(map[string]*Job),
		handles:   make(map[string]domain.ProcessHandle),
		ready:     make(chan struct{}),
	}
}

// Name returns the name of the orchestrator component
func (o *Orchestrator) Name() string {
	return "isolation-orchestrator"
}

// Start marks the orchestrator ready. Jobs run on their own goroutines.
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.inShutdown.Load() {
		o.logger.InfoContext(ctx, "isolation orchestrator is shutting down, skipping start")

		return nil
	}

	o.readyOnce.Do(func() { close(o.ready) })

	return nil
}

// Ready returns a channel that is closed when the orchestrator accepts jobs
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.ready
}

func (o *Orchestrator) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.ready:
		if o.inShutdown.Load() {
			return errors.New("isolation orchestrator is shutting down")
		}

		return nil
	default:
		return errors.New("isolation orchestrator is not ready")
	}
}

// Shutdown fires all pending rollbacks immediately, kills background stress processes
// and waits for running jobs to settle.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	if !o.inShutdown.CompareAndSwap(false, true) {
		o.logger.ErrorContext(ctx, "isolation orchestrator is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		o.logger.InfoContext(ctx, "isolation orchestrator shut downed")
	}()

	pending := o.rollbacks.pending()
	o.logger.InfoContext(ctx, "shutting down isolation orchestrator", "pendingRollbacks", len(pending))

	flushErr := o.rollbacks.flush(ctx)
	o.killBackground(ctx)

	done := make(chan struct{})

	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before isolation jobs settled: %w", ctx.Err())
	case <-done:
	}

	if flushErr != nil {
		return fmt.Errorf("flush rollbacks: %w", flushErr)
	}

	return nil
}

// StartJob validates the request, creates an Idle job and executes it asynchronously.
func (o *Orchestrator) StartJob(
	ctx context.Context,
	nodeName string,
	method domain.IsolationMethod,
	duration int,
) (Job, error) {
	if o.inShutdown.Load() {
		return Job{}, fmt.Errorf("%w: orchestrator is shutting down", domain.ErrInvalidState)
	}

	nodeName = strings.TrimSpace(nodeName)

	err := o.validate.StructCtx(ctx, startRequest{
		NodeName: nodeName,
		Method:   method.String(),
		Duration: duration,
	})
	if err != nil {
		return Job{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	target, err := o.nodes.ResolveNode(nodeName)
	if err != nil {
		return Job{}, fmt.Errorf("resolve node %s: %w", nodeName, err)
	}

	job := &Job{
		ID:        uuid.NewString(),
		NodeName:  nodeName,
		Method:    method,
		Duration:  duration,
		Status:    domain.JobIdle,
		Message:   "scheduled",
		CreatedAt: time.Now(),
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.order = append(o.order, job.ID)
	snapshot := job.snapshot()
	o.mu.Unlock()

	o.logger.InfoContext(ctx, "isolation job created",
		"taskID", job.ID,
		"node", nodeName,
		"method", method.String(),
		"duration", duration,
	)

	o.wg.Add(1)

	go o.execute(context.WithoutCancel(ctx), snapshot, target)

	return snapshot, nil
}

// Stop flags a job as Stopping. It neither interrupts remote commands nor cancels the rollback.
func (o *Orchestrator) Stop(ctx context.Context, id string) (Job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}

	if !job.Status.Stoppable() {
		return Job{}, fmt.Errorf("%w: task %s is %s", domain.ErrInvalidState, id, job.Status)
	}

	job.Status = domain.JobStopping
	job.Message = "stop requested; scheduled rollback still runs"

	o.logger.InfoContext(ctx, "isolation job stop requested", "taskID", id)

	return job.snapshot(), nil
}

// Status returns a snapshot of the job.
func (o *Orchestrator) Status(id string) (Job, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	job, ok := o.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}

	return job.snapshot(), nil
}

// List returns snapshots of all jobs in creation order.
func (o *Orchestrator) List() []Job {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Job, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.jobs[id].snapshot())
	}

	return out
}

// PendingRollbacks lists rollback timers that have not fired yet.
func (o *Orchestrator) PendingRollbacks() []PendingRollback {
	return o.rollbacks.pending()
}

// EvictPod deletes a pod right away and records an eviction incident for it.
func (o *Orchestrator) EvictPod(
	ctx context.Context,
	namespace,
	name,
	reason string,
) (incident.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return incident.Record{}, fmt.Errorf("%w: pod name is required", domain.ErrValidation)
	}

	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}

	err := o.gateway.DeletePod(ctx, namespace, name)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			return incident.Record{}, fmt.Errorf("%w: pod %s/%s", domain.ErrNotFound, namespace, name)
		}

		return incident.Record{}, fmt.Errorf("evict pod %s/%s: %w", namespace, name, err)
	}

	if reason == "" {
		reason = "manual eviction"
	}

	key := domain.PodKey{Namespace: namespace, Name: name}

	return o.incidents.Record(ctx, key, domain.IncidentEviction, reason), nil
}

// execute is the job routine. The rollback timer is armed before the primary action runs.
func (o *Orchestrator) execute(ctx context.Context, job Job, target domain.NodeTarget) {
	defer o.wg.Done()

	ctx, span := o.tracer.Start(ctx, "isolation.execute", trace.WithAttributes(
		attribute.String("isolation.task_id", job.ID),
		attribute.String("isolation.node", job.NodeName),
		attribute.String("isolation.method", job.Method.String()),
		attribute.Int("isolation.duration", job.Duration),
	))
	defer span.End()

	logger := o.logger.With("taskID", job.ID, "node", job.NodeName, "method", job.Method.String())

	inj := o.newInjector(job, target)

	// applied is closed once the primary action has returned, successful or not.
	// The rollback waits on it so it never undoes a half-finished action.
	applied := make(chan struct{})

	var (
		rollback    rollbackFunc
		rollbackErr error
	)

	if rollbackMethod(job.Method) {
		rollback = func(ctx context.Context) error {
			select {
			case <-applied:
			case <-ctx.Done():
				rollbackErr = fmt.Errorf("%w: %w", errApplyPending, ctx.Err())

				return rollbackErr
			}

			rollbackErr = inj.rollback(ctx)

			return rollbackErr
		}
	}

	rolledBack, fireAt := o.rollbacks.schedule(job, time.Duration(job.Duration)*o.opts.DurationUnit, rollback)
	o.setRunning(job.ID, fireAt)

	logger.InfoContext(ctx, "isolation job running", "rollbackAt", fireAt)

	msg, err := inj.apply(ctx)
	close(applied)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "isolation failed")
		logger.ErrorContext(ctx, "isolation failed", "reason", err)
		o.finish(job, domain.JobFailed, err.Error())
	} else {
		o.setMessage(job.ID, msg)
		logger.InfoContext(ctx, "isolation applied", "detail", msg)
	}

	<-rolledBack

	if errors.Is(rollbackErr, errApplyPending) {
		logger.WarnContext(ctx, "rollback timed out before isolation was applied, rolling back now")

		lateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.RollbackTimeout)
		lateErr := inj.rollback(lateCtx)
		cancel()

		metrics.RecordRollback(job.Method.String(), lateErr)

		if lateErr != nil {
			span.RecordError(lateErr)
			logger.ErrorContext(ctx, "late rollback failed", "reason", lateErr)
		}
	}

	if err != nil {
		return
	}

	o.finish(job, domain.JobCompleted, msg)
}

func (o *Orchestrator) setRunning(id string, rollbackAt time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job := o.jobs[id]
	now := time.Now()
	job.StartedAt = &now
	job.RollbackAt = &rollbackAt

	// a stop request that arrived while Idle is kept
	if job.Status == domain.JobIdle {
		job.Status = domain.JobRunning
		job.Message = "running"
	}
}

func (o *Orchestrator) setMessage(id, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job := o.jobs[id]
	if job.Status == domain.JobRunning {
		job.Message = msg
	}
}

func (o *Orchestrator) finish(job Job, status domain.JobStatus, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	current := o.jobs[job.ID]
	if current.Status.Terminal() {
		return
	}

	now := time.Now()
	current.Status = status
	current.CompletedAt = &now
	current.Message = msg

	metrics.RecordIsolationJob(job.Method.String(), status.String())
}

// run executes a command with the per-command timeout and maps failures to the error taxonomy.
func (o *Orchestrator) run(ctx context.Context, host, command string) (domain.ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.CommandTimeout)
	defer cancel()

	res, err := o.executor.Run(ctx, host, command)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: %w: %q on %s after %s",
				domain.ErrRemoteExecution, domain.ErrTimeout, command, host, o.opts.CommandTimeout)
		}

		if errors.Is(err, domain.ErrRemoteExecution) {
			return res, fmt.Errorf("%q on %s: %w", command, host, err)
		}

		return res, fmt.Errorf("%w: %q on %s: %w", domain.ErrRemoteExecution, command, host, err)
	}

	if res.ExitCode != 0 {
		return res, fmt.Errorf("%w: %q on %s exited with code %d: %s",
			domain.ErrRemoteExecution, command, host, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return res, nil
}

func (o *Orchestrator) startBackground(ctx context.Context, jobID, host, command string) error {
	handle, err := o.executor.RunBackground(context.WithoutCancel(ctx), host, command)
	if err != nil {
		return fmt.Errorf("%w: %q on %s: %w", domain.ErrRemoteExecution, command, host, err)
	}

	o.handlesMu.Lock()
	o.handles[jobID] = handle
	o.handlesMu.Unlock()

	go func() {
		waitErr := handle.Wait()

		o.handlesMu.Lock()
		delete(o.handles, jobID)
		o.handlesMu.Unlock()

		if waitErr != nil {
			o.logger.WarnContext(ctx, "background process exited with error",
				"taskID", jobID,
				"host", host,
				"reason", waitErr,
			)

			return
		}

		o.logger.InfoContext(ctx, "background process exited", "taskID", jobID, "host", host)
	}()

	return nil
}

func (o *Orchestrator) killBackground(ctx context.Context) {
	o.handlesMu.Lock()
	handles := maps.Clone(o.handles)
	o.handlesMu.Unlock()

	for id, h := range handles {
		if err := h.Kill(); err != nil {
			o.logger.ErrorContext(ctx, "kill background process failed", "taskID", id, "reason", err)
		}
	}
}
