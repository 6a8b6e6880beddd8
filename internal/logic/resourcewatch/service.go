// Package resourcewatch raises resource threshold alerts for pods whose memory usage exceeds a limit.
package resourcewatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
)

// Config holds the watcher settings.
type Config struct {
	Interval         time.Duration
	LabelSelector    string
	AnnotationKey    string
	DefaultThreshold string
	MinPodAge        time.Duration
}

type Service struct {
	logger           *slog.Logger
	repo             Repository
	ingester         AlertIngester
	interval         time.Duration
	labelSelector    string
	annotationKey    string
	defaultThreshold string
	minPodAge        time.Duration
	now              func() time.Time

	ready          chan struct{}
	doneCh         chan struct{}
	inShutdown     atomic.Bool
	mu             sync.RWMutex
	lastWatchEndAt time.Time
}

// New creates a new resource watcher.
func New(
	logger *slog.Logger,
	repo Repository,
	ingester AlertIngester,
	cfg Config,
) *Service {
	if cfg.LabelSelector == "" {
		cfg.LabelSelector = DefaultPodLabelSelector
	}

	if cfg.AnnotationKey == "" {
		cfg.AnnotationKey = DefaultAnnotationMemoryThresholdKey
	}

	return &Service{
		logger:           logger.With("component", "resource-watch"),
		repo:             repo,
		ingester:         ingester,
		interval:         cfg.Interval,
		labelSelector:    cfg.LabelSelector,
		annotationKey:    cfg.AnnotationKey,
		defaultThreshold: cfg.DefaultThreshold,
		minPodAge:        cfg.MinPodAge,
		now:              time.Now,
		ready:            make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "resource watcher is shutting down, skipping start")

		return nil
	}

	go s.RunCommand(ctx)

	return nil
}

// Name returns the name of the watcher component
func (s *Service) Name() string {
	return "resource-watcher"
}

func (s *Service) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		lastWatchAge := s.getLastWatchAge()
		if lastWatchAge > 2*s.interval {
			return fmt.Errorf("last resource watch was too long ago: %s", lastWatchAge.Round(time.Second).String())
		}

		return nil
	default:
		return errors.New("resource watcher is not ready")
	}
}

// PingerReadyCritical keeps readiness independent of the optional metrics API.
func (s *Service) PingerReadyCritical() bool {
	return false
}

func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "resource watcher is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		s.logger.InfoContext(ctx, "resource watcher shut downed")
	}()

	s.logger.InfoContext(ctx, "shutting down resource watcher")

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before watcher loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "watcher loop exited")
	}

	return nil
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// RunCommand runs the watcher in a loop with the configured interval.
func (s *Service) RunCommand(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("watcher", "RunCommand")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	close(s.ready)

	for {
		err := s.WatchCommand(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "resource watch error", "reason", err)
		}

		s.setLastWatchEnd()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.InfoContext(ctx, "terminating resource watcher loop")

			return
		}
	}
}

// WatchCommand checks every watched pod once.
func (s *Service) WatchCommand(ctx context.Context) error {
	logger := s.logger.With("watcher", "WatchCommand")

	pods, err := s.repo.ListPods(ctx, domain.PodFilter{LabelSelector: s.labelSelector})
	if err != nil {
		return fmt.Errorf("list pods: %w", err)
	}

	logger.DebugContext(ctx, "starting to process pods", "count", len(pods))

	alerted := 0

	for i := range pods {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "context done, stopping resource watch")

			return nil
		default:
		}

		ok, err := s.processPod(ctx, logger, pods[i])
		if err != nil {
			logger.ErrorContext(ctx, "process pod error",
				"pod", pods[i].Name,
				"namespace", pods[i].Namespace,
				"reason", err,
			)

			continue
		}

		if ok {
			alerted++
		}
	}

	logger.InfoContext(ctx, "resource watch done", "count", len(pods), "alerted", alerted)

	return nil
}

func (s *Service) processPod(
	ctx context.Context,
	logger *slog.Logger,
	pod domain.Pod,
) (bool, error) {
	logger = logger.With("pod", pod.Name, "namespace", pod.Namespace, "watcher", "processPod")

	threshold, err := s.resolveMemoryThreshold(ctx, logger, pod)
	if err != nil {
		return false, err
	}

	logger = logger.With("memoryThreshold", threshold.String())

	podMetrics, err := s.repo.PodMetrics(ctx, pod.Namespace, pod.Name)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			logger.WarnContext(ctx, "pod metrics not found, skipping")

			return false, nil
		}

		return false, fmt.Errorf("%w: %w", ErrGetPodMetrics, err)
	}

	if podMetrics.MemoryUsage == nil {
		logger.WarnContext(ctx, "pod memory usage is nil, skipping")

		return false, nil
	}

	if podMetrics.MemoryUsage.Cmp(threshold) <= 0 {
		return false, nil
	}

	if s.minPodAge > 0 && !pod.CreatedAt.IsZero() {
		age := s.now().Sub(pod.CreatedAt)
		if age < s.minPodAge {
			metrics.RecordAlertSkippedPodTooYoung(pod.Namespace, pod.Name)
			logger.WarnContext(ctx, "pod over threshold but too young, skipping",
				"age", age.Round(time.Second).String(),
				"minPodAge", s.minPodAge.String(),
			)

			return false, nil
		}
	}

	_, err = s.ingester.Ingest(ctx, escalator.Alert{
		PodName:   pod.Name,
		Namespace: pod.Namespace,
		Type:      domain.IncidentResourceThreshold,
		Message: fmt.Sprintf("memory usage %s exceeds threshold %s",
			podMetrics.MemoryUsage.String(), threshold.String()),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIngestAlert, err)
	}

	logger.InfoContext(ctx, "resource alert raised", "memoryUsage", podMetrics.MemoryUsage.String())

	return true, nil
}

func (s *Service) getLastWatchAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return time.Since(s.lastWatchEndAt)
}

func (s *Service) setLastWatchEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastWatchEndAt = time.Now()
}
