// Package pinger periodically pings registered components and keeps their health history.
package pinger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/infra/shutdown"
)

const defaultPingTimeout = time.Second

// Optional interfaces a pinger may implement to tune how it is checked.
type readyCriticalPinger interface {
	PingerReadyCritical() bool
}

type healthCriticalPinger interface {
	PingerCritical() bool
}

type timeoutPinger interface {
	PingerTimeout() time.Duration
}

type pingerInfo struct {
	name           string
	ping           func(ctx context.Context) error
	readyCritical  bool
	healthCritical bool
	timeout        time.Duration
	stats          *stats
}

// Service manages health check pingers and tracks their statistics
type Service struct {
	logger     *slog.Logger
	interval   time.Duration
	mu         sync.RWMutex
	pingers    map[string]*pingerInfo
	ready      chan struct{}
	inShutdown atomic.Bool
	doneCh     chan struct{}
}

// New creates a new pinger service with the specified interval
func New(
	logger *slog.Logger,
	interval time.Duration,
) *Service {
	return &Service{
		logger:   logger.With("component", "pinger"),
		interval: interval,
		pingers:  make(map[string]*pingerInfo),
		ready:    make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

var _ shutdown.Shutdowner = (*Service)(nil)

// Name returns the name of the pinger service component
func (s *Service) Name() string {
	return "pinger-service"
}

// Register registers a pinger under its name
func (s *Service) Register(p Pinger) error {
	if p == nil {
		return fmt.Errorf("register pinger: pinger cannot be nil")
	}

	info := &pingerInfo{
		name:           p.Name(),
		ping:           p.Ping,
		readyCritical:  true,
		healthCritical: true,
		timeout:        defaultPingTimeout,
		stats:          newStats(),
	}

	if rc, ok := p.(readyCriticalPinger); ok {
		info.readyCritical = rc.PingerReadyCritical()
	}

	if hc, ok := p.(healthCriticalPinger); ok {
		info.healthCritical = hc.PingerCritical()
	}

	if tp, ok := p.(timeoutPinger); ok && tp.PingerTimeout() > 0 {
		info.timeout = tp.PingerTimeout()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pingers[info.name]; exists {
		return fmt.Errorf("register pinger %s: %w", info.name, ErrPingerAlreadyRegistered)
	}

	s.pingers[info.name] = info

	s.logger.Info("pinger registered",
		"name", info.name,
		"readyCritical", info.readyCritical,
		"healthCritical", info.healthCritical,
		"timeout", info.timeout,
	)

	return nil
}

// Start runs the first ping round and then pings every interval until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "pinger service is shutting down, skipping start")

		return nil
	}

	go s.run(ctx)

	return nil
}

// Ready returns a channel that is closed after the first ping round
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Shutdown waits for the ping loop to exit
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "pinger service is already shutting down, skipping shutdown")

		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before pinger loop exited: %w", ctx.Err())
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "pinger service shut downed")
	}

	return nil
}

// GetStats returns statistics for a specific pinger
func (s *Service) GetStats(name string) (*Statistics, error) {
	s.mu.RLock()
	info, ok := s.pingers[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("get stats: %w: %s", ErrPingerNotFound, name)
	}

	return info.stats.statistics(info), nil
}

// GetAllStats returns a copy of all pinger statistics
func (s *Service) GetAllStats() map[string]*Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Statistics, len(s.pingers))
	for name, info := range s.pingers {
		out[name] = info.stats.statistics(info)
	}

	return out
}

func (s *Service) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.PingAll(ctx)
	close(s.ready)

	for {
		if s.inShutdown.Load() {
			s.logger.InfoContext(ctx, "terminating pinger loop")

			return
		}

		select {
		case <-ticker.C:
			s.PingAll(ctx)
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "terminating pinger loop")

			return
		}
	}
}

// PingAll pings every registered component in parallel and waits for all of them.
func (s *Service) PingAll(ctx context.Context) {
	s.mu.RLock()
	infos := make([]*pingerInfo, 0, len(s.pingers))

	for _, info := range s.pingers {
		infos = append(infos, info)
	}

	s.mu.RUnlock()

	var g errgroup.Group

	for _, info := range infos {
		g.Go(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, info.timeout)
			defer cancel()

			start := time.Now()
			err := info.ping(pingCtx)
			latency := time.Since(start)

			info.stats.record(start, latency, err)
			metrics.RecordPing(info.name, latency.Seconds(), err)

			if err != nil {
				s.logger.DebugContext(ctx, "pinger error", "name", info.name, "latency", latency, "reason", err)
			}

			// ping failures are recorded, never propagated
			return nil
		})
	}

	_ = g.Wait()
}
