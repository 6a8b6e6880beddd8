package pinger

import (
	"slices"
	"sync"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/infra/ring"
)

const (
	// SuccessLatencyBufferSize is the number of successful ping latencies to track
	SuccessLatencyBufferSize = 100

	// ErrorLatencyBufferSize is the number of error ping latencies to track
	ErrorLatencyBufferSize = 10

	percentileMax = 100.0
)

// ErrorSnapshot represents a snapshot of an error occurrence
type ErrorSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error"`
}

// stats tracks the ping history of a single component. Guarded by mu.
type stats struct {
	mu                sync.RWMutex
	lastRun           time.Time
	lastError         error
	lastErrorSnapshot *ErrorSnapshot
	successLatencies  *ring.Buffer[time.Duration]
	errorLatencies    *ring.Buffer[time.Duration]
}

func newStats() *stats {
	return &stats{
		successLatencies: ring.New[time.Duration](SuccessLatencyBufferSize),
		errorLatencies:   ring.New[time.Duration](ErrorLatencyBufferSize),
	}
}

func (s *stats) record(at time.Time, latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRun = at

	if err != nil {
		s.lastError = err
		s.lastErrorSnapshot = &ErrorSnapshot{
			Timestamp: at,
			Latency:   latency,
			Error:     err.Error(),
		}
		s.errorLatencies.Push(latency)

		return
	}

	s.lastError = nil
	s.successLatencies.Push(latency)
}

// LatencyMetrics contains calculated latency statistics
type LatencyMetrics struct {
	Count   int           `json:"count"`
	Median  time.Duration `json:"median"`
	Average time.Duration `json:"average"`
	P90     time.Duration `json:"p90"`
	P99     time.Duration `json:"p99"`
}

// Statistics contains computed statistics for a pinger
type Statistics struct {
	IsReady           bool           `json:"ready"`
	IsHealthy         bool           `json:"healthy"`
	LastRun           time.Time      `json:"lastRun"`
	LastError         string         `json:"lastError,omitempty"`
	LastErrorSnapshot *ErrorSnapshot `json:"lastErrorSnapshot,omitempty"`
	SuccessLatencies  LatencyMetrics `json:"successLatencies"`
	ErrorLatencies    LatencyMetrics `json:"errorLatencies"`
}

func (s *stats) statistics(info *pingerInfo) *Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Statistics{
		IsReady:          !info.readyCritical || s.lastError == nil,
		IsHealthy:        !info.healthCritical || s.lastError == nil,
		LastRun:          s.lastRun,
		SuccessLatencies: calculateLatencyMetrics(s.successLatencies.Items()),
		ErrorLatencies:   calculateLatencyMetrics(s.errorLatencies.Items()),
	}

	if s.lastError != nil {
		out.LastError = s.lastError.Error()
	}

	if s.lastErrorSnapshot != nil {
		snapshot := *s.lastErrorSnapshot
		out.LastErrorSnapshot = &snapshot
	}

	return out
}

// percentile uses the nearest-rank method on sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	if p >= percentileMax {
		return sorted[len(sorted)-1]
	}

	if p <= 0 {
		return sorted[0]
	}

	rank := int(p/percentileMax*float64(len(sorted))+0.999999) - 1
	rank = max(0, min(rank, len(sorted)-1))

	return sorted[rank]
}

func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return sorted[n/2]
}

func calculateLatencyMetrics(latencies []time.Duration) LatencyMetrics {
	if len(latencies) == 0 {
		return LatencyMetrics{}
	}

	slices.Sort(latencies)

	var sum time.Duration
	for _, d := range latencies {
		sum += d
	}

	return LatencyMetrics{
		Count:   len(latencies),
		Median:  median(latencies),
		Average: sum / time.Duration(len(latencies)),
		P90:     percentile(latencies, 90),
		P99:     percentile(latencies, 99),
	}
}
