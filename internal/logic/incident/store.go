// Package incident keeps the bounded incident timeline of pods.
package incident

import (
	"sync"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/ring"
)

// Store is a bounded FIFO log of incident records with an index of open records per pod.
// At most one record per pod key is open at any time.
type Store struct {
	mu      sync.RWMutex
	records *ring.Buffer[*Record]
	open    map[domain.PodKey]*Record
	byID    map[uint64]*Record
	nextID  uint64
}

// New creates a store keeping at most capacity records.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		records: ring.New[*Record](capacity),
		open:    make(map[domain.PodKey]*Record),
		byID:    make(map[uint64]*Record, capacity),
	}
}

// Capacity returns the maximum number of retained records.
func (s *Store) Capacity() int {
	return s.records.Cap()
}

// Open closes the currently open record of the pod, if any, and appends a new open record.
// The closed record, when there was one, is returned as the second value.
func (s *Store) Open(
	key domain.PodKey,
	incidentType domain.IncidentType,
	message string,
	at time.Time,
) (Record, *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := s.closeOpenLocked(key, at)

	s.nextID++
	rec := &Record{
		ID:        s.nextID,
		PodName:   key.Name,
		Namespace: key.Namespace,
		Type:      incidentType,
		Message:   message,
		StartTime: at,
	}

	if old, evicted := s.records.Push(rec); evicted {
		delete(s.byID, old.ID)

		if s.open[old.Key()] == old {
			delete(s.open, old.Key())
		}
	}

	s.byID[rec.ID] = rec
	s.open[key] = rec

	return rec.snapshot(), closed
}

// CloseOpen sets the recovery time of the open record of the pod.
// It returns false when the pod has no open record.
func (s *Store) CloseOpen(key domain.PodKey, at time.Time) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := s.closeOpenLocked(key, at)
	if closed == nil {
		return Record{}, false
	}

	return *closed, true
}

func (s *Store) closeOpenLocked(key domain.PodKey, at time.Time) *Record {
	rec, ok := s.open[key]
	if !ok {
		return nil
	}

	delete(s.open, key)

	ts := at
	rec.RecoveryTime = &ts

	out := rec.snapshot()

	return &out
}

// MarkQuarantined flags the record with the given id.
func (s *Store) MarkQuarantined(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return false
	}

	rec.Quarantined = true

	return true
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id uint64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}

	return rec.snapshot(), true
}

// OpenRecord returns the open record of the pod.
func (s *Store) OpenRecord(key domain.PodKey) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.open[key]
	if !ok {
		return Record{}, false
	}

	return rec.snapshot(), true
}

// Recent returns up to limit records, newest first. limit <= 0 returns all records.
func (s *Store) Recent(limit int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	newest := s.records.Newest(limit)

	out := make([]Record, 0, len(newest))
	for _, rec := range newest {
		out = append(out, rec.snapshot())
	}

	return out
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records.Len()
}

// Stats computes counters over the retained records.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		ByType: make(map[string]int),
	}

	var recoverySum time.Duration

	for _, rec := range s.records.Items() {
		stats.Total++
		stats.ByType[rec.Type.String()]++

		if rec.Quarantined {
			stats.Quarantined++
		}

		if rec.Open() {
			stats.Open++

			continue
		}

		stats.Recovered++
		recoverySum += rec.RecoveryTime.Sub(rec.StartTime)
	}

	if stats.Recovered > 0 {
		stats.MeanRecoveryTime = recoverySum / time.Duration(stats.Recovered)
	}

	return stats
}
