// Package jsonl appends migration events to a JSON lines file.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillcoder/nodechaos-controller/internal/logic/migration"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type line struct {
	ID         string          `json:"id"`
	RecordedAt time.Time       `json:"recorded_at"`
	Event      migration.Event `json:"event"`
}

// Sink writes one JSON object per migration event.
type Sink struct {
	logger *slog.Logger
	path   string

	mu     sync.Mutex
	file   *os.File
	closed bool
}

var _ migration.EventSink = (*Sink)(nil)

// Open creates the parent directory and opens path for appending.
func Open(logger *slog.Logger, path string) (*Sink, error) {
	err := os.MkdirAll(filepath.Dir(path), dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create events dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}

	logger.Info("migration events file opened", "path", path)

	return &Sink{
		logger: logger.With("component", "jsonl-sink"),
		path:   path,
		file:   file,
	}, nil
}

func (s *Sink) Name() string {
	return "migration-events-sink"
}

func (s *Sink) Write(_ context.Context, event migration.Event) error {
	data, err := json.Marshal(line{
		ID:         uuid.NewString(),
		RecordedAt: time.Now().UTC(),
		Event:      event,
	})
	if err != nil {
		return fmt.Errorf("marshal migration event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("write migration event: %w", os.ErrClosed)
	}

	_, err = s.file.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("write migration event: %w", err)
	}

	return nil
}

// Shutdown syncs and closes the file.
func (s *Sink) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	err := s.file.Sync()
	if err != nil {
		s.logger.WarnContext(ctx, "sync events file", "reason", err)
	}

	err = s.file.Close()
	if err != nil {
		return fmt.Errorf("close events file: %w", err)
	}

	s.logger.InfoContext(ctx, "migration events file closed", "path", s.path)

	return nil
}
