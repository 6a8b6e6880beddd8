package isolation_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
)

type fakeExecutor struct {
	mu         sync.Mutex
	commands   []string
	background []string
	failOn     map[string]domain.ExecResult
	stdout     map[string]string
	delay      map[string]time.Duration
	block      bool
	killed     int
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		failOn: make(map[string]domain.ExecResult),
		stdout: make(map[string]string),
		delay:  make(map[string]time.Duration),
	}
}

func (f *fakeExecutor) Run(ctx context.Context, host, command string) (domain.ExecResult, error) {
	f.mu.Lock()
	block := f.block

	var delay time.Duration

	for substr, d := range f.delay {
		if strings.Contains(command, substr) {
			delay = d
		}
	}
	f.mu.Unlock()

	if block {
		f.record(command)
		<-ctx.Done()

		return domain.ExecResult{}, ctx.Err()
	}

	// slow commands are recorded when they finish on the host
	if delay > 0 {
		select {
		case <-ctx.Done():
			return domain.ExecResult{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, command)

	for substr, res := range f.failOn {
		if strings.Contains(command, substr) {
			return res, nil
		}
	}

	for substr, out := range f.stdout {
		if strings.Contains(command, substr) {
			return domain.ExecResult{Stdout: out}, nil
		}
	}

	return domain.ExecResult{}, nil
}

func (f *fakeExecutor) record(command string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, command)
}

func (f *fakeExecutor) RunBackground(_ context.Context, _, command string) (domain.ProcessHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.background = append(f.background, command)

	return &fakeHandle{exec: f, done: make(chan struct{})}, nil
}

func (f *fakeExecutor) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.commands)
}

func (f *fakeExecutor) Background() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.background)
}

func (f *fakeExecutor) Count(substr string) int {
	n := 0

	for _, c := range f.Commands() {
		if strings.Contains(c, substr) {
			n++
		}
	}

	return n
}

type fakeHandle struct {
	exec *fakeExecutor
	once sync.Once
	done chan struct{}
}

func (h *fakeHandle) Wait() error {
	<-h.done

	return errors.New("killed")
}

func (h *fakeHandle) Kill() error {
	h.once.Do(func() {
		h.exec.mu.Lock()
		h.exec.killed++
		h.exec.mu.Unlock()
		close(h.done)
	})

	return nil
}

type podNotFoundError struct{}

func (podNotFoundError) Error() string { return "pod not found" }
func (podNotFoundError) IsNotFound()   {}

type fakeGateway struct {
	mu      sync.Mutex
	pods    []domain.Pod
	fail    map[string]error
	deleted []string
	listErr error
}

func (g *fakeGateway) ListPods(_ context.Context, filter domain.PodFilter) ([]domain.Pod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.listErr != nil {
		return nil, g.listErr
	}

	var out []domain.Pod

	for _, p := range g.pods {
		if filter.NodeName == "" || p.NodeName == filter.NodeName {
			out = append(out, p)
		}
	}

	return out, nil
}

func (g *fakeGateway) DeletePod(_ context.Context, namespace, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := namespace + "/" + name
	g.deleted = append(g.deleted, key)

	return g.fail[key]
}

func (g *fakeGateway) Deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.deleted)
}

type fakeResolver map[string]domain.NodeTarget

func (r fakeResolver) ResolveNode(name string) (domain.NodeTarget, error) {
	t, ok := r[name]
	if !ok {
		return domain.NodeTarget{}, fmt.Errorf("%w: node %s", domain.ErrNotFound, name)
	}

	return t, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []incident.Record
}

func (r *fakeRecorder) Record(
	_ context.Context,
	key domain.PodKey,
	incidentType domain.IncidentType,
	message string,
) incident.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := incident.Record{
		ID:        uint64(len(r.records) + 1),
		PodName:   key.Name,
		Namespace: key.Namespace,
		Type:      incidentType,
		Message:   message,
	}
	r.records = append(r.records, rec)

	return rec
}
