package isolation_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
)

const (
	waitFor = 3 * time.Second
	tick    = 2 * time.Millisecond
)

var testNodes = fakeResolver{
	"worker1": {
		Name:                  "worker1",
		Host:                  "10.0.0.21",
		ControlPlaneAddresses: []string{"10.0.0.10", "10.0.0.5"},
		APIServerPort:         6443,
	},
}

type fixture struct {
	orch     *isolation.Orchestrator
	exec     *fakeExecutor
	gateway  *fakeGateway
	recorder *fakeRecorder
}

func newFixture(t *testing.T, opts isolation.Options) *fixture {
	t.Helper()

	if opts.DurationUnit == 0 {
		opts.DurationUnit = time.Millisecond
	}

	if opts.DrainQPS == 0 {
		opts.DrainQPS = 1000
	}

	f := &fixture{
		exec:     newFakeExecutor(),
		gateway:  &fakeGateway{fail: make(map[string]error)},
		recorder: &fakeRecorder{},
	}
	f.orch = isolation.New(slog.Default(), f.exec, f.gateway, testNodes, f.recorder, opts)
	require.NoError(t, f.orch.Start(t.Context()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()

		_ = f.orch.Shutdown(ctx)
	})

	return f
}

func (f *fixture) waitStatus(t *testing.T, id string, want domain.JobStatus) isolation.Job {
	t.Helper()

	var job isolation.Job

	require.Eventually(t, func() bool {
		var err error

		job, err = f.orch.Status(id)
		require.NoError(t, err)

		return job.Status == want
	}, waitFor, tick, "job never reached %s", want)

	return job
}

type startValidationCase struct {
	name       string
	giveNode   string
	giveMethod domain.IsolationMethod
	giveDur    int
	wantErr    error
}

func TestOrchestrator_StartJob_Validation(t *testing.T) {
	t.Parallel()

	tests := []startValidationCase{
		{
			name:       "duration below minimum",
			giveNode:   "worker1",
			giveMethod: domain.MethodKubelet,
			giveDur:    9,
			wantErr:    domain.ErrValidation,
		},
		{
			name:       "duration above maximum",
			giveNode:   "worker1",
			giveMethod: domain.MethodKubelet,
			giveDur:    3601,
			wantErr:    domain.ErrValidation,
		},
		{
			name:       "unknown method",
			giveNode:   "worker1",
			giveMethod: domain.IsolationMethod(42),
			giveDur:    10,
			wantErr:    domain.ErrValidation,
		},
		{
			name:       "empty node",
			giveNode:   " ",
			giveMethod: domain.MethodKubelet,
			giveDur:    10,
			wantErr:    domain.ErrValidation,
		},
		{
			name:       "unknown node",
			giveNode:   "worker9",
			giveMethod: domain.MethodKubelet,
			giveDur:    10,
			wantErr:    domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, isolation.Options{})

			_, err := f.orch.StartJob(t.Context(), tt.giveNode, tt.giveMethod, tt.giveDur)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, f.orch.List(), "no job may be created on rejection")
			require.Empty(t, f.exec.Commands())
		})
	}
}

func TestOrchestrator_Kubelet(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	begin := time.Now()

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
	require.NoError(t, err)
	require.Equal(t, domain.JobIdle, job.Status)
	require.NotEmpty(t, job.ID)

	done := f.waitStatus(t, job.ID, domain.JobCompleted)

	require.GreaterOrEqual(t, time.Since(begin), 10*time.Millisecond)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt)
	require.Equal(t, []string{"systemctl stop kubelet", "systemctl start kubelet"}, f.exec.Commands())
	require.Empty(t, f.orch.PendingRollbacks())
}

func TestOrchestrator_RollbackWaitsForSlowApply(t *testing.T) {
	t.Parallel()

	t.Run("kubelet", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, isolation.Options{})
		f.exec.delay["systemctl stop kubelet"] = 60 * time.Millisecond

		job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
		require.NoError(t, err)

		f.waitStatus(t, job.ID, domain.JobCompleted)
		require.Equal(t, []string{"systemctl stop kubelet", "systemctl start kubelet"}, f.exec.Commands())
	})

	t.Run("network", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, isolation.Options{})
		f.exec.delay["-A OUTPUT -p tcp -d 10.0.0.5 "] = 60 * time.Millisecond

		job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodNetwork, 10)
		require.NoError(t, err)

		f.waitStatus(t, job.ID, domain.JobCompleted)

		cmds := f.exec.Commands()
		require.Len(t, cmds, 4)

		for _, c := range cmds[:2] {
			require.Contains(t, c, "iptables -A OUTPUT")
		}

		require.Equal(t, 1, f.exec.Count("iptables -D OUTPUT -p tcp -d 10.0.0.10 --dport 6443 -j DROP"))
		require.Equal(t, 1, f.exec.Count("iptables -D OUTPUT -p tcp -d 10.0.0.5 --dport 6443 -j DROP"))
	})

	t.Run("apply outlives rollback timeout", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, isolation.Options{RollbackTimeout: 20 * time.Millisecond})
		f.exec.delay["systemctl stop kubelet"] = 150 * time.Millisecond

		job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
		require.NoError(t, err)

		// the job undoes the action itself once it has landed
		f.waitStatus(t, job.ID, domain.JobCompleted)
		require.Equal(t, []string{"systemctl stop kubelet", "systemctl start kubelet"}, f.exec.Commands())
	})
}

func TestOrchestrator_RollbackFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.exec.failOn["systemctl start kubelet"] = domain.ExecResult{ExitCode: 1, Stderr: "start request repeated too quickly"}

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
	require.NoError(t, err)

	done := f.waitStatus(t, job.ID, domain.JobCompleted)
	require.Equal(t, "stopped kubelet", done.Message)
	require.Equal(t, 1, f.exec.Count("systemctl start kubelet"), "no retry")
}

func TestOrchestrator_Runtime_FailureStillRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.exec.failOn["systemctl stop containerd"] = domain.ExecResult{ExitCode: 5, Stderr: "unit not loaded"}

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodRuntime, 10)
	require.NoError(t, err)

	failed := f.waitStatus(t, job.ID, domain.JobFailed)
	require.Contains(t, failed.Message, "unit not loaded")

	require.Eventually(t, func() bool {
		return f.exec.Count("systemctl start containerd") == 1
	}, waitFor, tick)

	// a terminal job never reverts
	got, err := f.orch.Status(job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobFailed, got.Status)
}

func TestOrchestrator_Network_PartialBlock(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.exec.failOn["-A OUTPUT -p tcp -d 10.0.0.5 "] = domain.ExecResult{ExitCode: 1, Stderr: "permission denied"}

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodNetwork, 10)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobFailed)

	require.Eventually(t, func() bool {
		return f.exec.Count("iptables -D") == 1
	}, waitFor, tick)

	require.Equal(t, 1, f.exec.Count("iptables -D OUTPUT -p tcp -d 10.0.0.10 --dport 6443 -j DROP"))
	require.Zero(t, f.exec.Count("-D OUTPUT -p tcp -d 10.0.0.5 "))
}

func TestOrchestrator_Network_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodNetwork, 10)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobCompleted)

	require.Equal(t, 2, f.exec.Count("iptables -A OUTPUT"))
	require.Equal(t, 2, f.exec.Count("iptables -D OUTPUT"))
}

func TestOrchestrator_Drain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.gateway.pods = []domain.Pod{
		{Name: "a", Namespace: "default", NodeName: "worker1"},
		{Name: "b", Namespace: "default", NodeName: "worker1"},
		{Name: "c", Namespace: "kube-system", NodeName: "worker1"},
		{Name: "d", Namespace: "default", NodeName: "worker2"},
	}
	f.gateway.fail["default/b"] = errors.New("conflict")

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodDrain, 10)
	require.NoError(t, err)

	done := f.waitStatus(t, job.ID, domain.JobCompleted)
	require.Contains(t, done.Message, "deleted 2/3 pods")
	require.Contains(t, done.Message, "default:b")
	require.Equal(t, []string{"default/a", "default/b", "kube-system/c"}, f.gateway.Deleted())
	require.Empty(t, f.exec.Commands(), "drain never touches the host")
}

func TestOrchestrator_Drain_ListFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.gateway.listErr = errors.New("api unavailable")

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodDrain, 10)
	require.NoError(t, err)

	failed := f.waitStatus(t, job.ID, domain.JobFailed)
	require.Contains(t, failed.Message, "api unavailable")
}

func TestOrchestrator_ExtremeResource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.exec.stdout["MemAvailable"] = "1000000\n"

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodExtremeResource, 10)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobCompleted)

	require.Equal(t,
		[]string{"stress-ng --vm 1 --vm-bytes 990000K --vm-keep --timeout 10s"},
		f.exec.Background(),
	)
	require.Len(t, f.exec.Commands(), 1, "no rollback command for extreme resource")
}

func TestOrchestrator_ExtremeResource_BadMemInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})
	f.exec.stdout["MemAvailable"] = "n/a"

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodExtremeResource, 10)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobFailed)
	require.Empty(t, f.exec.Background())
}

func TestOrchestrator_CommandTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{CommandTimeout: 20 * time.Millisecond})
	f.exec.block = true

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
	require.NoError(t, err)

	failed := f.waitStatus(t, job.ID, domain.JobFailed)
	require.Contains(t, failed.Message, domain.ErrTimeout.Error())
	require.Contains(t, failed.Message, domain.ErrRemoteExecution.Error())
}

func TestOrchestrator_Stop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})

	_, err := f.orch.Stop(t.Context(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 200)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobRunning)

	stopped, err := f.orch.Stop(t.Context(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStopping, stopped.Status)

	_, err = f.orch.Stop(t.Context(), job.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	// stop is advisory: the rollback still fires and the job completes
	f.waitStatus(t, job.ID, domain.JobCompleted)
	require.Equal(t, 1, f.exec.Count("systemctl start kubelet"))

	_, err = f.orch.Stop(t.Context(), job.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrchestrator_ShutdownFlushesRollbacks(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{DurationUnit: time.Second})

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 3600)
	require.NoError(t, err)

	f.waitStatus(t, job.ID, domain.JobRunning)
	require.Eventually(t, func() bool {
		return len(f.orch.PendingRollbacks()) == 1
	}, waitFor, tick)

	pending := f.orch.PendingRollbacks()
	require.Equal(t, job.ID, pending[0].JobID)

	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()

	require.NoError(t, f.orch.Shutdown(ctx))
	require.Equal(t, 1, f.exec.Count("systemctl start kubelet"))
	require.Empty(t, f.orch.PendingRollbacks())

	got, err := f.orch.Status(job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, got.Status)

	_, err = f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrchestrator_ShutdownKillsStress(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{DurationUnit: time.Second})
	f.exec.stdout["MemAvailable"] = "2048"

	job, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodExtremeResource, 60)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.exec.Background()) == 1
	}, waitFor, tick)

	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()

	require.NoError(t, f.orch.Shutdown(ctx))

	f.exec.mu.Lock()
	killed := f.exec.killed
	f.exec.mu.Unlock()

	require.Equal(t, 1, killed)

	got, err := f.orch.Status(job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, got.Status)
}

func TestOrchestrator_List(t *testing.T) {
	t.Parallel()

	f := newFixture(t, isolation.Options{})

	first, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodKubelet, 10)
	require.NoError(t, err)

	second, err := f.orch.StartJob(t.Context(), "worker1", domain.MethodDrain, 10)
	require.NoError(t, err)

	jobs := f.orch.List()
	require.Len(t, jobs, 2)
	require.Equal(t, first.ID, jobs[0].ID)
	require.Equal(t, second.ID, jobs[1].ID)
	require.NotEqual(t, first.ID, second.ID)
}

type evictCase struct {
	name       string
	giveNS     string
	givePod    string
	giveErr    error
	wantErr    error
	wantRecord bool
}

func TestOrchestrator_EvictPod(t *testing.T) {
	t.Parallel()

	tests := []evictCase{
		{
			name:       "deleted pod gets an eviction incident",
			giveNS:     "prod",
			givePod:    "api-1",
			wantRecord: true,
		},
		{
			name:    "missing pod",
			giveNS:  "prod",
			givePod: "api-1",
			giveErr: podNotFoundError{},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "empty pod name",
			giveNS:  "prod",
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, isolation.Options{})
			if tt.giveErr != nil {
				f.gateway.fail[tt.giveNS+"/"+tt.givePod] = tt.giveErr
			}

			rec, err := f.orch.EvictPod(t.Context(), tt.giveNS, tt.givePod, "")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, f.recorder.records)

				return
			}

			require.NoError(t, err)
			require.Equal(t, domain.IncidentEviction, rec.Type)
			require.Equal(t, "manual eviction", rec.Message)
			require.Len(t, f.recorder.records, 1)
		})
	}
}
