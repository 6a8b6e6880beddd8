package experiment_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/infra/cronparser"
	"github.com/skillcoder/nodechaos-controller/internal/logic/experiment"
	"github.com/skillcoder/nodechaos-controller/internal/logic/experiment/mocks"
	"github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
)

var nightly = experiment.Definition{
	Name:     "nightly-kubelet",
	Schedule: "0 3 * * *",
	TZ:       "UTC",
	NodeName: "worker1",
	Method:   domain.MethodKubelet,
	Duration: 120,
}

var hourly = experiment.Definition{
	Name:     "hourly-drain",
	Schedule: "0 * * * *",
	NodeName: "worker2",
	Method:   domain.MethodDrain,
	Duration: 60,
}

func TestNew_InvalidSchedule(t *testing.T) {
	t.Parallel()

	bad := nightly
	bad.Schedule = "every night"

	_, err := experiment.New(slog.Default(), mocks.NewMockJobStarter(t), cronparser.New(),
		[]experiment.Definition{bad}, time.Second)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_TickCommand(t *testing.T) {
	t.Parallel()

	starter := mocks.NewMockJobStarter(t)

	svc, err := experiment.New(slog.Default(), starter, cronparser.New(),
		[]experiment.Definition{nightly, hourly}, time.Second)
	require.NoError(t, err)

	list := svc.List()
	require.Len(t, list, 2)
	require.Equal(t, "hourly-drain", list[0].Name)
	require.Nil(t, list[0].LastRun)

	// far in the future both experiments are due
	future := list[1].NextRunAt.Add(time.Minute)

	starter.EXPECT().
		StartJob(mock.Anything, "worker1", domain.MethodKubelet, 120).
		Return(isolation.Job{ID: "task-1"}, nil).
		Once()
	starter.EXPECT().
		StartJob(mock.Anything, "worker2", domain.MethodDrain, 60).
		Return(isolation.Job{}, errors.New("node busy")).
		Once()

	require.Equal(t, 2, svc.TickCommand(t.Context(), future))

	byName := map[string]experiment.Status{}
	for _, st := range svc.List() {
		byName[st.Name] = st
	}

	require.Equal(t, "task-1", byName["nightly-kubelet"].LastRun.TaskID)
	require.Empty(t, byName["nightly-kubelet"].LastRun.Error)
	require.True(t, byName["nightly-kubelet"].NextRunAt.After(future))
	require.Equal(t, 3, byName["nightly-kubelet"].NextRunAt.Hour())

	require.Equal(t, "node busy", byName["hourly-drain"].LastRun.Error)
	require.True(t, byName["hourly-drain"].NextRunAt.After(future))

	// nothing is due right after the tick
	require.Zero(t, svc.TickCommand(t.Context(), future))
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	svc, err := experiment.New(slog.Default(), mocks.NewMockJobStarter(t), cronparser.New(), nil, 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "experiment-scheduler", svc.Name())
	require.Error(t, svc.Ping(t.Context()))

	require.NoError(t, svc.Start(t.Context()))

	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("scheduler not ready")
	}

	require.Eventually(t, func() bool {
		return svc.Ping(t.Context()) == nil
	}, time.Second, 10*time.Millisecond)
	require.False(t, svc.PingerReadyCritical())
}
