package appstate_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/infra/appstate"
	"github.com/skillcoder/nodechaos-controller/internal/infra/pinger"
	"github.com/skillcoder/nodechaos-controller/internal/infra/shutdown/mocks"
)

const terminationPath = "/mnt/signal/terminating"

type stubPinger struct {
	name string
	err  error
}

func (p stubPinger) Name() string               { return p.name }
func (p stubPinger) Ping(context.Context) error { return p.err }

func newAppState(t *testing.T) (*appstate.AppState, *pinger.Service) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	pingerService := pinger.New(logger, time.Second)

	return appstate.New(logger, time.Now(), terminationPath, make(chan os.Signal, 1), pingerService), pingerService
}

func TestAppState_StateTransitions(t *testing.T) {
	t.Parallel()

	t.Run("init to starting", func(t *testing.T) {
		t.Parallel()

		s, _ := newAppState(t)
		require.NoError(t, s.SetStarting(t.Context()))
		require.Equal(t, appstate.StateStarting, s.GetState())
	})

	t.Run("starting to running", func(t *testing.T) {
		t.Parallel()

		s, _ := newAppState(t)
		require.NoError(t, s.SetStarting(t.Context()))
		require.NoError(t, s.SetRunning(t.Context()))
		require.Equal(t, appstate.StateRunning, s.GetState())
	})

	t.Run("running to terminating", func(t *testing.T) {
		t.Parallel()

		s, _ := newAppState(t)
		require.NoError(t, s.SetStarting(t.Context()))
		require.NoError(t, s.SetRunning(t.Context()))
		require.NoError(t, s.SetTerminating(t.Context()))
		require.Equal(t, appstate.StateTerminating, s.GetState())
	})

	t.Run("invalid: init to running", func(t *testing.T) {
		t.Parallel()

		s, _ := newAppState(t)
		err := s.SetRunning(t.Context())
		require.ErrorIs(t, err, appstate.ErrInvalidStateTransition)
		require.Equal(t, appstate.StateInit, s.GetState())
	})

	t.Run("invalid: terminated cannot change", func(t *testing.T) {
		t.Parallel()

		s, _ := newAppState(t)
		require.NoError(t, s.SetStarting(t.Context()))
		require.NoError(t, s.SetRunning(t.Context()))
		require.NoError(t, s.Shutdown(t.Context()))
		require.Equal(t, appstate.StateTerminated, s.GetState())

		require.Error(t, s.SetStarting(t.Context()))
		require.ErrorIs(t, s.SetTerminating(t.Context()), appstate.ErrAlreadyTerminated)
		require.Equal(t, appstate.StateTerminated, s.GetState())
	})
}

func TestAppState_QueryMethods(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s, _ := newAppState(t)

	require.Equal(t, appstate.StateInit, s.GetState())
	require.False(t, s.IsHealthy())
	require.False(t, s.IsReady())

	require.NoError(t, s.SetStarting(ctx))
	require.False(t, s.IsReady())

	require.NoError(t, s.SetRunning(ctx))
	require.True(t, s.IsHealthy())
	require.True(t, s.IsReady())
}

func TestAppState_ComponentHealth(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s, pingerService := newAppState(t)

	require.NoError(t, s.RegisterPinger(stubPinger{name: "ok"}))
	require.NoError(t, s.RegisterPinger(stubPinger{name: "broken", err: errors.New("unreachable")}))
	require.Error(t, s.RegisterPinger(stubPinger{name: "ok"}))

	require.NoError(t, s.SetStarting(ctx))
	require.NoError(t, s.SetRunning(ctx))

	// no ping round yet
	require.True(t, s.IsHealthy())

	pingerService.PingAll(ctx)

	require.False(t, s.IsHealthy())
	require.False(t, s.IsReady())

	stats := s.GetAllStats()
	require.Len(t, stats, 2)
	require.True(t, stats["ok"].IsHealthy)
	require.Equal(t, "unreachable", stats["broken"].LastError)
}

func TestAppState_GetUptime(t *testing.T) {
	t.Parallel()

	s, _ := newAppState(t)

	time.Sleep(10 * time.Millisecond)

	require.GreaterOrEqual(t, s.GetUptime(), 10*time.Millisecond)
}

func TestAppState_Shutdown(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s, _ := newAppState(t)

	var order []string

	for _, name := range []string{"first", "second"} {
		m := mocks.NewMockShutdowner(t)
		m.EXPECT().Name().Return(name).Maybe()
		m.EXPECT().Shutdown(mock.Anything).Run(func(context.Context) {
			order = append(order, name)
		}).Return(nil).Once()
		s.RegisterShutdowner(m)
	}

	require.NoError(t, s.SetStarting(ctx))
	require.NoError(t, s.SetRunning(ctx))

	require.NoError(t, s.Shutdown(ctx))
	require.Equal(t, appstate.StateTerminated, s.GetState())
	require.Equal(t, []string{"second", "first"}, order)

	// second call is a no-op
	require.NoError(t, s.Shutdown(ctx))
}
