package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/config"
	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/experiment"
)

type allChannelsCloseCase struct {
	name                         string
	giveNumChannels              int
	giveContextCancelBeforeClose bool
	wantClosed                   bool
}

func TestAllChannelsClose(t *testing.T) {
	logger := slog.Default()

	tests := []allChannelsCloseCase{
		{
			name:            "zero channels closes immediately",
			giveNumChannels: 0,
			wantClosed:      true,
		},
		{
			name:            "one channel closes when it closes",
			giveNumChannels: 1,
			wantClosed:      true,
		},
		{
			name:            "two channels close when both close",
			giveNumChannels: 2,
			wantClosed:      true,
		},
		{
			name:                         "context cancelled then channels close",
			giveNumChannels:              2,
			giveContextCancelBeforeClose: true,
			wantClosed:                   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()

			if tt.giveContextCancelBeforeClose {
				var cancel context.CancelFunc

				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			chans := make([]<-chan struct{}, 0, tt.giveNumChannels)
			readyChans := make([]chan struct{}, 0, tt.giveNumChannels)

			for range tt.giveNumChannels {
				ch := make(chan struct{})

				readyChans = append(readyChans, ch)
				chans = append(chans, ch)
			}

			out := allChannelsClose(ctx, logger, chans...)

			if tt.giveNumChannels == 0 {
				select {
				case <-out:
				case <-time.After(100 * time.Millisecond):
					t.Fatal("expected out channel to close immediately")
				}

				return
			}

			for _, ch := range readyChans {
				close(ch)
			}

			select {
			case <-out:
			case <-time.After(500 * time.Millisecond):
				t.Fatal("expected out channel to close after all input channels closed")
			}
		})
	}
}

func TestExperimentDefinitions(t *testing.T) {
	t.Parallel()

	t.Run("methods are parsed", func(t *testing.T) {
		t.Parallel()

		defs, err := experimentDefinitions([]config.Experiment{
			{Name: "nightly", Schedule: "0 3 * * *", TZ: "UTC", Node: "worker1", Method: "kubelet", Duration: 120},
			{Name: "burn", Schedule: "@hourly", Node: "worker2", Method: "extreme", Duration: 30},
		})
		require.NoError(t, err)
		require.Equal(t, []experiment.Definition{
			{Name: "nightly", Schedule: "0 3 * * *", TZ: "UTC", NodeName: "worker1", Method: domain.MethodKubelet, Duration: 120},
			{Name: "burn", Schedule: "@hourly", NodeName: "worker2", Method: domain.MethodExtremeResource, Duration: 30},
		}, defs)
	})

	t.Run("unknown method", func(t *testing.T) {
		t.Parallel()

		_, err := experimentDefinitions([]config.Experiment{{Name: "x", Method: "meteor"}})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestLoadInventory(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	t.Run("missing file yields empty inventory", func(t *testing.T) {
		t.Parallel()

		inv, err := loadInventory(logger, filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		require.Empty(t, inv.NodeNames())
	})

	t.Run("malformed file fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("masters: [unclosed"), 0o600))

		_, err := loadInventory(logger, path)
		require.ErrorIs(t, err, config.ErrInvalidValue)
	})
}

func TestNewExecutor_WithoutCredentials(t *testing.T) {
	t.Parallel()

	exec, err := newExecutor(slog.New(slog.DiscardHandler), &config.Config{}, &config.Inventory{})
	require.NoError(t, err)

	_, err = exec.Run(t.Context(), "10.0.0.1", "true")
	require.ErrorIs(t, err, domain.ErrRemoteExecution)

	_, err = exec.RunBackground(t.Context(), "10.0.0.1", "true")
	require.ErrorIs(t, err, domain.ErrRemoteExecution)
}
