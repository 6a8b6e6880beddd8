package app

import (
	"context"
	"os"
	"time"

	"github.com/skillcoder/nodechaos-controller/internal/infra/appstate"
	"github.com/skillcoder/nodechaos-controller/internal/infra/pinger"
	"github.com/skillcoder/nodechaos-controller/internal/infra/shutdown"
)

// appstater defines the interface for application state management
type appstater interface {
	RegisterPinger(pinger pinger.Pinger) error
	GetAllStats() map[string]*pinger.Statistics
	RegisterShutdowner(shutdowner shutdown.Shutdowner)
	Quit() <-chan os.Signal
	SetStarting(ctx context.Context) error
	SetRunning(ctx context.Context) error
	GetStartTime() time.Time
	GetState() appstate.State
	GetUptime() time.Duration
	IsHealthy() bool
	IsReady() bool
	Shutdown(ctx context.Context) error
}

// component is a long-running part of the application
type component interface {
	shutdown.Shutdowner
	Start(ctx context.Context) error
	Ready() <-chan struct{}
}

// appServer is a component that also answers health pings
type appServer interface {
	component
	pinger.Pinger
}
