// Package app wires the controller components and runs their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/skillcoder/nodechaos-controller/internal/adapters/outbound/jsonl"
	"github.com/skillcoder/nodechaos-controller/internal/adapters/outbound/k8s"
	"github.com/skillcoder/nodechaos-controller/internal/adapters/outbound/ssh"
	"github.com/skillcoder/nodechaos-controller/internal/config"
	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/httpserver"
	"github.com/skillcoder/nodechaos-controller/internal/infra/cronparser"
	"github.com/skillcoder/nodechaos-controller/internal/infra/shutdown"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
	"github.com/skillcoder/nodechaos-controller/internal/logic/experiment"
	"github.com/skillcoder/nodechaos-controller/internal/logic/incident"
	"github.com/skillcoder/nodechaos-controller/internal/logic/isolation"
	"github.com/skillcoder/nodechaos-controller/internal/logic/migration"
	"github.com/skillcoder/nodechaos-controller/internal/logic/resourcewatch"
)

type App struct {
	logger     *slog.Logger
	appState   appstater
	components []component
}

// New creates a new application instance with all dependencies wired.
// pingers is started last and therefore shut down first.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	appState appstater,
	pingers component,
) (*App, error) {
	kubeConfig, err := clientcmd.BuildConfigFromFlags(
		cfg.KubeMaster,
		cfg.KubeConfig,
	)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	metricsClientset, err := metricsv.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create metrics clientset: %w", err)
	}

	cluster := k8s.New(logger, clientset, metricsClientset)

	inventory, err := loadInventory(logger, cfg.InventoryPath)
	if err != nil {
		return nil, err
	}

	executor, err := newExecutor(logger, cfg, inventory)
	if err != nil {
		return nil, err
	}

	store := incident.New(cfg.IncidentCapacity)
	escalation := escalator.New(
		logger,
		store,
		cluster,
		cfg.QuarantineThreshold,
		cfg.QuarantineNamespace,
	)

	appState.RegisterShutdowner(escalation)

	orchestrator := isolation.New(
		logger,
		executor,
		cluster,
		inventory,
		escalation,
		isolation.Options{
			CommandTimeout: cfg.RemoteCommandTimeout,
			KubeletService: cfg.KubeletService,
			RuntimeService: cfg.RuntimeService,
			DrainQPS:       cfg.DrainDeleteQPS,
		},
	)

	a := &App{
		logger:   logger,
		appState: appState,
	}

	var sink migration.EventSink

	if cfg.MigrationEventsFile != "" {
		fileSink, err := jsonl.Open(logger, cfg.MigrationEventsFile)
		if err != nil {
			return nil, fmt.Errorf("open migration events file: %w", err)
		}

		sink = fileSink

		appState.RegisterShutdowner(fileSink)
	}

	monitor := migration.New(
		logger,
		cluster,
		escalation,
		sink,
		cfg.MonitorNamespace,
		cfg.MonitorInterval,
	)

	definitions, err := experimentDefinitions(inventory.Experiments)
	if err != nil {
		return nil, err
	}

	experiments, err := experiment.New(
		logger,
		orchestrator,
		cronparser.New(),
		definitions,
		experiment.DefaultInterval,
	)
	if err != nil {
		return nil, fmt.Errorf("create experiment scheduler: %w", err)
	}

	apiServer := httpserver.New(logger, appState, httpserver.Services{
		Alerts:      escalation,
		Incidents:   store,
		Isolation:   orchestrator,
		Migration:   monitor,
		Experiments: experiments,
		Nodes:       cluster,
	}, cfg.HTTPPort)

	metricsServer := httpserver.NewMetricsServer(logger, cfg.MetricsPort)

	err = appState.RegisterPinger(cluster)
	if err != nil {
		return nil, fmt.Errorf("register pinger %s: %w", cluster.Name(), err)
	}

	servers := []appServer{orchestrator, monitor}

	if cfg.ResourceWatchInterval > 0 {
		servers = append(servers, resourcewatch.New(logger, cluster, escalation, resourcewatch.Config{
			Interval:         cfg.ResourceWatchInterval,
			LabelSelector:    cfg.ResourceWatchLabelSelector,
			DefaultThreshold: cfg.ResourceMemoryThreshold,
			MinPodAge:        cfg.MinPodAgeBeforeAlert,
		}))
	} else {
		logger.Info("resource watcher disabled")
	}

	servers = append(servers, experiments, apiServer, metricsServer)

	for _, srv := range servers {
		err = a.add(srv)
		if err != nil {
			return nil, err
		}
	}

	a.components = append(a.components, pingers)
	appState.RegisterShutdowner(pingers)

	return a, nil
}

func (a *App) add(srv appServer) error {
	err := a.appState.RegisterPinger(srv)
	if err != nil {
		return fmt.Errorf("register pinger %s: %w", srv.Name(), err)
	}

	a.appState.RegisterShutdowner(srv)
	a.components = append(a.components, srv)

	return nil
}

// loadInventory reads the node inventory. A missing file yields an empty inventory.
func loadInventory(logger *slog.Logger, path string) (*config.Inventory, error) {
	inventory, err := config.LoadInventory(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("node inventory not found, isolation and experiments are unavailable", "path", path)

			return &config.Inventory{}, nil
		}

		return nil, fmt.Errorf("load inventory: %w", err)
	}

	logger.Info("node inventory loaded",
		"path", path,
		"cluster", inventory.Cluster.Name,
		"nodes", len(inventory.NodeNames()),
		"experiments", len(inventory.Experiments),
	)

	return inventory, nil
}

func newExecutor(logger *slog.Logger, cfg *config.Config, inventory *config.Inventory) (domain.RemoteExecutor, error) {
	creds := inventory.SSHWithOverrides(cfg.SSHUser, cfg.SSHPort, cfg.SSHKeyPath, cfg.SSHPassword)

	executor, err := ssh.New(logger, ssh.Config{
		User:           creds.User,
		Port:           creds.Port,
		KeyPath:        creds.KeyPath,
		Password:       creds.Password,
		KnownHostsPath: cfg.SSHKnownHosts,
		DialTimeout:    cfg.RemoteCommandTimeout,
	})
	if err != nil {
		if errors.Is(err, ssh.ErrNoAuthMethod) {
			logger.Warn("no ssh key or password configured, remote isolation commands will fail")

			return remoteDisabled{}, nil
		}

		return nil, fmt.Errorf("create ssh executor: %w", err)
	}

	return executor, nil
}

func experimentDefinitions(experiments []config.Experiment) ([]experiment.Definition, error) {
	defs := make([]experiment.Definition, 0, len(experiments))

	for _, e := range experiments {
		method, err := domain.ParseIsolationMethod(e.Method)
		if err != nil {
			return nil, fmt.Errorf("experiment %s: %w", e.Name, err)
		}

		defs = append(defs, experiment.Definition{
			Name:     e.Name,
			Schedule: e.Schedule,
			TZ:       e.TZ,
			NodeName: e.Node,
			Method:   method,
			Duration: e.Duration,
		})
	}

	return defs, nil
}

// Run starts every component and blocks until a termination signal or context cancellation,
// then shuts the components down.
func (a *App) Run(originCtx context.Context) error {
	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	go shutdown.New(a.logger, a.appState).HandleSignals(ctx, cancel)

	err := a.appState.SetStarting(ctx)
	if err != nil {
		return fmt.Errorf("set starting: %w", err)
	}

	readies := make([]<-chan struct{}, 0, len(a.components))

	for _, c := range a.components {
		err = c.Start(ctx)
		if err != nil {
			cancel()

			return errors.Join(
				fmt.Errorf("start %s: %w", c.Name(), err),
				a.appState.Shutdown(originCtx),
			)
		}

		readies = append(readies, c.Ready())
	}

	select {
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "context done before all components became ready")
	case <-allChannelsClose(ctx, a.logger, readies...):
		err = a.appState.SetRunning(ctx)
		if err != nil {
			cancel()

			return errors.Join(fmt.Errorf("set running: %w", err), a.appState.Shutdown(originCtx))
		}

		a.logger.InfoContext(ctx, "controller is running")

		<-ctx.Done()
	}

	a.logger.InfoContext(ctx, "shutting down controller")

	err = a.appState.Shutdown(originCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// allChannelsClose returns a channel that is closed once every given channel is closed.
func allChannelsClose(ctx context.Context, logger *slog.Logger, chans ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})

	var wg sync.WaitGroup

	for _, ch := range chans {
		wg.Go(func() {
			select {
			case <-ch:
			case <-ctx.Done():
				logger.DebugContext(ctx, "context done while waiting for a ready channel")
				<-ch
			}
		})
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
