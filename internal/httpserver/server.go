// Package httpserver serves the operator API and the health endpoints.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/skillcoder/nodechaos-controller/internal/infra/appstate"
	"github.com/skillcoder/nodechaos-controller/internal/infra/metrics"
	"github.com/skillcoder/nodechaos-controller/internal/infra/shutdown"
)

// Services are the components behind the API routes.
type Services struct {
	Alerts      AlertIngester
	Incidents   IncidentReader
	Isolation   Isolator
	Migration   MigrationReader
	Experiments ExperimentLister
	Nodes       NodeOperator
}

type Server struct {
	*listener

	logger   *slog.Logger
	appState appstater
	services Services
	validate *validator.Validate
}

// New creates a new HTTP server instance
func New(logger *slog.Logger, appState appstater, services Services, port string) *Server {
	if port == "" {
		port = defaultPort
	}

	l := newListener(logger, "http-server", port)

	return &Server{
		listener: l,
		logger:   l.logger,
		appState: appState,
		services: services,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

var _ shutdown.Shutdowner = (*Server)(nil)

// Handler builds the router with every API and health route.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/-/healthz", appstate.HandleHealthz(s.logger, s.appState))
	router.Get("/-/readyz", appstate.HandleReadyz(s.logger, s.appState))
	router.Get("/-/status", appstate.HandleStatus(s.logger, s.appState))

	router.Route(apiPrefix, func(r chi.Router) {
		r.Use(instrument)

		r.Post("/alert", s.handleAlert)

		r.Get("/incidents", s.handleIncidents)
		r.Get("/incidents/stats", s.handleIncidentStats)

		r.Post("/pods/evict", s.handleEvictPod)

		r.Route("/isolation", func(r chi.Router) {
			r.Post("/start", s.handleIsolationStart)
			r.Post("/stop", s.handleIsolationStop)
			r.Get("/status/{id}", s.handleIsolationStatus)
			r.Get("/tasks", s.handleIsolationTasks)
			r.Get("/rollbacks", s.handleIsolationRollbacks)
		})

		r.Route("/migrations", func(r chi.Router) {
			r.Get("/report", s.handleMigrationReport)
			r.Get("/distribution", s.handleMigrationDistribution)
			r.Get("/history/{namespace}/{pod}", s.handleMigrationHistory)
		})

		r.Get("/experiments", s.handleExperiments)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.handleNodes)
			r.Post("/{name}/cordon", s.handleCordon)
			r.Post("/{name}/uncordon", s.handleUncordon)
			r.Post("/{name}/drain", s.handleDrain)
		})
	})

	return router
}

// instrument records the latency of API requests by route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		metrics.RecordHTTPRequest(route, r.Method, ww.Status(), time.Since(start).Seconds())
	})
}

// Start listens on the configured port and serves in a goroutine
func (s *Server) Start(ctx context.Context) error {
	return s.start(ctx, s.Handler())
}
