package appstate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/skillcoder/nodechaos-controller/internal/infra/pinger"
)

type statusResponse struct {
	State      string                        `json:"state"`
	Uptime     string                        `json:"uptime"`
	StartTime  time.Time                     `json:"startTime"`
	UptimeSec  float64                       `json:"uptimeSeconds"`
	Components map[string]*pinger.Statistics `json:"components"`
}

type probeResponse struct {
	Status  string   `json:"status"`
	Failing []string `json:"failing,omitempty"`
}

// failing lists the components whose flag (health or readiness) is down
func failing(stats map[string]*pinger.Statistics, ok func(*pinger.Statistics) bool) []string {
	var names []string

	for name, st := range stats {
		if !ok(st) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

func writeProbe(w http.ResponseWriter, passed bool, failingComponents []string) {
	code := http.StatusOK
	resp := probeResponse{Status: "ok"}

	if !passed {
		code = http.StatusServiceUnavailable
		resp = probeResponse{Status: "fail", Failing: failingComponents}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleHealthz returns an http.HandlerFunc for the /-/healthz endpoint
func HandleHealthz(
	logger *slog.Logger,
	appState healthChecker,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.With("traceID", middleware.GetReqID(ctx))

		if !appState.IsHealthy() {
			names := failing(appState.GetAllStats(), func(st *pinger.Statistics) bool { return st.IsHealthy })
			log.DebugContext(ctx, "health check failed", "failing", names)
			writeProbe(w, false, names)

			return
		}

		writeProbe(w, true, nil)
		log.DebugContext(ctx, "health check passed")
	}
}

// HandleReadyz returns an http.HandlerFunc for the /-/readyz endpoint
func HandleReadyz(
	logger *slog.Logger,
	appState readyChecker,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.With("traceID", middleware.GetReqID(ctx))

		if !appState.IsReady() {
			names := failing(appState.GetAllStats(), func(st *pinger.Statistics) bool { return st.IsReady })
			log.DebugContext(ctx, "readiness check failed", "failing", names)
			writeProbe(w, false, names)

			return
		}

		writeProbe(w, true, nil)
		log.DebugContext(ctx, "readiness check passed")
	}
}

// HandleStatus returns an http.HandlerFunc for the /-/status endpoint
func HandleStatus(
	logger *slog.Logger,
	appState statusGetter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.With("traceID", middleware.GetReqID(ctx))

		state := appState.GetState()
		uptime := appState.GetUptime()

		components := appState.GetAllStats()
		if components == nil {
			components = map[string]*pinger.Statistics{}
		}

		response := statusResponse{
			State:      string(state),
			Uptime:     uptime.String(),
			StartTime:  appState.GetStartTime(),
			UptimeSec:  uptime.Seconds(),
			Components: components,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.ErrorContext(ctx, "failed to encode status response", "reason", err)

			return
		}

		log.DebugContext(ctx, "status response sent",
			"state", string(state),
			"uptime", uptime.String(),
		)
	}
}
