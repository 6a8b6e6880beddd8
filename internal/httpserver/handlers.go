package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
	"github.com/skillcoder/nodechaos-controller/internal/logic/escalator"
)

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest

	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	incidentType, err := domain.ParseIncidentType(req.Type)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	outcome, err := s.services.Alerts.Ingest(r.Context(), escalator.Alert{
		PodName:   req.PodName,
		Namespace: req.Namespace,
		Message:   req.Message,
		Type:      incidentType,
		Time:      time.Now(),
	})
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, alertResponse{Status: "received", IncidentID: outcome.Record.ID})
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	limit := defaultIncidentLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, domainValidation("limit must be a positive integer"))

			return
		}

		limit = n
	}

	limit = min(limit, s.services.Incidents.Capacity())

	writeJSON(w, http.StatusOK, s.services.Incidents.Recent(limit))
}

func (s *Server) handleIncidentStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Incidents.Stats())
}

func (s *Server) handleEvictPod(w http.ResponseWriter, r *http.Request) {
	var req evictRequest

	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	record, err := s.services.Isolation.EvictPod(r.Context(), req.Namespace, req.PodName, req.Reason)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleIsolationStart(w http.ResponseWriter, r *http.Request) {
	var req isolationStartRequest

	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	method, err := domain.ParseIsolationMethod(req.Method)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	job, err := s.services.Isolation.StartJob(r.Context(), req.NodeName, method, req.Duration)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleIsolationStop(w http.ResponseWriter, r *http.Request) {
	var req isolationStopRequest

	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	job, err := s.services.Isolation.Stop(r.Context(), req.TaskID)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleIsolationStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.services.Isolation.Status(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleIsolationTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Isolation.List())
}

func (s *Server) handleIsolationRollbacks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Isolation.PendingRollbacks())
}

func (s *Server) handleMigrationReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Migration.Report())
}

func (s *Server) handleMigrationDistribution(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Migration.Distribution())
}

func (s *Server) handleMigrationHistory(w http.ResponseWriter, r *http.Request) {
	key := domain.PodKey{
		Namespace: chi.URLParam(r, "namespace"),
		Name:      chi.URLParam(r, "pod"),
	}

	history, err := s.services.Migration.History(key)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleExperiments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.services.Experiments.List())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.services.Nodes.ListNodes(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, nodes)
}

type nodeActionResponse struct {
	NodeName string `json:"node_name"`
	Action   string `json:"action"`
}

func (s *Server) handleCordon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.services.Nodes.CordonNode(r.Context(), name); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.logger.InfoContext(r.Context(), "node cordoned", "node", name)
	writeJSON(w, http.StatusOK, nodeActionResponse{NodeName: name, Action: "cordon"})
}

func (s *Server) handleUncordon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.services.Nodes.UncordonNode(r.Context(), name); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.logger.InfoContext(r.Context(), "node uncordoned", "node", name)
	writeJSON(w, http.StatusOK, nodeActionResponse{NodeName: name, Action: "uncordon"})
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Nodes.DrainNode(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.logger.InfoContext(r.Context(), "node drained",
		"node", result.NodeName,
		"evicted", len(result.Evicted),
		"failed", len(result.Failed),
	)
	writeJSON(w, http.StatusOK, result)
}
