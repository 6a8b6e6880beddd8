package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusCode maps the domain error taxonomy to HTTP status codes.
func statusCode(err error) int {
	var nf notFound

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func domainValidation(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)

	level := slog.LevelDebug
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	s.logger.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"code", code,
		"reason", err,
	)

	writeJSON(w, code, errorResponse{Error: err.Error()})
}
