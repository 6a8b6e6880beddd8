package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/skillcoder/nodechaos-controller/internal/domain"
)

type alertRequest struct {
	PodName   string `json:"pod_name" validate:"required,max=253"`
	Namespace string `json:"namespace" validate:"omitempty,max=63"`
	Message   string `json:"message" validate:"max=4096"`
	Type      string `json:"type" validate:"omitempty,oneof=alert resource"`
}

type alertResponse struct {
	Status     string `json:"status"`
	IncidentID uint64 `json:"incident_id"`
}

type evictRequest struct {
	Namespace string `json:"namespace" validate:"omitempty,max=63"`
	PodName   string `json:"pod_name" validate:"required,max=253"`
	Reason    string `json:"reason" validate:"max=1024"`
}

type isolationStartRequest struct {
	NodeName string `json:"node_name" validate:"required,max=253"`
	Method   string `json:"method" validate:"required"`
	Duration int    `json:"duration" validate:"required"`
}

type isolationStopRequest struct {
	TaskID string `json:"task_id" validate:"required,uuid"`
}

// decode reads a JSON body into dst and validates its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrValidation)
		}

		return fmt.Errorf("%w: decode request body: %w", domain.ErrValidation, err)
	}

	err = s.validate.StructCtx(r.Context(), dst)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	return nil
}
