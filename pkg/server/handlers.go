package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"cloudspend-hq/warden/pkg/control"
)

// handleCheck runs one check cycle on demand. The response is always 200
// with per-item failure detail embedded in the summary; a cycle that saw
// degraded data or a failed disable still completed.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	summary, err := s.governor.RunCycle(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleReset resets a service's baseline to its current spend.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	serviceKey := r.PathValue("service")

	result, err := s.governor.Reset(r.Context(), serviceKey)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEnable manually re-enables a service by its control API name.
func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	resourceID := r.PathValue("api")

	if err := s.governor.Enable(r.Context(), resourceID); err != nil {
		writeError(w, controlStatusCode(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"resource_id": resourceID,
		"state":       "ENABLED",
	})
}

// handleAllStatuses reports every service's budget and API state.
func (s *Server) handleAllStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"services": s.governor.AllStatuses(r.Context()),
	})
}

// handleServiceStatus reports one service's budget and API state.
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	serviceKey := r.PathValue("service")

	view, err := s.governor.ServiceStatus(r.Context(), serviceKey)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// controlStatusCode maps the control error taxonomy onto HTTP statuses.
func controlStatusCode(err error) int {
	var (
		permission *control.PermissionError
		notFound   *control.NotFoundError
		badRequest *control.BadRequestError
	)
	switch {
	case errors.As(err, &permission):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
