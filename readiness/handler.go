package readiness

import (
	"encoding/json"
	"net/http"
)

// Handler adapts a View to the two HTTP endpoints described in spec.md §6,
// grounded on controller/HealthController.java's liveness/readiness split.
type Handler struct {
	view *View
}

// NewHandler wraps view; Register mounts its endpoints on a mux.
func NewHandler(view *View) *Handler {
	return &Handler{view: view}
}

// Register mounts the two endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
}

func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Liveness())
}

func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	report := h.view.Readiness()
	status := http.StatusOK
	if report.Status != StatusReady {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
