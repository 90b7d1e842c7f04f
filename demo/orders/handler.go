package orders

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agentscope-go/shutdown/telemetry"
)

// Handler exposes Service over HTTP, grounded on OrderController.java:
// POST /api/orders/process streams Server-Sent Events, GET
// /api/orders/{sessionId} reports session status.
type Handler struct {
	service *Service
	logger  telemetry.Logger
}

// NewHandler wraps service.
func NewHandler(service *Service, logger telemetry.Logger) *Handler {
	if logger == nil {
		logger = telemetry.NopLogger{}
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the order endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders/process", h.handleProcess)
	mux.HandleFunc("GET /api/orders/{sessionId}", h.handleStatus)
}

type processRequestBody struct {
	SessionID string    `json:"sessionId"`
	OrderID   string    `json:"orderId"`
	Products  []Product `json:"products"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var body processRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if !h.service.IsAccepting() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(body.SessionID, "Service is shutting down, please retry later"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	req := Request{SessionID: body.SessionID, OrderID: body.OrderID, Products: body.Products}
	h.logger.Info(r.Context(), "received order request", telemetry.KV{K: "orderId", V: body.OrderID}, telemetry.KV{K: "sessionId", V: body.SessionID})

	for resp := range h.service.Process(r.Context(), req) {
		if err := writeSSE(w, resp); err != nil {
			h.logger.Error(r.Context(), "failed to write sse event", telemetry.KV{K: "error", V: err})
			return
		}
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	status, err := h.service.SessionStatus(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if status.Status == "not_found" {
		writeJSON(w, http.StatusNotFound, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
