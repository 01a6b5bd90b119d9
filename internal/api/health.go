package api

import "net/http"

// healthHandler serves the liveness probe.
type healthHandler struct{}

func newHealthHandler() *healthHandler { return &healthHandler{} }

func (h *healthHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *healthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
