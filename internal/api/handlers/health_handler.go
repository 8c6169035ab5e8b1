package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/kanban-service/internal/logger"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Kanban Board API is running!"))
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		logger.Warn("store health check failed", "error", err)
		writeJSON(w, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
