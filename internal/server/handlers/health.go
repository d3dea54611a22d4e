package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/webkit/pkg/api"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	responder
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		responder: responder{logger: logger},
		version:   version,
	}
}

// Health обрабатывает GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, api.HealthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}
