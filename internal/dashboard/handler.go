package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
)

// Handler exposes the dashboard payload endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard endpoint behind its view capability.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.With(guard.Require(rbac.Capability{Module: rbac.ModuleDashboard, Action: rbac.ActionView})).
		Get("/dashboard/data", h.data)
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Data(r.Context())
	if err != nil {
		h.logger.Error("build dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": data})
}
