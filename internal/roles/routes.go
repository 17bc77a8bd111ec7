package roles

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers role endpoints guarded by the capability middleware.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/roles", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleRole, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleRole, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleRole, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleRole, Action: rbac.ActionEdit})).Put("/{id}", h.update)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleRole, Action: rbac.ActionDelete})).Delete("/{id}", h.delete)
	})
}
