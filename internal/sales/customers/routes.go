package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers customer endpoints guarded by the capability middleware.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/customers", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCustomer, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCustomer, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCustomer, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCustomer, Action: rbac.ActionEdit})).Put("/{id}", h.update)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleCustomer, Action: rbac.ActionDelete})).Delete("/{id}", h.delete)
	})
}
