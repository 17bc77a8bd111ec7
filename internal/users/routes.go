package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers user endpoints guarded by the capability middleware.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/users", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionEdit})).Put("/{id}", h.update)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionEditStatus})).Put("/{id}/status", h.updateStatus)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionEditPassword})).Put("/{id}/password", h.updatePassword)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleUser, Action: rbac.ActionDelete})).Delete("/{id}", h.delete)
	})
}
