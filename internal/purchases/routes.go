package purchases

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers purchase endpoints guarded by the capability
// middleware. Detail mutations live on their own top-level path, keyed by
// detail ID.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/purchases", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionEdit})).Put("/{id}", h.updateHeader)
	})
	r.Route("/purchase-details", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionEdit})).Put("/{id}", h.updateDetail)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModulePurchase, Action: rbac.ActionDelete})).Delete("/{id}", h.deleteDetail)
	})
}
