package sales

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers sale endpoints guarded by the capability middleware.
// Detail and payment mutations live on their own top-level paths, keyed by
// row ID.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Route("/sales", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionView})).Get("/", h.list)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionCreate})).Post("/", h.create)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionView})).Get("/{id}", h.show)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionEdit})).Put("/{id}", h.updateHeader)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionEdit})).Put("/{id}/status", h.updateStatus)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionCreate})).Post("/{id}/payments", h.addPayment)
	})
	r.Route("/sale-details", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionEdit})).Put("/{id}", h.updateDetail)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionDelete})).Delete("/{id}", h.deleteDetail)
	})
	r.Route("/sale-payments", func(r chi.Router) {
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionEdit})).Put("/{id}", h.updatePayment)
		r.With(guard.Require(rbac.Capability{Module: rbac.ModuleSale, Action: rbac.ActionDelete})).Delete("/{id}", h.deletePayment)
	})
}
