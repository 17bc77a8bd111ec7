package reports

import (
	"github.com/go-chi/chi/v5"

	"github.com/andino-pos/andino-pos/internal/rbac"
)

// MountRoutes registers the report endpoints behind the report capability.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	view := guard.Require(rbac.Capability{Module: rbac.ModuleReport, Action: rbac.ActionView})
	r.Route("/reports", func(r chi.Router) {
		r.With(view).Get("/sales", h.page(KindSales))
		r.With(view).Get("/sales/export", h.export(KindSales))
		r.With(view).Get("/purchases", h.page(KindPurchases))
		r.With(view).Get("/purchases/export", h.export(KindPurchases))
	})
}
