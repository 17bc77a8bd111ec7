package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andino-pos/andino-pos/internal/auth"
	"github.com/andino-pos/andino-pos/internal/dashboard"
	"github.com/andino-pos/andino-pos/internal/masterdata/categories"
	"github.com/andino-pos/andino-pos/internal/masterdata/products"
	"github.com/andino-pos/andino-pos/internal/masterdata/suppliers"
	"github.com/andino-pos/andino-pos/internal/observability"
	"github.com/andino-pos/andino-pos/internal/purchases"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/reports"
	"github.com/andino-pos/andino-pos/internal/roles"
	"github.com/andino-pos/andino-pos/internal/sales"
	"github.com/andino-pos/andino-pos/internal/sales/customers"
	"github.com/andino-pos/andino-pos/internal/shared"
	"github.com/andino-pos/andino-pos/internal/users"
	"github.com/andino-pos/andino-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	RolesHandler     *roles.Handler
	UsersHandler     *users.Handler
	CategoryHandler  *categories.Handler
	SupplierHandler  *suppliers.Handler
	ProductHandler   *products.Handler
	CustomerHandler  *customers.Handler
	PurchaseHandler  *purchases.Handler
	SaleHandler      *sales.Handler
	ReportHandler    *reports.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults. Everything
// except /healthz, /metrics and /auth sits behind the session guard.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		guard := params.RBACMiddleware

		params.RolesHandler.MountRoutes(r, guard)
		params.UsersHandler.MountRoutes(r, guard)
		params.CategoryHandler.MountRoutes(r, guard)
		params.SupplierHandler.MountRoutes(r, guard)
		params.ProductHandler.MountRoutes(r, guard)
		params.CustomerHandler.MountRoutes(r, guard)
		params.PurchaseHandler.MountRoutes(r, guard)
		params.SaleHandler.MountRoutes(r, guard)
		params.ReportHandler.MountRoutes(r, guard)
		params.DashboardHandler.MountRoutes(r, guard)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
