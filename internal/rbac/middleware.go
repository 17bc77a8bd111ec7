package rbac

import (
	"log/slog"
	"net/http"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/shared"
)

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Service Resolver
	Logger  *slog.Logger
}

// Require ensures the current user holds the capability before the handler
// runs. The check short-circuits before any mutation takes place.
func (m Middleware) Require(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := shared.UserIDFromContext(r.Context())
			if userID == 0 {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			allowed, err := m.Service.Can(r.Context(), userID, cap)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require", slog.String("capability", cap.String()), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !allowed {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
