package middleware

import (
	"encoding/json"
	"net/http"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/logger"
)

// Capability declares what a route group demands of the caller
type Capability struct {
	RequireAuth bool
	// RequireRole partitions authenticated traffic: "admin" admits only
	// admins, "user" admits only non-admins, "" admits both.
	RequireRole string
}

// AdminOnly admits authenticated admins
func AdminOnly() Capability { return Capability{RequireAuth: true, RequireRole: domain.RoleAdmin} }

// UserOnly admits authenticated non-admins. Admin and user areas are a
// two-way partition: an admin landing on a user route is redirected to
// the admin home, not served a degraded page.
func UserOnly() Capability { return Capability{RequireAuth: true, RequireRole: "user"} }

// AnyAuthenticated admits any signed-in user
func AnyAuthenticated() Capability { return Capability{RequireAuth: true} }

// guardRejection is the body sent alongside guard redirects
type guardRejection struct {
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

// Guard builds a route-guard middleware. Every verdict is derived from the
// request's own authenticated user, never from shared state: the role is
// resolved per request (the resolver caches briefly), so one caller's
// session can never widen or narrow another caller's access.
func Guard(roles service.RoleResolver, capability Capability, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())

			if capability.RequireAuth && user == nil {
				writeGuardRejection(w, http.StatusUnauthorized, guardRejection{
					Reason:   "not_authenticated",
					Redirect: "/signin",
				})
				return
			}

			if capability.RequireRole != "" && user != nil {
				// An unresolvable role degrades to non-admin, so admin
				// routes fail closed.
				isAdmin := false
				resolution, err := roles.Resolve(r.Context(), user)
				if err != nil {
					logger.WithError(err).WithField("user_id", user.ID).Warn("Role resolution failed in route guard")
				} else if resolution != nil {
					isAdmin = resolution.IsAdmin
				}

				switch capability.RequireRole {
				case domain.RoleAdmin:
					if !isAdmin {
						logger.WithFields(map[string]interface{}{
							"user_id": user.ID,
							"path":    r.URL.Path,
						}).Debug("Non-admin rejected from admin route")
						writeGuardRejection(w, http.StatusForbidden, guardRejection{
							Reason:   "admin_required",
							Redirect: "/home",
						})
						return
					}
				case "user":
					if isAdmin {
						writeGuardRejection(w, http.StatusForbidden, guardRejection{
							Reason:   "admin_account",
							Redirect: "/admin/dashboard",
						})
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardRejection(w http.ResponseWriter, status int, rejection guardRejection) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection)
}
