package middleware

import (
	"net/http"

	"licensepanel/models"
)

// RequireRoles allows the request only if the token role is one of allowedRoles.
// It must run after Auth.
func RequireRoles(allowedRoles ...string) func(http.HandlerFunc) http.HandlerFunc {
	set := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		set[r] = struct{}{}
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				unauthorized(w, "Unauthorized")
				return
			}
			if _, ok := set[claims.Role]; !ok {
				writeJSON(w, http.StatusForbidden, models.ErrorResponse("Forbidden: insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// ReadOnlyForViewers lets viewers through for GET requests only; every other
// role passes unchanged.
func ReadOnlyForViewers(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims != nil && claims.Role == models.RoleViewer && r.Method != http.MethodGet && r.Method != http.MethodOptions {
			writeJSON(w, http.StatusForbidden, models.ErrorResponse("Forbidden: insufficient role"))
			return
		}
		next.ServeHTTP(w, r)
	}
}
