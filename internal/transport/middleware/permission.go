package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/auth"
)

// RequireAdmin gates a route group on the admin role. Services still check
// the role themselves; this only short-circuits obvious cases before any
// body parsing happens.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !user.IsAdmin() {
			slog.Warn("access denied: admin role required",
				"user_id", user.ID,
				"role", user.Role,
				"path", r.URL.Path)
			http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
