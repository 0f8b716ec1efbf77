package middleware

import "net/http"

// RequireAdmin lets through only sessions signed in with the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		if s == nil {
			writeError(w, r, http.StatusUnauthorized, "not signed in")
			return
		}
		u, ok := s.User()
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "not signed in")
			return
		}
		if !u.IsAdmin() {
			writeError(w, r, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
