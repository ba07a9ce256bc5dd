package middleware

import (
	"net/http"

	"budget-server/src/models"
)

// ReadOnlyMiddleware restricts non-admin callers to GET requests when the
// deployment runs in read-only mode (demo instances). Mounted after auth,
// so login and register are unaffected.
func ReadOnlyMiddleware(readOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !readOnly || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if ident, ok := r.Context().Value("identity").(models.Identity); ok && ident.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}

			http.Error(w, "Read-only mode: only GET requests are allowed", http.StatusForbidden)
		})
	}
}
