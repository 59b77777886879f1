package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserIDHeader names the header the deployment's auth proxy populates
// with the authenticated user.
const UserIDHeader = "X-User-ID"

// Middleware copies the authenticated user identity from the request
// header into the request context. Requests without a valid header pass
// through unauthenticated; handlers decide whether that is an error.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(ContextWithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
