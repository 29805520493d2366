/*
middleware.go - Request-scoped identity for chi

PURPOSE:
  Authenticate parses a Bearer token (when present) and stashes the
  resolved identity in the request context. RequireIdentity and
  RequireAdmin guard route groups. Handlers read the identity back with
  IdentityFrom.
*/
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/warp/attendance-engine/tracker"
)

type contextKey struct{}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (tracker.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(tracker.Identity)
	return id, ok && !id.IsZero()
}

// Authenticate resolves a Bearer token into an identity when one is
// presented. Requests without a token continue anonymously; the
// Require* middlewares decide whether that is acceptable.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.IdentityFromToken(r.Context(), raw)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but the virtual admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !identity.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
