package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/forttask/forttask/internal/auth"
	"github.com/forttask/forttask/internal/session"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "forttask_session"

// RequireAuth verifies the session token (cookie or Authorization bearer)
// and injects the identity into the request context. Unauthenticated
// requests get a 401 JSON body; this is a JSON API, not a page server, so
// there is no login redirect.
func RequireAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}

			identity, err := sessions.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
