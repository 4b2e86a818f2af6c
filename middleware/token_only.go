package middleware

import (
	"context"
	"net/http"

	sessiongate "github.com/zeroleaf/sessiongate"
	"github.com/zeroleaf/sessiongate/jwt"
)

// TokenOnly guards a handler with signature and expiry checks alone, never
// touching the revocation store. Revoked-but-unexpired tokens pass; use
// [Guard] wherever revocation must be honored.
func TokenOnly(tokens *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || tokens == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil || claims.Kind != jwt.KindAccess {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res := &sessiongate.AuthResult{UserID: claims.Subject, Roles: claims.Roles}
			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
