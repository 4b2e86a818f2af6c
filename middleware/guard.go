package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sessiongate "github.com/zeroleaf/sessiongate"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validation result injected by [Guard].
func AuthResultFromContext(ctx context.Context) (*sessiongate.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*sessiongate.AuthResult)
	return res, ok
}

// Guard wraps a handler with access-token validation. Any rejection is a
// uniform 401; a revocation-store outage is a 500, never an allow.
func Guard(engine *sessiongate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.ValidateAccess(r.Context(), token)
			if err != nil {
				if errors.Is(err, sessiongate.ErrStoreUnavailable) {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
