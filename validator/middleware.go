package validator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/zeroleaf/sessiongate/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified access claims injected by
// [Middleware].
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// Middleware guards an http.Handler with v.Authorize. Rejections map to:
// missing/invalid token 401, role mismatch 403, authority denial its own
// status (with the authority's detail when present).
func Middleware(v *Validator, requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := v.Authorize(r.Context(), token, requiredRoles)
			if err != nil {
				status, detail := rejectStatus(err)
				writeDetail(w, status, detail)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectStatus(err error) (int, string) {
	var authority *AuthorityError
	switch {
	case errors.As(err, &authority):
		return authority.StatusCode, authority.Detail
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden, "access denied"
	default:
		return http.StatusUnauthorized, "invalid token"
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if detail == "" {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
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
