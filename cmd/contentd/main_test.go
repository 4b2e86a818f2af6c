package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zeroleaf/sessiongate/jwt"
	"github.com/zeroleaf/sessiongate/validator"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T) *jwt.Manager {
	t.Helper()

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    240 * time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    testSecret,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return tokens
}

func newTestRouter(t *testing.T, authority http.HandlerFunc) (*jwt.Manager, http.Handler) {
	t.Helper()

	srv := httptest.NewServer(authority)
	t.Cleanup(srv.Close)

	tokens := newTestManager(t)
	guard, err := validator.New(validator.Config{
		Tokens:       tokens,
		AuthorityURL: srv.URL,
		Timeout:      time.Second,
	})
	if err != nil {
		t.Fatalf("validator.New failed: %v", err)
	}
	return tokens, newRouter(guard)
}

func getContent(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func responseDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body decode failed: %v", err)
	}
	return body.Detail
}

func TestContentServedWhenAuthorityConfirms(t *testing.T) {
	tokens, router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	token, _, err := tokens.MintAccess("user-1", "rjti-1", []string{"role1"})
	if err != nil {
		t.Fatalf("MintAccess failed: %v", err)
	}

	rec := getContent(t, router, "/api/v1/dummy/content_1", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// A denial detail from the authority must reach the caller under the same
// body shape the authority used.
func TestAuthorityDenialDetailPassesThrough(t *testing.T) {
	tokens, router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Token revoked"}`))
	})
	token, _, err := tokens.MintAccess("user-1", "rjti-1", []string{"role1"})
	if err != nil {
		t.Fatalf("MintAccess failed: %v", err)
	}

	rec := getContent(t, router, "/api/v1/dummy/content_1", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := responseDetail(t, rec); got != "Token revoked" {
		t.Fatalf("detail = %q, want %q", got, "Token revoked")
	}
}

func TestRoleMismatchRejectedWithDetail(t *testing.T) {
	calls := 0
	tokens, router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	})
	token, _, err := tokens.MintAccess("user-2", "rjti-2", []string{"role2"})
	if err != nil {
		t.Fatalf("MintAccess failed: %v", err)
	}

	rec := getContent(t, router, "/api/v1/dummy/content_1", token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := responseDetail(t, rec); got != "access denied" {
		t.Fatalf("detail = %q, want %q", got, "access denied")
	}
	if calls != 0 {
		t.Fatalf("authority calls = %d, want 0 for a role mismatch", calls)
	}
}

func TestMissingBearerRejected(t *testing.T) {
	_, router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dummy/content_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := responseDetail(t, rec); got != "missing bearer token" {
		t.Fatalf("detail = %q, want %q", got, "missing bearer token")
	}
}
