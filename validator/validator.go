package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sessiongate "github.com/zeroleaf/sessiongate"
	"github.com/zeroleaf/sessiongate/jwt"
)

// ErrAccessDenied is returned when the token carries none of the required
// roles. Terminal: no authority call is made.
var ErrAccessDenied = errors.New("access denied")

// AuthorityError is the fail-closed outcome: the authority answered with a
// non-success, non-fault status. StatusCode is the authority's status;
// Detail is its parsed detail message, empty when the body was not
// parseable.
type AuthorityError struct {
	StatusCode int
	Detail     string
}

func (e *AuthorityError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("authority denied: status %d", e.StatusCode)
	}
	return fmt.Sprintf("authority denied: status %d: %s", e.StatusCode, e.Detail)
}

const defaultTimeout = 5 * time.Second

// Config assembles a Validator. Tokens is required and must verify with the
// same keys and algorithm as the issuing authority; AuthorityURL is the
// authority's validation endpoint.
type Config struct {
	Tokens       *jwt.Manager
	AuthorityURL string
	Timeout      time.Duration
	Logger       *slog.Logger
	Metrics      *sessiongate.Metrics
}

// Validator checks access tokens for downstream services. Immutable after
// New; safe for concurrent use.
type Validator struct {
	tokens       *jwt.Manager
	authorityURL string
	client       *http.Client
	log          *slog.Logger
	metrics      *sessiongate.Metrics
}

// New builds a Validator with a pooled HTTP client bounded by cfg.Timeout.
func New(cfg Config) (*Validator, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("token manager required")
	}
	if cfg.AuthorityURL == "" {
		return nil, errors.New("authority URL required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		tokens:       cfg.Tokens,
		authorityURL: cfg.AuthorityURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:     logger,
		metrics: cfg.Metrics,
	}, nil
}

// Authorize decides whether a request carrying the given access token may
// proceed. requiredRoles empty means any authenticated subject passes the
// role gate. Returns nil to allow; sessiongate.ErrTokenInvalid,
// ErrAccessDenied, or *AuthorityError to reject.
func (v *Validator) Authorize(ctx context.Context, token string, requiredRoles []string) (*jwt.Claims, error) {
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return nil, sessiongate.ErrTokenInvalid
	}
	if claims.Kind != jwt.KindAccess {
		return nil, sessiongate.ErrTokenInvalid
	}

	if len(requiredRoles) > 0 && !intersects(claims.Roles, requiredRoles) {
		return nil, ErrAccessDenied
	}

	if err := v.confirmLive(ctx, token); err != nil {
		return nil, err
	}
	return claims, nil
}

// confirmLive forwards the bearer credential to the authority's validation
// endpoint and applies the fail-open/fail-closed policy.
func (v *Validator) confirmLive(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.authorityURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		v.failOpen(ctx, "authority unreachable", err)
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		v.failOpen(ctx, "authority fault", fmt.Errorf("status %d", resp.StatusCode))
		return nil
	}

	v.metrics.Inc(sessiongate.MetricAuthorityDenied)
	return &AuthorityError{StatusCode: resp.StatusCode, Detail: parseDetail(resp)}
}

func (v *Validator) failOpen(ctx context.Context, reason string, err error) {
	v.metrics.Inc(sessiongate.MetricAuthorityFailOpen)
	v.log.WarnContext(ctx, "revocation check skipped, allowing request",
		"reason", reason, "error", err)
}

func parseDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
