package sessiongate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zeroleaf/sessiongate/jwt"
	"github.com/zeroleaf/sessiongate/password"
	"github.com/zeroleaf/sessiongate/revocation"
)

// Engine orchestrates the session token lifecycle: minting pairs, rotating
// refresh tokens, and invalidating sessions one at a time or all-but-current.
// Immutable after [Builder.Build]; safe for concurrent use.
type Engine struct {
	config  Config
	tokens  *jwt.Manager
	cache   *revocation.Cache
	users   UserStore
	hasher  *password.Argon2
	metrics *Metrics
	log     *slog.Logger
}

// Tokens exposes the engine's token primitive so downstream components (the
// validator, transport adapters) verify against the same keys and lifetimes.
func (e *Engine) Tokens() *jwt.Manager {
	if e == nil {
		return nil
	}
	return e.tokens
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Login verifies the password for a login name and issues a token pair.
// Unknown login and wrong password are deliberately indistinguishable: both
// return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, login, pass string) (*TokenPair, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.Inc(MetricLoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	pair, _, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	e.metrics.Inc(MetricLoginSuccess)
	return pair, nil
}

// issuePair is the single path by which any token pair enters circulation:
// mint refresh, mint access referencing the refresh jti and snapshotting the
// user's roles, then record the refresh jti as active.
func (e *Engine) issuePair(ctx context.Context, user *User) (*TokenPair, *jwt.Claims, error) {
	refreshToken, refreshClaims, err := e.tokens.MintRefresh(user.ID)
	if err != nil {
		return nil, nil, err
	}
	accessToken, _, err := e.tokens.MintAccess(user.ID, refreshClaims.ID, user.Roles)
	if err != nil {
		return nil, nil, err
	}
	if err := e.cache.RecordIssuedRefresh(ctx, user.ID, refreshClaims.ID, refreshClaims.ExpiresAt.Time); err != nil {
		e.warnStore(ctx, "record refresh", err)
		return nil, nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, refreshClaims, nil
}

// Refresh rotates a refresh token: the presented token must be of refresh
// kind and currently usable; a new pair is issued and recorded before the
// old jti is consumed, so rotation never leaves the user with zero usable
// refresh tokens. Each refresh token rotates at most once.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.checkToken(ctx, refreshToken, jwt.KindRefresh)
	if err != nil {
		e.countReject(err, MetricRefreshFailure)
		return nil, err
	}

	user, err := e.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.Inc(MetricRefreshFailure)
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	pair, _, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	consumed, err := e.cache.ConsumeRefresh(ctx, user.ID, claims.ID)
	if err != nil {
		e.warnStore(ctx, "consume refresh", err)
		return nil, err
	}
	if !consumed {
		// Lost the race to a concurrent rotation of the same token.
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrTokenInvalid
	}

	e.metrics.Inc(MetricRefreshSuccess)
	return pair, nil
}

// Logout closes the presenting session: the access token is revoked and its
// paired refresh token is consumed, without the client re-presenting the
// refresh half. Other sessions of the same user are untouched.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	claims, err := e.checkToken(ctx, accessToken, jwt.KindAccess)
	if err != nil {
		e.countReject(err, MetricLogoutFailure)
		return err
	}

	if err := e.cache.RevokeAccess(ctx, claims.Subject, claims.ID, claims.ExpiresAt.Time); err != nil {
		e.warnStore(ctx, "revoke access", err)
		return err
	}
	if claims.RefreshJTI != "" {
		if _, err := e.cache.ConsumeRefresh(ctx, claims.Subject, claims.RefreshJTI); err != nil {
			e.warnStore(ctx, "consume paired refresh", err)
			return err
		}
	}

	e.metrics.Inc(MetricLogout)
	return nil
}

// LogoutOthers invalidates every token of the user issued before this call
// and returns a fresh pair for the caller. Instead of enumerating sessions,
// it sets the user's not-before marker to the new refresh token's issued-at:
// one timestamp comparison replaces a per-session lookup.
func (e *Engine) LogoutOthers(ctx context.Context, accessToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.checkToken(ctx, accessToken, jwt.KindAccess)
	if err != nil {
		return nil, err
	}

	user, err := e.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	pair, refreshClaims, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetNotBefore(ctx, user.ID, refreshClaims.IssuedAt.Time, refreshClaims.ExpiresAt.Time); err != nil {
		e.warnStore(ctx, "set not-before", err)
		return nil, err
	}

	e.metrics.Inc(MetricLogoutOthers)
	return pair, nil
}

// ValidateAccess runs the generic verification path on an access token and
// returns the authenticated subject with its issuance-time roles.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.checkToken(ctx, accessToken, jwt.KindAccess)
	if err != nil {
		e.countReject(err, MetricValidateFailure)
		return nil, err
	}

	e.metrics.Inc(MetricValidateSuccess)
	return &AuthResult{UserID: claims.Subject, Roles: claims.Roles}, nil
}

// checkToken is the generic verification path: signature and expiry, then
// kind, then the not-before marker, then kind-specific usability. The
// not-before check runs before the membership checks because the marker
// invalidates tokens that were never individually tracked. Every rejection
// collapses to ErrTokenInvalid; only a store failure surfaces differently.
func (e *Engine) checkToken(ctx context.Context, token string, kind jwt.Kind) (*jwt.Claims, error) {
	claims, err := e.tokens.Parse(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	ok, err := e.cache.IssuedAfterNotBefore(ctx, claims.Subject, claims.IssuedAt.Time)
	if err != nil {
		e.warnStore(ctx, "not-before check", err)
		return nil, err
	}
	if !ok {
		return nil, ErrTokenInvalid
	}

	var usable bool
	switch kind {
	case jwt.KindRefresh:
		usable, err = e.cache.IsRefreshUsable(ctx, claims.Subject, claims.ID)
	default:
		usable, err = e.cache.IsAccessUsable(ctx, claims.Subject, claims.ID)
	}
	if err != nil {
		e.warnStore(ctx, "usability check", err)
		return nil, err
	}
	if !usable {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (e *Engine) countReject(err error, failure MetricID) {
	// Store failures are already counted where they were observed.
	if errors.Is(err, ErrStoreUnavailable) {
		return
	}
	e.metrics.Inc(failure)
}

func (e *Engine) warnStore(ctx context.Context, op string, err error) {
	e.metrics.Inc(MetricStoreUnavailable)
	e.log.WarnContext(ctx, "revocation store unavailable", "op", op, "error", err)
}
