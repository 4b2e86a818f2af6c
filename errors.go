package sessiongate

import (
	"errors"

	"github.com/zeroleaf/sessiongate/revocation"
)

var (
	// ErrInvalidCredentials is returned by [Engine.Login] for an unknown
	// login name or a wrong password. The two cases are never distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid is the uniform rejection for any presented token:
	// bad signature, expired, wrong kind, issued before the user's
	// not-before marker, consumed, or revoked.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrStoreUnavailable reports that the revocation backend could not be
	// reached. Callers must treat it as "usability unknown", never as a
	// verdict on the token.
	ErrStoreUnavailable = revocation.ErrStoreUnavailable

	// ErrUserNotFound is returned by [UserStore] implementations when no
	// record matches. The engine maps it to ErrInvalidCredentials or
	// ErrTokenInvalid before it ever reaches an external caller.
	ErrUserNotFound = errors.New("user not found")

	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
