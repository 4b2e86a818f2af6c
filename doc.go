// Package sessiongate issues, rotates, and revokes paired access/refresh
// session tokens, and answers "is this token still usable" on every decode.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// sessiongate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, AuthResult, MetricsSnapshot). Token signing
// lives in the jwt subpackage, revocation state in the revocation subpackage;
// neither imports this package back.
//
// # What this package must NOT do
//
//   - Expose the Redis client or revocation key layout in its public API.
//   - Distinguish externally between the reasons a token is rejected
//     (signature, expiry, kind, not-before, revocation) - they all collapse
//     to [ErrTokenInvalid].
//   - Treat a revocation-store failure as either "valid" or "revoked";
//     [ErrStoreUnavailable] propagates to the caller.
package sessiongate
