// Package revocation maps a user identity and a token to "is this token
// still usable", backed by Redis. It owns three record families per user:
//
//   - refresh:{userId} - set of refresh jtis currently eligible for rotation;
//   - revoked:{userId} - set of access jtis invalidated before natural expiry;
//   - not_before:{userId} - a cutover timestamp that invalidates every token
//     issued earlier, regardless of the sets above.
//
// All coordination is pushed into Redis's per-key atomic primitives; the
// package holds no in-process state and takes no locks. SREM's removed-count
// reply is the atomic remove-and-return-whether-present primitive that makes
// refresh consumption single-use under concurrent rotation.
//
// Any backend failure wraps [ErrStoreUnavailable]. Callers must propagate it:
// an unreachable store means "usability unknown", not "valid" and not
// "revoked".
package revocation
