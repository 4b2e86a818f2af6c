// Package validator authorizes requests in downstream services against
// tokens minted by the issuing authority.
//
// A request passes three gates: local signature/expiry verification of the
// access token (no network), an optional role-intersection check, and a
// best-effort remote confirmation that the token has not been revoked since
// issuance. The remote gate fails open on transport errors, timeouts, and
// authority-side faults (>=500): revocation checking is a secondary
// hardening layer, and its unavailability must not take the downstream
// service down with it. Any other non-success answer from the authority
// fails closed with the authority's status and detail.
package validator
