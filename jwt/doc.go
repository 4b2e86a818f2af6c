// Package jwt is the token primitive: it mints and verifies the signed,
// expiring, claim-bearing tokens the engine hands out. Every token carries a
// unique issuance id (jti) and an issued-at timestamp; access tokens
// additionally embed their paired refresh token's jti and a snapshot of the
// user's roles.
//
// The package knows nothing about revocation. Whether a syntactically valid
// token is still usable is the engine's question, answered by the revocation
// package.
package jwt
