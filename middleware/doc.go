// Package middleware exposes an HTTP adapter for protecting routes on the
// issuing service itself with Engine.ValidateAccess.
//
// It translates HTTP semantics into one Engine call: read the Authorization
// header, validate, inject the result into the request context. It makes no
// authorization decisions of its own. Downstream services should use the
// validator package instead, which adds the remote revocation confirmation.
package middleware
