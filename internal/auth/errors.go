package auth

import "errors"

// Credential and authorization errors. Which credential check failed is
// never surfaced to clients: every credential failure maps to the same
// generic response to avoid enumeration.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrExpiredCredential   = errors.New("expired credential")
	ErrUnauthenticatedUser = errors.New("no authenticated user")
	ErrInsufficientRole    = errors.New("insufficient role")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrTierUpgradeRequired = errors.New("subscription tier upgrade required")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
)
