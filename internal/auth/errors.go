package auth

import "errors"

// Verification failures. All four are terminal for the current request:
// retrying without external remediation (re-login, a fresh reset code)
// cannot succeed.
var (
	// ErrMissingCredential means no token was presented at all.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidSignature covers tampered, malformed and wrong-kind tokens.
	// Lower-level parse errors from the JWT library are normalized into it.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpired means the token was valid but its lifetime has elapsed.
	ErrExpired = errors.New("token expired")

	// ErrForbidden means the identity is valid but its role is not allowed.
	ErrForbidden = errors.New("role not permitted")
)
