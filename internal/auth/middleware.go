package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/domain"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

const (
	principalKey  = "auth_principal"
	resetUserKey  = "auth_reset_user_id"
	verifiedEmail = "auth_verified_email"
)

// Principal is the authenticated identity extracted from a session token.
// It is produced only by successful verification; no database lookup happens
// on the hot path.
type Principal struct {
	UserID int64
	RoleID domain.Role
}

// Middleware verifies token cookies on protected routes.
type Middleware struct {
	codec   *TokenCodec
	cookies *CookieWriter
}

// NewMiddleware constructs the verifier middleware set.
func NewMiddleware(codec *TokenCodec, cookies *CookieWriter) *Middleware {
	return &Middleware{codec: codec, cookies: cookies}
}

// RequireSession validates the session cookie and attaches the Principal to
// the request. Requests without a valid session never reach the handler.
func (m *Middleware) RequireSession(c *fiber.Ctx) error {
	claims, err := m.codec.Verify(KindSession, m.cookies.Read(c, KindSession))
	if err != nil {
		return unauthorized(err)
	}

	c.Locals(principalKey, &Principal{UserID: claims.UserID, RoleID: claims.RoleID})
	return c.Next()
}

// RequirePasswordResetToken validates the password-reset cookie and exposes
// the user id it was issued for. The token only exists for users who already
// presented a valid reset code.
func (m *Middleware) RequirePasswordResetToken(c *fiber.Ctx) error {
	claims, err := m.codec.Verify(KindPasswordReset, m.cookies.Read(c, KindPasswordReset))
	if err != nil {
		return unauthorized(err)
	}

	c.Locals(resetUserKey, claims.UserID)
	return c.Next()
}

// RequireEmailVerificationToken validates the email-verification cookie and
// exposes the verified email. Comparing it against the email in the request
// body is the handler's job.
func (m *Middleware) RequireEmailVerificationToken(c *fiber.Ctx) error {
	claims, err := m.codec.Verify(KindEmailVerification, m.cookies.Read(c, KindEmailVerification))
	if err != nil {
		return unauthorized(err)
	}

	c.Locals(verifiedEmail, claims.Email)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// ResetUserFromContext retrieves the user id attached by the reset verifier.
func ResetUserFromContext(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(resetUserKey).(int64)
	return id, ok
}

// VerifiedEmailFromContext retrieves the email attached by the email verifier.
func VerifiedEmailFromContext(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(verifiedEmail).(string)
	return email, ok && email != ""
}

func unauthorized(err error) error {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return apperrors.NewUnauthorized("missing credential")
	case errors.Is(err, ErrExpired):
		return apperrors.NewUnauthorized("token expired")
	default:
		return apperrors.NewUnauthorized("invalid token")
	}
}
