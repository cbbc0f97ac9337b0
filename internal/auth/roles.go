package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/domain"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// Authorize reports whether the principal's role is in the allowed set. It
// returns ErrMissingCredential for a nil principal and ErrForbidden when the
// role is not allowed. An empty allowed set denies everyone.
func Authorize(principal *Principal, allowed ...domain.Role) error {
	if principal == nil {
		return ErrMissingCredential
	}
	for _, role := range allowed {
		if principal.RoleID == role {
			return nil
		}
	}
	return ErrForbidden
}

// RequireRole authorizes the request when the session principal's role is in
// the allowed set. It must run after RequireSession has attached the
// Principal.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		switch err := Authorize(principal, allowed...); {
		case errors.Is(err, ErrMissingCredential):
			return apperrors.NewUnauthorized("missing credential")
		case errors.Is(err, ErrForbidden):
			return apperrors.NewForbidden("insufficient role")
		default:
			return c.Next()
		}
	}
}
