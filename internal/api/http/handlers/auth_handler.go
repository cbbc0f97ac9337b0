package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/api/dto"
	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/service"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// AuthHandler exposes registration, login and the reset/verification flows.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.CookieWriter
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieWriter) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Register handles POST /auth/register. It runs behind the email
// verification middleware: the address decoded from the verification token
// must match the address in the body.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	verifiedEmail, ok := auth.VerifiedEmailFromContext(c)
	if !ok || verifiedEmail != req.Email {
		return apperrors.NewForbidden("email not verified")
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Surnames, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Attach(c, auth.KindSession, token, exp)
	h.cookies.Clear(c, auth.KindEmailVerification)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Attach(c, auth.KindSession, token, exp)

	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Logout handles POST /auth/logout by expiring the session cookie. Issued
// tokens stay valid until their expiry; there is no server-side session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c, auth.KindSession)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// RequestEmailVerification handles POST /auth/email/code.
func (h *AuthHandler) RequestEmailVerification(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.auth.RequestEmailVerification(c.Context(), req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "verification code sent"},
	})
}

// ConfirmEmailVerification handles POST /auth/email/confirm. On a matching
// code the email-verification cookie is set for the follow-up registration.
func (h *AuthHandler) ConfirmEmailVerification(c *fiber.Ctx) error {
	var req dto.CodeConfirmRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("email and code required", nil)
	}

	token, exp, err := h.auth.ConfirmEmailVerification(c.Context(), req.Email, req.Code)
	if err != nil {
		return err
	}

	h.cookies.Attach(c, auth.KindEmailVerification, token, exp)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "email verified"}})
}

// RequestPasswordReset handles POST /auth/password/forgot. The response does
// not reveal whether the address is registered.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "if the email exists, a code was sent"},
	})
}

// ValidateResetCode handles POST /auth/password/code. On a matching code the
// password-reset cookie is set for the follow-up password change.
func (h *AuthHandler) ValidateResetCode(c *fiber.Ctx) error {
	var req dto.CodeConfirmRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("email and code required", nil)
	}

	token, exp, err := h.auth.ValidatePasswordResetCode(c.Context(), req.Email, req.Code)
	if err != nil {
		return err
	}

	h.cookies.Attach(c, auth.KindPasswordReset, token, exp)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "code accepted"}})
}

// CompletePasswordReset handles PUT /auth/password/reset behind the
// password-reset token middleware.
func (h *AuthHandler) CompletePasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return apperrors.NewValidationError("password required", nil)
	}

	userID, ok := auth.ResetUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing credential")
	}

	if err := h.auth.CompletePasswordReset(c.Context(), userID, req.Password); err != nil {
		return err
	}

	h.cookies.Clear(c, auth.KindPasswordReset)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// ChangePassword handles PUT /auth/password/change behind the session
// middleware.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing credential")
	}

	if err := h.auth.ChangePassword(c.Context(), principal.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}
