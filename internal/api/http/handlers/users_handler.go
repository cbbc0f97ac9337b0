package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/api/dto"
	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/domain"
	"github.com/HowsAir/server-sub001/internal/repository"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users repository.UserRepository
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users repository.UserRepository) *UsersHandler {
	return &UsersHandler{users: users}
}

// Profile handles GET /users/me. The principal comes from the verified
// session token; the repo lookup only fills in profile fields.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing credential")
	}

	user, err := h.users.GetByID(c.Context(), principal.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"user": userResponse(user)}})
}

// List handles GET /users, admin only.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": out}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Surnames: user.Surnames,
		Email:    user.Email,
		RoleID:   int(user.RoleID),
	}
}
