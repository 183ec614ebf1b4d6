package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// AuthHandler issues staff session tokens.
type AuthHandler struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(users repository.UserRepository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, passwordHash, err := h.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.NewPersistenceError("user lookup", err)
	}

	if err := auth.ComparePassword(passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.FullName, user.Role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		FullName:  user.FullName,
		Role:      user.Role,
	}})
}
