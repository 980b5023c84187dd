package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/joey603/sidour-avoda/internal/api/dto"
	"github.com/joey603/sidour-avoda/internal/auth"
	"github.com/joey603/sidour-avoda/internal/domain"
	"github.com/joey603/sidour-avoda/internal/service"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and identity endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, token, _, err := h.auth.Register(c.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.TokenResponse{AccessToken: token})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Login() == "" || req.Password == "" {
		return apperrors.NewValidationError("email or phone and password required", nil)
	}

	_, token, _, err := h.auth.Login(c.Context(), req.Login(), req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{AccessToken: token})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user := principal.User
	return c.JSON(dto.MeResponse{
		ID:           user.ID,
		Role:         string(user.Role),
		FullName:     user.FullName,
		DirectorCode: user.DirectorCode,
	})
}
