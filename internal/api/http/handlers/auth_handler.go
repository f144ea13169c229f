package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/dto"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/service"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	authService   *service.AuthService
	notifications *service.NotificationService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, notifications *service.NotificationService) *AuthHandler {
	return &AuthHandler{authService: authService, notifications: notifications}
}

// Register POST /api/auth/registrar.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("name and email required", nil)
	}

	user, err := h.authService.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		CPF:      req.CPF,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, expiresAt, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        userResponse(user),
	}})
}

// Profile GET /api/auth/perfil.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": userResponse(principal.User)})
}

// UpdateProfile PATCH /api/auth/perfil.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.authService.UpdateProfile(c.UserContext(), principal.User.ID, req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// MarkNotificationsSeen POST /api/auth/notificacoes/visto.
func (h *AuthHandler) MarkNotificationsSeen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.notifications.MarkSeen(c.UserContext(), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"seen": true}})
}

// RequestPasswordReset POST /api/auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	// The response is identical whether or not the email exists.
	if _, err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "if the email exists, a reset link was sent"}})
}

// ConfirmPasswordReset POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new_password required", nil)
	}
	if err := h.authService.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                  user.ID,
		Name:                user.Name,
		Email:               user.Email,
		CPF:                 user.CPF,
		Phone:               user.Phone,
		Admin:               user.Admin,
		CreatedAt:           user.CreatedAt,
		LastLoginAt:         user.LastLoginAt,
		NotificationsSeenAt: user.NotificationsSeenAt,
	}
}
