package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/auth"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// AuthHandler espone registrazione e login degli operatori.
type AuthHandler struct {
	authUC *auth.AuthUseCase
}

func NewAuthHandler(authUC *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUC: authUC}
}

// Register gestisce POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
	}
	resp, err := h.authUC.RegisterUser(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login gestisce POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
	}
	resp, err := h.authUC.Login(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
