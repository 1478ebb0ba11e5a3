package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cloudvault/cloudvault/internal/provider"
)

type AuthHandler struct {
	provider *provider.MongoProvider
}

func NewAuthHandler(p *provider.MongoProvider) *AuthHandler {
	return &AuthHandler{provider: p}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.provider.Register(c.Context(), request.Username, request.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "User registered successfully", "user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	creds, err := h.provider.Login(c.Context(), request.Username, request.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"token":    creds.Token,
		"username": creds.Username,
	})
}
