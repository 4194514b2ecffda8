package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/service"
)

type AuthHandler struct {
	auth     service.AuthService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		logger:   logger,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	input := new(registerRequest)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.auth.Register(c.UserContext(), input.Name, input.Email, input.Password)
	if err != nil {
		h.logger.Warn(
			"register failed",
			zap.String("email", input.Email),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	input := new(loginRequest)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tokens, err := h.auth.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	input := new(refreshRequest)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tokens, err := h.auth.Refresh(c.UserContext(), input.RefreshToken)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(tokens)
}
