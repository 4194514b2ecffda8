package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/service"
)

type UserHandler struct {
	users    service.UserService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewUserHandler(users service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	user, err := h.users.FindByID(c.UserContext(), userId)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		h.logger.Warn("list users failed", zap.Error(err))
		return fail(c, err)
	}

	return c.JSON(users)
}

func (h *UserHandler) FindByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	user, err := h.users.FindByID(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	input := new(domain.UpdateUserInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.users.Update(c.UserContext(), int64(id), input); err != nil {
		h.logger.Warn(
			"update user failed",
			zap.Int("user_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := h.users.Delete(c.UserContext(), int64(id)); err != nil {
		h.logger.Warn(
			"delete user failed",
			zap.Int("user_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
