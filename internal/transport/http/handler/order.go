package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

type OrderHandler struct {
	orders   service.OrderService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		logger:   logger,
		validate: validator.New(),
	}
}

type createOrderRequest struct {
	Items []domain.RequestedItem `json:"items" validate:"required,min=1,dive"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	input := new(createOrderRequest)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in create order",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userId, ok := c.Locals("userId").(int64)
	if !ok {
		mylogger.Info(
			c.UserContext(),
			h.logger,
			"user_id get failed",
		)

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	order, err := h.orders.Create(c.UserContext(), userId, input.Items)
	if err != nil {
		h.logger.Warn(
			"create order failed",
			zap.Int64("user_id", userId),
			zap.Error(err),
		)

		return fail(c, err)
	}

	h.logger.Info(
		"create order succeeded",
		zap.Int64("created_id", order.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	grouped, err := h.orders.FindByUser(c.UserContext(), userId)
	if err != nil {
		h.logger.Warn(
			"find my orders failed",
			zap.Int64("user_id", userId),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(grouped)
}

func (h *OrderHandler) FindAll(c *fiber.Ctx) error {
	orders, err := h.orders.FindAll(c.UserContext())
	if err != nil {
		h.logger.Warn("find all orders failed", zap.Error(err))
		return fail(c, err)
	}

	return c.JSON(orders)
}

func (h *OrderHandler) FindOne(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.orders.FindOne(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(order)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	input := new(updateStatusRequest)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	status, err := domain.ParseOrderStatus(input.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.orders.UpdateStatus(c.UserContext(), int64(id), status); err != nil {
		h.logger.Warn(
			"update order status failed",
			zap.Int("order_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": string(status)})
}

func (h *OrderHandler) Remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	message, err := h.orders.Remove(c.UserContext(), int64(id))
	if err != nil {
		h.logger.Warn(
			"cancel order failed",
			zap.Int("order_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": message})
}
