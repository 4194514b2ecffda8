package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/money"
)

type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
		validate: validator.New(),
	}
}

type createProductRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description *string     `json:"description"`
	Price       money.Money `json:"price"`
	Stock       int32       `json:"stock" validate:"gte=0"`
	Images      []string    `json:"images" validate:"dive,url"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input := new(createProductRequest)

	if err := c.BodyParser(input); err != nil {
		h.logger.Warn(
			"failed to parse body in create product",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}
	for _, url := range input.Images {
		product.Images = append(product.Images, domain.ProductImage{URL: url})
	}

	id, err := h.products.Create(c.UserContext(), product)
	if err != nil {
		h.logger.Warn("create product failed", zap.Error(err))
		return fail(c, err)
	}

	h.logger.Info(
		"product created",
		zap.Int64("product_id", id),
	)

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	search := c.Query("search")

	products, total, err := h.products.List(c.UserContext(), limit, offset, search)
	if err != nil {
		h.logger.Warn("list products failed", zap.Error(err))
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	product, err := h.products.FindByID(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	input := new(domain.UpdateProductInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.products.Update(c.UserContext(), int64(id), input); err != nil {
		h.logger.Warn(
			"update product failed",
			zap.Int("product_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	if err := h.products.Delete(c.UserContext(), int64(id)); err != nil {
		h.logger.Warn(
			"delete product failed",
			zap.Int("product_id", id),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
