package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/validator"
)

// statusFor maps business errors onto HTTP codes; anything unrecognized
// is a 500 and its text is not leaked to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrOrderAlreadyCancelled),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, validator.ErrPasswordTooShort),
		errors.Is(err, validator.ErrPasswordTooWeak):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		return c.Status(code).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
