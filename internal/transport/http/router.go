package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MarcosDev98/ecommerce/internal/transport/http/handler"
	"github.com/MarcosDev98/ecommerce/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Storefront is alive!")
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)

	// Catalog browsing stays public.
	app.Get("/products", h.Product.List)
	app.Get("/products/:id", h.Product.FindByID)

	api := app.Group("/api", middleware.NewAuthMiddleware())
	api.Get("/me", h.User.GetMe)

	admin := middleware.NewAdminMiddleware()

	product := api.Group("/products")
	product.Post("", admin, h.Product.Create)
	product.Patch("/:id", admin, h.Product.Update)
	product.Delete("/:id", admin, h.Product.Delete)

	order := api.Group("/orders")
	order.Post("", h.Order.Create)
	order.Get("/my-orders", h.Order.MyOrders)
	order.Get("", admin, h.Order.FindAll)
	order.Get("/:id", h.Order.FindOne)
	order.Patch("/:id", admin, h.Order.UpdateStatus)
	order.Delete("/:id", h.Order.Remove)

	user := api.Group("/users", admin)
	user.Get("", h.User.List)
	user.Get("/:id", h.User.FindByID)
	user.Patch("/:id", h.User.Update)
	user.Delete("/:id", h.User.Delete)
}
