package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/internal/service"
	transport "github.com/MarcosDev98/ecommerce/internal/transport/http"
	"github.com/MarcosDev98/ecommerce/internal/transport/http/handler"
	"github.com/MarcosDev98/ecommerce/pkg/config"
	"github.com/MarcosDev98/ecommerce/pkg/db"
	"github.com/MarcosDev98/ecommerce/pkg/utils"
	"github.com/MarcosDev98/ecommerce/pkg/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "storefront")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(utils.ParseWithFallback("DB_URL", cfg.Postgres.URL))
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("error syncing logger: %v", err)
		}
	}()

	logger.Info("storefront started!")

	userRepository := repository.NewUserRepository(pool, logger)
	productRepository := repository.NewProductRepository(pool, logger)
	orderRepository := repository.NewOrderRepository(pool, logger)

	userService := service.NewUserService(userRepository, logger)
	authService := service.NewAuthService(userRepository, logger, validator.NewValidator())
	productService := service.NewProductService(pool, logger, productRepository)
	cachedProductService := service.NewCachedProductService(productService, rdb, cfg.Redis.CacheTTL)
	orderService := service.NewOrderService(pool, logger, orderRepository, productRepository, userRepository)

	app := fiber.New(fiber.Config{
		ReadTimeout: cfg.HTTP.Timeout,
	})

	transport.RegisterRoutes(app, &transport.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Product: handler.NewProductHandler(cachedProductService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		User:    handler.NewUserHandler(userService, logger),
	})

	go func() {
		log.Println("HTTP storefront listening on port: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening HTTP on port %v: %v", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("Stopped HTTP server successfully")
	}

	if err := rdb.Close(); err != nil {
		log.Printf("Error closing redis client: %v", err)
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}
