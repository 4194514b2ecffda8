package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	productRepo repository.ProductRepository
	tracer      trace.Tracer
}

func NewProductService(pool *pgxpool.Pool, logger *zap.Logger, productRepo repository.ProductRepository) ProductService {
	return &productService{
		pool:        pool,
		logger:      logger,
		productRepo: productRepo,
		tracer:      otel.Tracer("storefront/product_service"),
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	if product.Price.IsNegative() {
		return 0, fmt.Errorf("product price cannot be negative")
	}
	if product.Stock < 0 {
		return 0, fmt.Errorf("product stock cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	id, err := s.productRepo.Create(ctx, tx, product)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.List")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.productRepo.List(ctx, limit, offset, search)
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if input.Price != nil && input.Price.IsNegative() {
		return fmt.Errorf("product price cannot be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}

	return s.productRepo.Update(ctx, id, input)
}

// Delete soft-deletes the product together with its images; historical
// order items keep referencing the row.
func (s *productService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	if err := s.productRepo.SoftDelete(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
