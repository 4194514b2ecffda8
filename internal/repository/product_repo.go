package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

type ProductRepository interface {
	Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetForOrder(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id int64) error
	DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error
	IncreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error
	GetStock(ctx context.Context, id int64) (int32, error)
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("storefront/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	query := `
		INSERT INTO products (name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`

	err := tx.QueryRow(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating product: %w", err)
	}

	imageQuery := `
		INSERT INTO product_images (product_id, url)
		VALUES ($1, $2)
		RETURNING id;
	`

	for i := range product.Images {
		product.Images[i].ProductID = product.ID

		if err := tx.QueryRow(ctx, imageQuery, product.ID, product.Images[i].URL).
			Scan(&product.Images[i].ID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Error creating product image",
				zap.Int64("product_id", product.ID),
				zap.Error(err),
			)

			return 0, fmt.Errorf("error creating product image: %w", err)
		}
	}

	return product.ID, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, description, price, stock, created_at, deleted_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL;
	`

	var res domain.Product
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&res.ID, &res.Name, &res.Description, &res.Price,
			&res.Stock, &res.CreatedAt, &res.DeletedAt,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	images, err := r.imagesFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	res.Images = images[id]

	return &res, nil
}

// GetForOrder reads a product inside an order transaction, skipping
// soft-deleted rows. This is the inventory validator's read; the stock
// value it sees is advisory only, the decrement re-checks it.
func (r *productRepo) GetForOrder(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetForOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, price, stock
		FROM products
		WHERE id = $1 AND deleted_at IS NULL;
	`

	var res domain.Product
	if err := tx.QueryRow(ctx, query, id).
		Scan(&res.ID, &res.Name, &res.Price, &res.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error reading product for order",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error reading product for order: %w", err)
	}

	return &res, nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("limit", limit),
		attribute.Int64("offset", offset),
		attribute.String("search", search),
	)

	var products []domain.Product
	var totalCount int64

	baseQuery := `SELECT id, name, description, price, stock, created_at, deleted_at
		FROM products
		WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var args []interface{}
	argId := 1

	if search != "" {
		filter := fmt.Sprintf(" AND name ILIKE $%d", argId)
		baseQuery += filter
		countQuery += filter

		args = append(args, "%"+search+"%")
		argId++
	}

	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error getting products",
			zap.String("search", search),
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.CreatedAt,
			&p.DeletedAt,
		)
		if err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to scan rows",
				zap.Error(err),
			)

			return nil, 0, fmt.Errorf("error scanning rows: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Rows iteration error",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Images = images[products[i].ID]
	}

	var countArgs []interface{}
	if search != "" {
		countArgs = append(countArgs, args[0])
	}

	err = r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to count products",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, totalCount, nil
}

func (r *productRepo) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `UPDATE products SET `
	var args []interface{}
	argId := 1

	var updates []string

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argId))
		args = append(args, *input.Description)
		argId++
	}

	if input.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argId))
		args = append(args, *input.Price)
		argId++
	}

	if input.Stock != nil {
		updates = append(updates, fmt.Sprintf("stock = $%d", argId))
		args = append(args, *input.Stock)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	query += strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL", argId)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update product",
			zap.Int64("id", id),
		)

		return fmt.Errorf("error updating product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// SoftDelete marks the product and its images deleted in one shot.
// Images are exclusively owned by the product, so they go down with it.
func (r *productRepo) SoftDelete(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.SoftDelete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE products
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	commandTag, err := tx.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	imageQuery := `
		UPDATE product_images
		SET deleted_at = NOW()
		WHERE product_id = $1 AND deleted_at IS NULL
	`

	if _, err := tx.Exec(ctx, imageQuery, id); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting product images",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product images: %w", err)
	}

	return nil
}

// DecreaseStock is a single compare-and-decrement statement. Two
// concurrent orders can both pass the validator's read against the same
// stock snapshot; this WHERE clause is what actually prevents over-sale.
func (r *productRepo) DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DecreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1
			AND stock >= $2
			AND deleted_at IS NULL;
	`

	commandTag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error decreasing stock",
			zap.Int64("id", id),
			zap.Int32("quantity", quantity),
		)

		return fmt.Errorf("error decreasing stock for product %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// IncreaseStock restores inventory on order cancellation. Deliberately
// ignores the soft-delete marker: a cancelled order returns stock even
// to a product that was removed from the catalog in the meantime.
func (r *productRepo) IncreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.IncreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE products
		SET stock = stock + $1
		WHERE id = $2
	`

	commandTag, err := tx.Exec(ctx, query, quantity, id)
	if err != nil {
		span.RecordError(err)
		mylogger.Warn(ctx, r.logger, "Failed to restore stock", zap.Error(err))

		return err
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(ctx, r.logger, "Product not found", zap.Int64("product_id", id))
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) GetStock(ctx context.Context, id int64) (int32, error) {
	query := `SELECT stock FROM products WHERE id = $1`

	var stock int32
	if err := r.pool.QueryRow(ctx, query, id).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}

		return 0, fmt.Errorf("error reading stock: %w", err)
	}

	return stock, nil
}

func (r *productRepo) imagesFor(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error) {
	result := make(map[int64][]domain.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, product_id, url
		FROM product_images
		WHERE product_id = ANY($1) AND deleted_at IS NULL
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query product images",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL); err != nil {
			return nil, fmt.Errorf("error scanning product image: %w", err)
		}

		result[img.ProductID] = append(result[img.ProductID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
