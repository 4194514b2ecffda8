package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/pkg/money"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

// OrderRow is one flat row of the order × item × product × image left
// join. Item and image legs are null for orders without items and items
// without images; the projection fold in the service layer regroups them.
type OrderRow struct {
	OrderID         int64
	Total           money.Money
	Status          domain.OrderStatus
	CreatedAt       time.Time
	ItemID          *int64
	Quantity        *int32
	PriceAtPurchase money.Money
	ProductName     *string
	ImageURL        *string
}

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetWithItems(ctx context.Context, id int64) (*domain.Order, error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, id int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	FindAll(ctx context.Context) ([]domain.Order, error)
	RowsByUser(ctx context.Context, userID int64) ([]OrderRow, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("storefront/order_repo"),
	}
}

func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
		attribute.Int("items_count", len(order.Items)),
	)

	queryOrder := `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.UserID,
		order.Total,
		string(order.Status),
	).Scan(
		&order.ID,
		&order.CreatedAt,
	); err != nil {
		span.RecordError(err)

		mylogger.Warn(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range order.Items {
		order.Items[i].OrderID = order.ID

		err := tx.QueryRow(
			ctx,
			queryItem,
			order.ID,
			order.Items[i].ProductID,
			order.Items[i].Quantity,
			order.Items[i].PriceAtPurchase,
		).Scan(&order.Items[i].ID)
		if err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert item",
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// GetWithItems fetches an order regardless of its soft-delete state; the
// cancel flow needs to see already-cancelled orders to reject the second
// cancel explicitly.
func (r *orderRepo) GetWithItems(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetWithItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `
		SELECT id, user_id, total, status, created_at, deleted_at
		FROM orders
		WHERE id = $1;
	`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Total,
		&order.Status,
		&order.CreatedAt,
		&order.DeletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return &order, nil
}

// MarkCancelled soft-deletes the order and flips its status in one
// statement. The WHERE guard keeps a concurrent double-cancel from
// passing; zero rows affected means the order was already gone.
func (r *orderRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.MarkCancelled")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `
		UPDATE orders
		SET deleted_at = NOW(), status = $1
		WHERE id = $2 AND deleted_at IS NULL;
	`

	commandTag, err := tx.Exec(ctx, query, string(domain.OrderStatusCancelled), id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to cancel order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderAlreadyCancelled
	}

	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(
			ctx,
			r.logger,
			"Order not found",
			zap.Int64("order_id", id),
		)

		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.FindAll")
	defer span.End()

	query := `
		SELECT id, user_id, total, status, created_at, deleted_at
		FROM orders
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int64
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Total,
			&o.Status,
			&o.CreatedAt,
			&o.DeletedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// RowsByUser feeds the projection: one row per order × item × image
// combination for the user's non-deleted orders, newest order first.
// Soft-deleted products fall out of the product leg so their names
// resolve to the placeholder downstream.
func (r *orderRepo) RowsByUser(ctx context.Context, userID int64) ([]OrderRow, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.RowsByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	query := `
		SELECT o.id, o.total, o.status, o.created_at,
			oi.id, oi.quantity, oi.price_at_purchase,
			p.name, pi.url
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id AND p.deleted_at IS NULL
		LEFT JOIN product_images pi ON p.id = pi.product_id
		WHERE o.user_id = $1 AND o.deleted_at IS NULL
		ORDER BY o.created_at DESC, o.id DESC, oi.id, pi.id;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order rows",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order rows: %w", err)
	}
	defer rows.Close()

	var result []OrderRow
	for rows.Next() {
		var row OrderRow
		if err := rows.Scan(
			&row.OrderID,
			&row.Total,
			&row.Status,
			&row.CreatedAt,
			&row.ItemID,
			&row.Quantity,
			&row.PriceAtPurchase,
			&row.ProductName,
			&row.ImageURL,
		); err != nil {
			span.RecordError(err)
			mylogger.Error(
				ctx,
				r.logger,
				"Failed to scan row",
				zap.Error(err),
			)

			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Rows error",
			zap.Error(err),
		)

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *orderRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	result := make(map[int64][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order_items",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.PriceAtPurchase,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
