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
	"github.com/MarcosDev98/ecommerce/pkg/money"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

// OrderDetail is an order with its owner attached, for the admin
// single-order view.
type OrderDetail struct {
	domain.Order
	User *UserSummary `json:"user,omitempty"`
}

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderService interface {
	Create(ctx context.Context, userID int64, items []domain.RequestedItem) (*domain.Order, error)
	Remove(ctx context.Context, orderID int64) (string, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	FindAll(ctx context.Context) ([]OrderDetail, error)
	FindOne(ctx context.Context, orderID int64) (*OrderDetail, error)
	FindByUser(ctx context.Context, userID int64) ([]GroupedOrder, error)
}

type orderService struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	tracer      trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) OrderService {
	return &orderService{
		pool:        pool,
		logger:      logger,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		tracer:      otel.Tracer("storefront/order_service"),
	}
}

// Create places an order inside one transaction: per item, in the
// caller-supplied order, validate the product and immediately decrement
// its stock, snapshotting the current price into the item. Any failure
// rolls the whole transaction back, so no partial stock decrement or
// half-written order is ever visible.
func (s *orderService) Create(ctx context.Context, userID int64, items []domain.RequestedItem) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int("items_count", len(items)),
	)

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrInvalidOrder)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				shutdownCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	total := money.Zero()
	orderItems := make([]domain.OrderItem, 0, len(items))

	for _, item := range items {
		product, err := s.productRepo.GetForOrder(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: product %d not available",
					repository.ErrProductNotFound, item.ProductID)
			}

			return nil, err
		}

		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w for %q: %d available, %d requested",
				repository.ErrInsufficientStock, product.Name, product.Stock, item.Quantity)
		}

		// The read above is advisory; the conditional update is the
		// actual guard against concurrent over-sale.
		if err := s.productRepo.DecreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w for %q: %d requested",
					repository.ErrInsufficientStock, product.Name, item.Quantity)
			}

			return nil, err
		}

		total = total.Add(product.Price.MulInt(int64(item.Quantity)))

		orderItems = append(orderItems, domain.OrderItem{
			ProductID:       product.ID,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
		})
	}

	order := &domain.Order{
		UserID: userID,
		Total:  total,
		Status: domain.OrderStatusPending,
		Items:  orderItems,
	}

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total", order.Total.String()),
	)

	return order, nil
}

// Remove cancels an order: soft-delete marker plus CANCELLED status,
// then every item's quantity goes back onto its product's stock, all in
// one transaction. Cancelling twice is rejected, not absorbed.
func (s *orderService) Remove(ctx context.Context, orderID int64) (string, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Remove")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return "", fmt.Errorf("%w: order %d does not exist", repository.ErrOrderNotFound, orderID)
		}

		return "", err
	}

	if order.DeletedAt.IsDeleted() {
		return "", fmt.Errorf("%w: order %d", repository.ErrOrderAlreadyCancelled, orderID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := s.orderRepo.MarkCancelled(ctx, tx, orderID); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cancel order failed",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return "", err
	}

	for _, item := range order.Items {
		if err := s.productRepo.IncreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			mylogger.Error(
				ctx,
				s.logger,
				"Failed to restore stock",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)

			return "", fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order cancelled",
		zap.Int64("order_id", orderID),
	)

	return fmt.Sprintf("Order #%d cancelled and stock restored.", orderID), nil
}

// UpdateStatus overwrites the status unconditionally; there is no
// transition table, any valid status can follow any other.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("%w: order %d does not exist", repository.ErrOrderNotFound, orderID)
		}

		return err
	}

	return nil
}

// FindAll is the admin list view: every active order with its items and
// the owner's summary attached. Owners that were soft-deleted since the
// purchase come back without one.
func (s *orderService) FindAll(ctx context.Context) ([]OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindAll")
	defer span.End()

	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// One user owns many orders; fetch each owner once.
	summaries := make(map[int64]*UserSummary, len(orders))
	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		summary, seen := summaries[order.UserID]
		if !seen {
			user, err := s.userRepo.GetByID(ctx, order.UserID)
			switch {
			case err == nil:
				summary = &UserSummary{Name: user.Name, Email: user.Email}
			case errors.Is(err, repository.ErrUserNotFound):
				summary = nil
			default:
				return nil, err
			}
			summaries[order.UserID] = summary
		}

		details = append(details, OrderDetail{Order: order, User: summary})
	}

	return details, nil
}

func (s *orderService) FindOne(ctx context.Context, orderID int64) (*OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindOne")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{Order: *order}

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err == nil {
		detail.User = &UserSummary{Name: user.Name, Email: user.Email}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	return detail, nil
}

func (s *orderService) FindByUser(ctx context.Context, userID int64) ([]GroupedOrder, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	rows, err := s.orderRepo.RowsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return GroupOrderRows(rows), nil
}
