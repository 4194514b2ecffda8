package domain

import (
	"fmt"
	"time"

	"github.com/MarcosDev98/ecommerce/pkg/money"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus rejects anything outside the enum. Transitions between
// valid statuses are deliberately unrestricted.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

type Order struct {
	ID        int64       `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"userId"`
	Total     money.Money `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	Items     []OrderItem `json:"items,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	DeletedAt Deletion    `db:"deleted_at" json:"deletedAt"`
}

// OrderItem rows are written once during order creation and never
// mutated; PriceAtPurchase stays frozen regardless of later product
// price changes.
type OrderItem struct {
	ID              int64       `db:"id" json:"id"`
	OrderID         int64       `db:"order_id" json:"orderId"`
	ProductID       int64       `db:"product_id" json:"productId"`
	Quantity        int32       `db:"quantity" json:"quantity"`
	PriceAtPurchase money.Money `db:"price_at_purchase" json:"priceAtPurchase"`
}

// RequestedItem is one (product, quantity) pair of an incoming order
// request. Prices are always resolved server-side.
type RequestedItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}
