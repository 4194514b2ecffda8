package domain

import (
	"time"

	"github.com/MarcosDev98/ecommerce/pkg/money"
)

type Product struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Price       money.Money    `db:"price" json:"price"`
	Stock       int32          `db:"stock" json:"stock"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	DeletedAt   Deletion       `db:"deleted_at" json:"deletedAt"`
	Images      []ProductImage `json:"images,omitempty"`
}

type ProductImage struct {
	ID        int64    `db:"id" json:"id"`
	ProductID int64    `db:"product_id" json:"productId"`
	URL       string   `db:"url" json:"url"`
	DeletedAt Deletion `db:"deleted_at" json:"-"`
}

type UpdateProductInput struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *money.Money `json:"price"`
	Stock       *int32       `json:"stock" validate:"omitempty,gte=0"`
}
