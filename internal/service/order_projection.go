package service

import (
	"time"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/pkg/money"
)

// MissingProductName is substituted when an item's product has been
// removed from the catalog; the historical order still shows the item.
const MissingProductName = "Product unavailable"

type GroupedItem struct {
	ID              int64       `json:"id"`
	Quantity        int32       `json:"quantity"`
	PriceAtPurchase money.Money `json:"priceAtPurchase"`
	ProductName     string      `json:"productName"`
	Images          []string    `json:"images"`
}

type GroupedOrder struct {
	ID        int64              `json:"id"`
	Total     money.Money        `json:"total"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Items     []GroupedItem      `json:"items"`
}

type itemAccumulator struct {
	item       GroupedItem
	seenImages map[string]struct{}
}

type orderAccumulator struct {
	order     GroupedOrder
	itemOrder []int64
	items     map[int64]*itemAccumulator
}

// GroupOrderRows folds the flat join row stream into one entry per
// distinct order, each holding its items keyed by item id and the
// deduplicated image URLs per item. Orders keep the stream order (the
// query sorts them newest first); items and images keep first-appearance
// order. Handles zero-item orders (null item leg), zero-image items and
// the duplicate rows produced by the join fan-out.
func GroupOrderRows(rows []repository.OrderRow) []GroupedOrder {
	var orderIDs []int64
	orders := make(map[int64]*orderAccumulator)

	for _, row := range rows {
		acc, ok := orders[row.OrderID]
		if !ok {
			acc = &orderAccumulator{
				order: GroupedOrder{
					ID:        row.OrderID,
					Total:     row.Total,
					Status:    row.Status,
					CreatedAt: row.CreatedAt,
				},
				items: make(map[int64]*itemAccumulator),
			}
			orders[row.OrderID] = acc
			orderIDs = append(orderIDs, row.OrderID)
		}

		if row.ItemID == nil {
			continue
		}

		itemAcc, ok := acc.items[*row.ItemID]
		if !ok {
			name := MissingProductName
			if row.ProductName != nil {
				name = *row.ProductName
			}

			var quantity int32
			if row.Quantity != nil {
				quantity = *row.Quantity
			}

			itemAcc = &itemAccumulator{
				item: GroupedItem{
					ID:              *row.ItemID,
					Quantity:        quantity,
					PriceAtPurchase: row.PriceAtPurchase,
					ProductName:     name,
					Images:          []string{},
				},
				seenImages: make(map[string]struct{}),
			}
			acc.items[*row.ItemID] = itemAcc
			acc.itemOrder = append(acc.itemOrder, *row.ItemID)
		}

		if row.ImageURL != nil {
			if _, seen := itemAcc.seenImages[*row.ImageURL]; !seen {
				itemAcc.seenImages[*row.ImageURL] = struct{}{}
				itemAcc.item.Images = append(itemAcc.item.Images, *row.ImageURL)
			}
		}
	}

	result := make([]GroupedOrder, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		acc := orders[orderID]

		acc.order.Items = make([]GroupedItem, 0, len(acc.itemOrder))
		for _, itemID := range acc.itemOrder {
			acc.order.Items = append(acc.order.Items, acc.items[itemID].item)
		}

		result = append(result, acc.order)
	}

	return result
}
