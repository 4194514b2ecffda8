package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/money"
)

func ptr[T any](v T) *T {
	return &v
}

func row(orderID int64, created time.Time, itemID *int64, qty *int32, price, name, image string) repository.OrderRow {
	r := repository.OrderRow{
		OrderID:   orderID,
		Total:     money.MustParse("30.00"),
		Status:    domain.OrderStatusPending,
		CreatedAt: created,
		ItemID:    itemID,
		Quantity:  qty,
	}
	if price != "" {
		r.PriceAtPurchase = money.MustParse(price)
	}
	if name != "" {
		r.ProductName = ptr(name)
	}
	if image != "" {
		r.ImageURL = ptr(image)
	}
	return r
}

func TestGroupOrderRows_FanOutDeduplication(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// One order, two items: item 10 has two images, item 11 has none.
	rows := []repository.OrderRow{
		row(1, created, ptr[int64](10), ptr[int32](3), "10.00", "Keyboard", "http://img/a.png"),
		row(1, created, ptr[int64](10), ptr[int32](3), "10.00", "Keyboard", "http://img/b.png"),
		row(1, created, ptr[int64](11), ptr[int32](1), "5.00", "Mousepad", ""),
	}

	grouped := service.GroupOrderRows(rows)

	require.Len(t, grouped, 1)
	require.Len(t, grouped[0].Items, 2)

	first := grouped[0].Items[0]
	assert.Equal(t, int64(10), first.ID)
	assert.Equal(t, int32(3), first.Quantity)
	assert.Equal(t, "10.00", first.PriceAtPurchase.String())
	assert.Equal(t, "Keyboard", first.ProductName)
	assert.Equal(t, []string{"http://img/a.png", "http://img/b.png"}, first.Images)

	second := grouped[0].Items[1]
	assert.Equal(t, int64(11), second.ID)
	assert.Equal(t, "Mousepad", second.ProductName)
	assert.Empty(t, second.Images)
}

func TestGroupOrderRows_DuplicateImageRows(t *testing.T) {
	created := time.Now()

	rows := []repository.OrderRow{
		row(1, created, ptr[int64](10), ptr[int32](1), "2.00", "Pen", "http://img/x.png"),
		row(1, created, ptr[int64](10), ptr[int32](1), "2.00", "Pen", "http://img/x.png"),
	}

	grouped := service.GroupOrderRows(rows)

	require.Len(t, grouped, 1)
	require.Len(t, grouped[0].Items, 1)
	assert.Equal(t, []string{"http://img/x.png"}, grouped[0].Items[0].Images)
}

func TestGroupOrderRows_OrderWithoutItems(t *testing.T) {
	created := time.Now()

	rows := []repository.OrderRow{
		{
			OrderID:   7,
			Total:     money.MustParse("0.00"),
			Status:    domain.OrderStatusPending,
			CreatedAt: created,
		},
	}

	grouped := service.GroupOrderRows(rows)

	require.Len(t, grouped, 1)
	assert.Equal(t, int64(7), grouped[0].ID)
	assert.Empty(t, grouped[0].Items)
}

func TestGroupOrderRows_MissingProductPlaceholder(t *testing.T) {
	rows := []repository.OrderRow{
		row(1, time.Now(), ptr[int64](10), ptr[int32](2), "4.00", "", ""),
	}

	grouped := service.GroupOrderRows(rows)

	require.Len(t, grouped, 1)
	require.Len(t, grouped[0].Items, 1)
	assert.Equal(t, service.MissingProductName, grouped[0].Items[0].ProductName)
}

func TestGroupOrderRows_PreservesStreamOrder(t *testing.T) {
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// The query emits newest order first; the fold must not reshuffle.
	rows := []repository.OrderRow{
		row(2, newer, ptr[int64](20), ptr[int32](1), "1.00", "B", ""),
		row(1, older, ptr[int64](10), ptr[int32](1), "1.00", "A", ""),
	}

	grouped := service.GroupOrderRows(rows)

	require.Len(t, grouped, 2)
	assert.Equal(t, int64(2), grouped[0].ID)
	assert.Equal(t, int64(1), grouped[1].ID)
}

func TestGroupOrderRows_Empty(t *testing.T) {
	assert.Empty(t, service.GroupOrderRows(nil))
}
