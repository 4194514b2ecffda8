package service_test

import (
	"errors"
	"time"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/money"
)

func (s *IntegrationTestSuite) TestCreateOrder_Success() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 3},
	})
	s.Require().NoError(err)
	s.Require().NotNil(order)

	s.Require().Equal("30.00", order.Total.String())
	s.Require().Equal(domain.OrderStatusPending, order.Status)
	s.Require().Len(order.Items, 1)
	s.Require().Equal("10.00", order.Items[0].PriceAtPurchase.String())
	s.Require().EqualValues(2, s.productStock(productID))
}

func (s *IntegrationTestSuite) TestCreateOrder_TotalAcrossItems() {
	userID := s.seedUser("buyer@example.com")
	keyboard := s.seedProduct("Keyboard", "19.90", 10)
	mouse := s.seedProduct("Mouse", "0.10", 10)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: keyboard, Quantity: 2},
		{ProductID: mouse, Quantity: 3},
	})
	s.Require().NoError(err)

	// 2 × 19.90 + 3 × 0.10, computed in fixed-point.
	s.Require().Equal("40.10", order.Total.String())

	sum := money.Zero()
	for _, item := range order.Items {
		sum = sum.Add(item.PriceAtPurchase.MulInt(int64(item.Quantity)))
	}
	s.Require().True(order.Total.Equal(sum))
}

func (s *IntegrationTestSuite) TestCreateOrder_InsufficientStock() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Scarce Item", "10.00", 5)

	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 6},
	})

	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrInsufficientStock))
	s.Require().Contains(err.Error(), "Scarce Item")

	s.Require().EqualValues(5, s.productStock(productID))
	s.Require().EqualValues(0, s.orderCount())
}

func (s *IntegrationTestSuite) TestCreateOrder_UnknownProduct() {
	userID := s.seedUser("buyer@example.com")

	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: 424242, Quantity: 1},
	})

	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
	s.Require().EqualValues(0, s.orderCount())
}

func (s *IntegrationTestSuite) TestCreateOrder_SoftDeletedProduct() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Ghost", "10.00", 5)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, productID))

	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})

	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
}

func (s *IntegrationTestSuite) TestCreateOrder_AtomicRollback() {
	userID := s.seedUser("buyer@example.com")
	goodProduct := s.seedProduct("In Stock", "10.00", 5)

	// Second item fails, so the first item's decrement must roll back.
	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: goodProduct, Quantity: 2},
		{ProductID: 424242, Quantity: 1},
	})

	s.Require().Error(err)
	s.Require().EqualValues(5, s.productStock(goodProduct))
	s.Require().EqualValues(0, s.orderCount())
}

func (s *IntegrationTestSuite) TestCreateOrder_StockTakenWhileCheckingOut() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Last Unit", "10.00", 1)

	// A competing transaction takes the last unit but holds its row lock
	// open. The order below reads stock=1 at validation, then blocks on
	// the conditional decrement; once the competitor commits, the WHERE
	// clause re-evaluates against stock=0 and matches nothing.
	tx, err := s.DbPool.Begin(s.Ctx)
	s.Require().NoError(err)
	defer tx.Rollback(s.Ctx)

	_, err = tx.Exec(s.Ctx,
		`UPDATE products SET stock = stock - 1 WHERE id = $1 AND stock >= 1`, productID)
	s.Require().NoError(err)

	result := make(chan error, 1)
	go func() {
		_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
			{ProductID: productID, Quantity: 1},
		})
		result <- err
	}()

	// Let the order pass its validation read and queue on the row lock.
	time.Sleep(200 * time.Millisecond)
	s.Require().NoError(tx.Commit(s.Ctx))

	err = <-result
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrInsufficientStock))
	s.Require().Contains(err.Error(), "Last Unit")

	s.Require().EqualValues(0, s.productStock(productID))
	s.Require().EqualValues(0, s.orderCount())
}

func (s *IntegrationTestSuite) TestCreateOrder_EmptyItems() {
	userID := s.seedUser("buyer@example.com")

	_, err := s.OrderService.Create(s.Ctx, userID, nil)

	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrInvalidOrder))
}

func (s *IntegrationTestSuite) TestCancelOrder_RestoresStock() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 3},
	})
	s.Require().NoError(err)
	s.Require().EqualValues(2, s.productStock(productID))

	_, err = s.OrderService.Remove(s.Ctx, order.ID)
	s.Require().NoError(err)

	s.Require().EqualValues(5, s.productStock(productID))

	var status string
	var deletedAt domain.Deletion
	err = s.DbPool.QueryRow(s.Ctx,
		`SELECT status, deleted_at FROM orders WHERE id = $1`, order.ID).
		Scan(&status, &deletedAt)
	s.Require().NoError(err)
	s.Require().Equal("CANCELLED", status)
	s.Require().True(deletedAt.IsDeleted())
}

func (s *IntegrationTestSuite) TestCancelOrder_RestoresStockOfDeletedProduct() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Soon Gone", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 2},
	})
	s.Require().NoError(err)

	// Soft-delete the product between purchase and cancellation; the
	// restore path still has to put the units back.
	s.Require().NoError(s.ProductService.Delete(s.Ctx, productID))

	_, err = s.OrderService.Remove(s.Ctx, order.ID)
	s.Require().NoError(err)

	s.Require().EqualValues(5, s.productStock(productID))
}

func (s *IntegrationTestSuite) TestCancelOrder_SecondCancelRejected() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	_, err = s.OrderService.Remove(s.Ctx, order.ID)
	s.Require().NoError(err)

	_, err = s.OrderService.Remove(s.Ctx, order.ID)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrOrderAlreadyCancelled))

	// Stock must not be restored twice.
	s.Require().EqualValues(5, s.productStock(productID))
}

func (s *IntegrationTestSuite) TestCancelOrder_NotFound() {
	_, err := s.OrderService.Remove(s.Ctx, 999)

	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrOrderNotFound))
}

func (s *IntegrationTestSuite) TestPriceSnapshotImmutability() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Volatile Item", "10.00", 5)

	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	newPrice := money.MustParse("99.99")
	err = s.ProductService.Update(s.Ctx, productID, &domain.UpdateProductInput{
		Price: &newPrice,
	})
	s.Require().NoError(err)

	grouped, err := s.OrderService.FindByUser(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(grouped, 1)
	s.Require().Len(grouped[0].Items, 1)
	s.Require().Equal("10.00", grouped[0].Items[0].PriceAtPurchase.String())
	s.Require().Equal("10.00", grouped[0].Total.String())
}

func (s *IntegrationTestSuite) TestUpdateStatus() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusShipped))

	detail, err := s.OrderService.FindOne(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusShipped, detail.Status)

	// No transition table: going backwards is allowed.
	s.Require().NoError(s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusPending))
}

func (s *IntegrationTestSuite) TestUpdateStatus_NotFound() {
	err := s.OrderService.UpdateStatus(s.Ctx, 999, domain.OrderStatusPaid)

	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrOrderNotFound))
}

func (s *IntegrationTestSuite) TestFindByUser_Projection() {
	userID := s.seedUser("buyer@example.com")
	keyboard := s.seedProduct("Keyboard", "10.00", 5)
	mouse := s.seedProduct("Mouse", "5.00", 5)

	s.seedImage(keyboard, "http://img/keyboard-front.png")
	s.seedImage(keyboard, "http://img/keyboard-side.png")

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: keyboard, Quantity: 1},
		{ProductID: mouse, Quantity: 2},
	})
	s.Require().NoError(err)

	grouped, err := s.OrderService.FindByUser(s.Ctx, userID)
	s.Require().NoError(err)

	s.Require().Len(grouped, 1)
	s.Require().Equal(order.ID, grouped[0].ID)
	s.Require().Len(grouped[0].Items, 2)

	s.Require().Equal("Keyboard", grouped[0].Items[0].ProductName)
	s.Require().Len(grouped[0].Items[0].Images, 2)
	s.Require().Equal("Mouse", grouped[0].Items[1].ProductName)
	s.Require().Empty(grouped[0].Items[1].Images)
}

func (s *IntegrationTestSuite) TestFindByUser_DeletedProductPlaceholder() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Discontinued", "10.00", 5)

	_, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, productID))

	grouped, err := s.OrderService.FindByUser(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(grouped, 1)
	s.Require().Len(grouped[0].Items, 1)
	s.Require().Equal(service.MissingProductName, grouped[0].Items[0].ProductName)
}

func (s *IntegrationTestSuite) TestFindByUser_ExcludesCancelledOrders() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	_, err = s.OrderService.Remove(s.Ctx, order.ID)
	s.Require().NoError(err)

	grouped, err := s.OrderService.FindByUser(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Empty(grouped)
}

func (s *IntegrationTestSuite) TestFindAll_AttachesUsers() {
	buyerID := s.seedUser("buyer@example.com")
	otherID := s.seedUser("other@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	_, err := s.OrderService.Create(s.Ctx, buyerID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	_, err = s.OrderService.Create(s.Ctx, otherID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	// Deleting an owner must not hide their order from the admin view.
	s.Require().NoError(s.UserService.Delete(s.Ctx, otherID))

	details, err := s.OrderService.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(details, 2)

	byEmail := make(map[string]int)
	for _, detail := range details {
		s.Require().Len(detail.Items, 1)
		if detail.User != nil {
			byEmail[detail.User.Email]++
		}
	}

	s.Require().Equal(1, byEmail["buyer@example.com"])
	s.Require().Zero(byEmail["other@example.com"])
}

func (s *IntegrationTestSuite) TestFindOne_AttachesUser() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("Gaming Keyboard", "10.00", 5)

	order, err := s.OrderService.Create(s.Ctx, userID, []domain.RequestedItem{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	detail, err := s.OrderService.FindOne(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(detail.User)
	s.Require().Equal("buyer@example.com", detail.User.Email)
	s.Require().Len(detail.Items, 1)
}
