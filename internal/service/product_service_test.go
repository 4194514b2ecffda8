package service_test

import (
	"errors"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/pkg/money"
)

func (s *IntegrationTestSuite) TestProductLifecycle() {
	desc := "Mechanical, clicky"
	product := &domain.Product{
		Name:        "Keyboard",
		Description: &desc,
		Price:       money.MustParse("49.90"),
		Stock:       10,
		Images: []domain.ProductImage{
			{URL: "http://img/kb.png"},
		},
	}

	id, err := s.ProductService.Create(s.Ctx, product)
	s.Require().NoError(err)
	s.Require().NotZero(id)

	fetched, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("Keyboard", fetched.Name)
	s.Require().Equal("49.90", fetched.Price.String())
	s.Require().Len(fetched.Images, 1)

	newStock := int32(3)
	err = s.ProductService.Update(s.Ctx, id, &domain.UpdateProductInput{Stock: &newStock})
	s.Require().NoError(err)
	s.Require().EqualValues(3, s.productStock(id))

	s.Require().NoError(s.ProductService.Delete(s.Ctx, id))

	_, err = s.ProductService.FindByID(s.Ctx, id)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
}

func (s *IntegrationTestSuite) TestProductList_Search() {
	s.seedProduct("Gaming Keyboard", "10.00", 5)
	s.seedProduct("Office Keyboard", "8.00", 5)
	s.seedProduct("Mouse", "5.00", 5)

	products, total, err := s.ProductService.List(s.Ctx, 20, 0, "keyboard")
	s.Require().NoError(err)
	s.Require().EqualValues(2, total)
	s.Require().Len(products, 2)

	products, total, err = s.ProductService.List(s.Ctx, 20, 0, "")
	s.Require().NoError(err)
	s.Require().EqualValues(3, total)
	s.Require().Len(products, 3)
}

func (s *IntegrationTestSuite) TestUserLifecycle() {
	user := &domain.User{
		Name:  "Ana",
		Email: "ana@example.com",
	}

	id, err := s.UserService.Create(s.Ctx, user, "password1")
	s.Require().NoError(err)

	fetched, err := s.UserService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(domain.RoleClient, fetched.Role)

	newName := "Ana María"
	s.Require().NoError(s.UserService.Update(s.Ctx, id, &domain.UpdateUserInput{Name: &newName}))

	users, err := s.UserService.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Require().Equal("Ana María", users[0].Name)

	s.Require().NoError(s.UserService.Delete(s.Ctx, id))

	_, err = s.UserService.FindByID(s.Ctx, id)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrUserNotFound))
}
