package service_test

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/internal/service"
	"github.com/MarcosDev98/ecommerce/pkg/validator"
)

func (s *IntegrationTestSuite) TestRegister_Success() {
	user, err := s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "password1")
	s.Require().NoError(err)

	s.Require().NotZero(user.ID)
	s.Require().Equal(domain.RoleClient, user.Role)
	s.Require().NotEqual("password1", user.Password)
	s.Require().NoError(bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password1")))
}

func (s *IntegrationTestSuite) TestRegister_DuplicateEmail() {
	_, err := s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "password1")
	s.Require().NoError(err)

	_, err = s.AuthService.Register(s.Ctx, "Other Ana", "ana@example.com", "password2")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrEmailTaken))
}

func (s *IntegrationTestSuite) TestRegister_WeakPassword() {
	_, err := s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "short1")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, validator.ErrPasswordTooShort))

	_, err = s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "onlyletters")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, validator.ErrPasswordTooWeak))
}

func (s *IntegrationTestSuite) TestLogin() {
	_, err := s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "password1")
	s.Require().NoError(err)

	tokens, err := s.AuthService.Login(s.Ctx, "ana@example.com", "password1")
	s.Require().NoError(err)
	s.Require().NotEmpty(tokens.AccessToken)
	s.Require().NotEmpty(tokens.RefreshToken)

	_, err = s.AuthService.Login(s.Ctx, "ana@example.com", "wrong-pass1")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrInvalidCredentials))

	_, err = s.AuthService.Login(s.Ctx, "ghost@example.com", "password1")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrInvalidCredentials))
}

func (s *IntegrationTestSuite) TestRefresh() {
	_, err := s.AuthService.Register(s.Ctx, "Ana", "ana@example.com", "password1")
	s.Require().NoError(err)

	tokens, err := s.AuthService.Login(s.Ctx, "ana@example.com", "password1")
	s.Require().NoError(err)

	refreshed, err := s.AuthService.Refresh(s.Ctx, tokens.RefreshToken)
	s.Require().NoError(err)
	s.Require().NotEmpty(refreshed.AccessToken)

	_, err = s.AuthService.Refresh(s.Ctx, "garbage-token")
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrInvalidCredentials))
}
