package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

type UserService interface {
	Create(ctx context.Context, user *domain.User, plainPassword string) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, input *domain.UpdateUserInput) error
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
		tracer:   otel.Tracer("storefront/user_service"),
	}
}

func (s *userService) Create(ctx context.Context, user *domain.User, plainPassword string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", user.Email),
	)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return 0, err
	}

	user.Password = string(hashed)
	return s.userRepo.Create(ctx, user)
}

func (s *userService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()

	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, id int64, input *domain.UpdateUserInput) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return s.userRepo.Update(ctx, id, input)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return s.userRepo.SoftDelete(ctx, id)
}
