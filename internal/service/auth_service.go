package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/internal/repository"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
	"github.com/MarcosDev98/ecommerce/pkg/utils"
	"github.com/MarcosDev98/ecommerce/pkg/validator"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo  repository.UserRepository
	logger    *zap.Logger
	validator validator.Validator
	tracer    trace.Tracer
}

func NewAuthService(userRepo repository.UserRepository, logger *zap.Logger, validator validator.Validator) AuthService {
	return &authService{
		userRepo:  userRepo,
		logger:    logger,
		validator: validator,
		tracer:    otel.Tracer("storefront/auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     domain.RoleClient,
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User registered",
		zap.Int64("user_id", user.ID),
	)

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Error generating tokens",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := utils.ValidateToken(refreshToken, true)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// The user may have been soft-deleted since the token was issued.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	access, refresh, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
