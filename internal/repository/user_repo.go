package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MarcosDev98/ecommerce/internal/domain"
	"github.com/MarcosDev98/ecommerce/pkg/mylogger"
)

const uniqueViolationCode = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, input *domain.UpdateUserInput) error
	SoftDelete(ctx context.Context, id int64) error
}

type userRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("storefront/user_repo"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", user.Email),
	)

	query := `
		INSERT INTO users (name, age, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`

	role := user.Role
	if role == "" {
		role = domain.RoleClient
	}

	err := r.pool.QueryRow(
		ctx,
		query,
		user.Name,
		user.Age,
		user.Email,
		user.Password,
		role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolationCode {
			mylogger.Warn(
				ctx,
				r.logger,
				"Email already taken",
				zap.String("email", user.Email),
			)

			return 0, ErrEmailTaken
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating user",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating user: %w", err)
	}

	user.Role = role
	return user.ID, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, age, email, password, role, created_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL;
	`

	return r.scanOne(ctx, query, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	query := `
		SELECT id, name, age, email, password, role, created_at, deleted_at
		FROM users
		WHERE email = $1 AND deleted_at IS NULL;
	`

	return r.scanOne(ctx, query, email)
}

func (r *userRepo) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Age,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.DeletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		mylogger.Error(
			ctx,
			r.logger,
			"Error querying user",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.List")
	defer span.End()

	query := `
		SELECT id, name, age, email, password, role, created_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error listing users",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Age,
			&u.Email,
			&u.Password,
			&u.Role,
			&u.CreatedAt,
			&u.DeletedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning user: %w", err)
		}

		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

func (r *userRepo) Update(ctx context.Context, id int64, input *domain.UpdateUserInput) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `UPDATE users SET `
	var args []interface{}
	argId := 1

	var updates []string

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.Age != nil {
		updates = append(updates, fmt.Sprintf("age = $%d", argId))
		args = append(args, *input.Age)
		argId++
	}

	if input.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argId))
		args = append(args, *input.Email)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	query += strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL", argId)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolationCode {
			return ErrEmailTaken
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error updating user",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating user: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) SoftDelete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SoftDelete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE users
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	commandTag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting user",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting user: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
