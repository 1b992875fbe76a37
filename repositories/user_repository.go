package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-supply/models"
	"resto-supply/services"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ services.Directory = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_active, created_at
		FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.Password, &role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepository) UserEmail(ctx context.Context, userID int) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &models.NotFoundError{Resource: "user", ID: userID}
		}
		return "", fmt.Errorf("failed to get email for user %d: %w", userID, err)
	}
	return email, nil
}
