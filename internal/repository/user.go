package repository

import (
	"context"

	"daily-diet/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)
}
