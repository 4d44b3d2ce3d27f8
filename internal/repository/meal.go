package repository

import (
	"context"

	"daily-diet/internal/domain"
)

// MealRepository exposes persistence operations for Meal records. Get,
// Update and Delete are owner-scoped: they match on both meal id and
// owning user id in a single query.
type MealRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, meal *domain.Meal) error
	Get(ctx context.Context, id, userID string) (*domain.Meal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Meal, error)
	Update(ctx context.Context, meal *domain.Meal) error
	Delete(ctx context.Context, id, userID string) error
}
