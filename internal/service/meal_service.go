package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"daily-diet/internal/domain"
	"daily-diet/internal/repository"
)

// ErrMealNotFound is returned when a meal does not exist or belongs to
// another user; callers cannot tell the two apart.
var ErrMealNotFound = errors.New("meal not found")

// MealInput carries the full set of user-editable meal fields. Update
// replaces all of them.
type MealInput struct {
	Name        string
	Description string
	Date        time.Time
	Time        string
	IsOnDiet    bool
}

// MealService coordinates meal recording and adherence metrics for a
// resolved user.
type MealService interface {
	Create(ctx context.Context, userID string, in MealInput) (*domain.Meal, error)
	Get(ctx context.Context, id, userID string) (*domain.Meal, error)
	List(ctx context.Context, userID string) ([]domain.Meal, error)
	Update(ctx context.Context, id, userID string, in MealInput) (*domain.Meal, error)
	Delete(ctx context.Context, id, userID string) error
	Metrics(ctx context.Context, userID string) (domain.Metrics, error)
}

type mealService struct {
	meals repository.MealRepository
}

func NewMealService(meals repository.MealRepository) MealService {
	return &mealService{meals: meals}
}

func (s *mealService) Create(ctx context.Context, userID string, in MealInput) (*domain.Meal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("meal name is required")
	}

	meal := &domain.Meal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		IsOnDiet:    in.IsOnDiet,
	}

	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *mealService) Get(ctx context.Context, id, userID string) (*domain.Meal, error) {
	meal, err := s.meals.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

func (s *mealService) List(ctx context.Context, userID string) ([]domain.Meal, error) {
	return s.meals.ListByUser(ctx, userID)
}

func (s *mealService) Update(ctx context.Context, id, userID string, in MealInput) (*domain.Meal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("meal name is required")
	}

	meal := &domain.Meal{
		ID:          id,
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		IsOnDiet:    in.IsOnDiet,
	}

	if err := s.meals.Update(ctx, meal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id, userID)
}

func (s *mealService) Delete(ctx context.Context, id, userID string) error {
	if err := s.meals.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	return nil
}

// Metrics makes a single pass over the history in descending creation
// order. The streak is defined over that order, not over the meal's
// stated date/time: an off-diet meal resets the running count, and the
// best count ever seen wins.
func (s *mealService) Metrics(ctx context.Context, userID string) (domain.Metrics, error) {
	meals, err := s.meals.ListByUser(ctx, userID)
	if err != nil {
		return domain.Metrics{}, err
	}

	var m domain.Metrics
	current := 0
	for _, meal := range meals {
		m.TotalMeals++
		if meal.IsOnDiet {
			m.TotalOnDiet++
			current++
		} else {
			m.TotalOffDiet++
			current = 0
		}
		if current > m.BestOnDietStreak {
			m.BestOnDietStreak = current
		}
	}
	return m, nil
}
