package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-diet/internal/domain"
	"daily-diet/internal/repository"
)

const createMealsTable = `
CREATE TABLE IF NOT EXISTS meals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	time TEXT NOT NULL DEFAULT '',
	is_on_diet BOOLEAN NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meals_user_id ON meals(user_id);
`

type MealRepository struct {
	db *sql.DB
}

func NewMealRepository(db *sql.DB) repository.MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMealsTable); err != nil {
		return fmt.Errorf("create meals table: %w", err)
	}
	return nil
}

func (r *MealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	meal.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO meals (id, user_id, name, description, date, time, is_on_diet, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Description,
		meal.Date,
		meal.Time,
		meal.IsOnDiet,
		meal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert meal: %w", err)
	}
	return nil
}

func (r *MealRepository) Get(ctx context.Context, id, userID string) (*domain.Meal, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, description, date, time, is_on_diet, created_at
FROM meals
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanMeal(row)
}

// ListByUser returns the user's full meal history, most recently created
// first. The rowid tiebreak keeps same-timestamp rows in reverse insertion
// order so the streak pass sees a stable sequence.
func (r *MealRepository) ListByUser(ctx context.Context, userID string) ([]domain.Meal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, description, date, time, is_on_diet, created_at
FROM meals
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []domain.Meal
	for rows.Next() {
		var meal domain.Meal
		if err := rows.Scan(
			&meal.ID,
			&meal.UserID,
			&meal.Name,
			&meal.Description,
			&meal.Date,
			&meal.Time,
			&meal.IsOnDiet,
			&meal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}

func (r *MealRepository) Update(ctx context.Context, meal *domain.Meal) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE meals
SET name=?, description=?, date=?, time=?, is_on_diet=?
WHERE id=? AND user_id=?`,
		meal.Name,
		meal.Description,
		meal.Date,
		meal.Time,
		meal.IsOnDiet,
		meal.ID,
		meal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	return requireAffected(res)
}

func (r *MealRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM meals
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanMeal(row *sql.Row) (*domain.Meal, error) {
	var meal domain.Meal
	if err := row.Scan(
		&meal.ID,
		&meal.UserID,
		&meal.Name,
		&meal.Description,
		&meal.Date,
		&meal.Time,
		&meal.IsOnDiet,
		&meal.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan meal: %w", err)
	}
	return &meal, nil
}
