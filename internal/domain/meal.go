package domain

import "time"

// Meal is a single recorded meal owned by exactly one user.
type Meal struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Date        time.Time
	Time        string
	IsOnDiet    bool
	CreatedAt   time.Time
}

// Metrics aggregates a user's full meal history. BestOnDietStreak is the
// longest run of consecutive on-diet meals with the history ordered by
// descending creation time, not by the meal's stated date.
type Metrics struct {
	TotalMeals       int
	TotalOnDiet      int
	TotalOffDiet     int
	BestOnDietStreak int
}
