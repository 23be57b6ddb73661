package mealplan

import (
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/retention"
)

// MealPlan is a generated plan owned by a user. Its lifetime is derived
// from CreatedAt and the owner's tier, never stored.
type MealPlan struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	TokensUsed int       `json:"tokens_used"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
}

// Listed is a meal plan annotated with its retention status
type Listed struct {
	*MealPlan
	Retention retention.Status `json:"retention"`
}

// Filter contains filters for listing meal plans
type Filter struct {
	UserID string
	Kind   string
	// CreatedAfter hides plans created at or before the given time
	CreatedAfter *time.Time
}
