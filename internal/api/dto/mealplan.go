package dto

import (
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/domain/mealplan"
)

// GenerateMealPlanRequest asks for a new meal plan
type GenerateMealPlanRequest struct {
	Action  string             `json:"action" validate:"required,action"`
	Profile generation.Profile `json:"profile"`
}

// RetentionDTO describes when a meal plan disappears
type RetentionDTO struct {
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	IsExpiringSoon   bool       `json:"isExpiringSoon"`
	RemainingSeconds int64      `json:"remainingSeconds,omitempty"`
}

// MealPlanDTO represents a stored meal plan
type MealPlanDTO struct {
	ID         int64        `json:"id"`
	Kind       string       `json:"kind"`
	Content    string       `json:"content"`
	Provider   string       `json:"provider"`
	TokensUsed int          `json:"tokensUsed"`
	CreatedAt  time.Time    `json:"createdAt"`
	Retention  RetentionDTO `json:"retention"`
}

// GenerateMealPlanResponse is a generated plan plus the credits it cost
type GenerateMealPlanResponse struct {
	MealPlan       MealPlanDTO `json:"mealPlan"`
	CreditsCharged int64       `json:"creditsCharged"`
	Remaining      int64       `json:"remaining"`
}

// ToMealPlanDTO converts a listed meal plan
func ToMealPlanDTO(m *mealplan.Listed) MealPlanDTO {
	return MealPlanDTO{
		ID:         m.ID,
		Kind:       m.Kind,
		Content:    m.Content,
		Provider:   m.Provider,
		TokensUsed: m.TokensUsed,
		CreatedAt:  m.CreatedAt,
		Retention: RetentionDTO{
			ExpiresAt:        m.Retention.ExpiresAt,
			IsExpiringSoon:   m.Retention.IsExpiringSoon,
			RemainingSeconds: int64(m.Retention.Remaining.Seconds()),
		},
	}
}
