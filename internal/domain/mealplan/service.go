package mealplan

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
)

// GenerateRequest is a paid request to create a meal plan
type GenerateRequest struct {
	UserID  string
	Action  quota.Action
	Profile generation.Profile
}

// Service defines meal plan business logic
type Service interface {
	// Generate reserves credits, runs the generator and stores the result.
	// A denied reservation returns the decision with a nil plan.
	Generate(ctx context.Context, req GenerateRequest, now time.Time) (*Listed, *quota.Decision, error)

	// List returns the user's meal plans, hiding expired free-tier plans
	List(ctx context.Context, userID string, limit, offset int, now time.Time) ([]*Listed, int64, error)

	// Get returns a single visible meal plan
	Get(ctx context.Context, userID string, id int64, now time.Time) (*Listed, error)
}
