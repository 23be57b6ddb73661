package mealplan

import "context"

// Repository defines the interface for meal plan data access
type Repository interface {
	// Create stores a new meal plan
	Create(ctx context.Context, m *MealPlan) error

	// GetByID retrieves a meal plan owned by userID
	GetByID(ctx context.Context, userID string, id int64) (*MealPlan, error)

	// List retrieves meal plans newest first with pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*MealPlan, int64, error)
}
