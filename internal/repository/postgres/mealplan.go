package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/mealplan"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// MealPlanRepository implements mealplan.Repository
type MealPlanRepository struct {
	c conn
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *Database) mealplan.Repository {
	return &MealPlanRepository{c: db.conn()}
}

// Create stores a new meal plan. CreatedAt defaults to the current time.
func (r *MealPlanRepository) Create(ctx context.Context, m *mealplan.MealPlan) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO meal_plans (user_id, kind, content, tokens_used, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.c.queryRow(ctx, query,
		m.UserID, m.Kind, m.Content, m.TokensUsed, m.Provider, m.CreatedAt.Unix(),
	).Scan(&m.ID)
	if err != nil {
		return errors.StoreUnavailable("Failed to create meal plan", err)
	}
	return nil
}

// GetByID retrieves a meal plan owned by userID
func (r *MealPlanRepository) GetByID(ctx context.Context, userID string, id int64) (*mealplan.MealPlan, error) {
	query := `
		SELECT id, user_id, kind, content, tokens_used, provider, created_at
		FROM meal_plans WHERE user_id = ? AND id = ?
	`

	var m mealplan.MealPlan
	var createdAt int64
	err := r.c.queryRow(ctx, query, userID, id).Scan(
		&m.ID, &m.UserID, &m.Kind, &m.Content, &m.TokensUsed, &m.Provider, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Meal plan")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("Failed to get meal plan", err)
	}

	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &m, nil
}

// List retrieves meal plans newest first with pagination
func (r *MealPlanRepository) List(ctx context.Context, filter mealplan.Filter, limit, offset int) ([]*mealplan.MealPlan, int64, error) {
	conds := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.CreatedAfter != nil {
		conds = append(conds, "created_at > ?")
		args = append(args, filter.CreatedAfter.Unix())
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.c.queryRow(ctx, "SELECT COUNT(*) FROM meal_plans WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.StoreUnavailable("Failed to count meal plans", err)
	}

	query := `
		SELECT id, user_id, kind, content, tokens_used, provider, created_at
		FROM meal_plans
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.c.query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.StoreUnavailable("Failed to list meal plans", err)
	}
	defer rows.Close()

	var plans []*mealplan.MealPlan
	for rows.Next() {
		var m mealplan.MealPlan
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.UserID, &m.Kind, &m.Content, &m.TokensUsed, &m.Provider, &createdAt); err != nil {
			return nil, 0, errors.StoreUnavailable("Failed to scan meal plan", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
		plans = append(plans, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.StoreUnavailable("Failed to iterate meal plans", err)
	}

	return plans, total, nil
}
