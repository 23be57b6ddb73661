package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// PlanRepository implements plan.Repository
type PlanRepository struct {
	c conn
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *Database) plan.Repository {
	return &PlanRepository{c: db.conn()}
}

// List retrieves every plan row. Rows with unparseable limits are reported
// in the second return value and left out of the first.
func (r *PlanRepository) List(ctx context.Context) ([]*plan.Plan, []error, error) {
	query := `
		SELECT id, tier, name, price_minor, currency, period_days, limits, active, updated_at
		FROM plans
		ORDER BY price_minor ASC, id ASC
	`

	rows, err := r.c.query(ctx, query)
	if err != nil {
		return nil, nil, errors.StoreUnavailable("Failed to list plans", err)
	}
	defer rows.Close()

	var plans []*plan.Plan
	var skipped []error
	for rows.Next() {
		var p plan.Plan
		var tier, limits string
		var updatedAt int64

		if err := rows.Scan(&p.ID, &tier, &p.Name, &p.PriceMinor, &p.Currency, &p.PeriodDays, &limits, &p.Active, &updatedAt); err != nil {
			return nil, nil, errors.StoreUnavailable("Failed to scan plan", err)
		}

		p.Tier = plan.Tier(tier)
		if !p.Tier.Valid() {
			skipped = append(skipped, fmt.Errorf("plan %s: unknown tier %q", p.ID, tier))
			continue
		}
		p.Limits, err = plan.ParseLimits([]byte(limits))
		if err != nil {
			skipped = append(skipped, fmt.Errorf("plan %s: %w", p.ID, err))
			continue
		}
		p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		plans = append(plans, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.StoreUnavailable("Failed to iterate plans", err)
	}

	return plans, skipped, nil
}

// Upsert inserts or replaces a plan row
func (r *PlanRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	if !p.Tier.Valid() {
		return errors.BadRequest(fmt.Sprintf("unknown tier %q", p.Tier))
	}
	if err := p.Limits.Validate(); err != nil {
		return errors.ValidationError("Invalid plan limits", err.Error())
	}
	limits, err := p.Limits.Encode()
	if err != nil {
		return errors.Internal("Failed to encode plan limits", err)
	}

	p.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO plans (id, tier, name, price_minor, currency, period_days, limits, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			tier = excluded.tier,
			name = excluded.name,
			price_minor = excluded.price_minor,
			currency = excluded.currency,
			period_days = excluded.period_days,
			limits = excluded.limits,
			active = excluded.active,
			updated_at = excluded.updated_at
	`

	_, err = r.c.exec(ctx, query,
		p.ID, string(p.Tier), p.Name, p.PriceMinor, p.Currency, p.PeriodDays, string(limits), p.Active, p.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.StoreUnavailable("Failed to upsert plan", err)
	}
	return nil
}
