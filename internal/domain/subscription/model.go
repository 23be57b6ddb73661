package subscription

import (
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
)

// Status is the lifecycle state of a subscription
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Subscription is the single subscription row owned by a user
type Subscription struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"user_id"`
	PlanID               string    `json:"plan_id"`
	Status               Status    `json:"status"`
	BillingIntervalStart time.Time `json:"billing_interval_start"`
	BillingIntervalEnd   time.Time `json:"billing_interval_end"`
	CancelAtPeriodEnd    bool      `json:"cancel_at_period_end"`
	PaymentRef           string    `json:"payment_ref,omitempty"`
	OrderRef             string    `json:"order_ref,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Period returns the billing interval as a usage period
func (s *Subscription) Period() usage.Period {
	return usage.Period{Start: s.BillingIntervalStart, End: s.BillingIntervalEnd}
}

// Entitles reports whether the subscription grants its plan at time now
func (s *Subscription) Entitles(now time.Time) bool {
	return s.Status == StatusActive && s.Period().Contains(now)
}
