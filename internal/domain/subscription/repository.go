package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// GetByUserID retrieves the user's subscription or a NOT_FOUND error
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)

	// Upsert creates the user's subscription or updates it in place, keeping
	// its ID. The stored row is written back into s.
	Upsert(ctx context.Context, s *Subscription) error

	// SetCancelAtPeriodEnd flags the subscription to lapse at period end
	SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool, now time.Time) error

	// UpdateStatus performs a soft status transition
	UpdateStatus(ctx context.Context, userID string, status Status, now time.Time) error

	// ExpireLapsed marks active subscriptions whose interval ended before now
	// as expired and returns how many rows changed
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
