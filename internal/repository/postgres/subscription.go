package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	c conn
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *Database) subscription.Repository {
	return &SubscriptionRepository{c: db.conn()}
}

const subscriptionColumns = `id, user_id, plan_id, status, billing_interval_start, billing_interval_end,
	cancel_at_period_end, payment_ref, order_ref, created_at, updated_at`

// GetByUserID retrieves the user's subscription
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ?`

	var s subscription.Subscription
	var status string
	var start, end, createdAt, updatedAt int64

	err := r.c.queryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.PlanID, &status, &start, &end,
		&s.CancelAtPeriodEnd, &s.PaymentRef, &s.OrderRef, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.StoreUnavailable("Failed to get subscription", err)
	}

	s.Status = subscription.Status(status)
	s.BillingIntervalStart = time.Unix(start, 0).UTC()
	s.BillingIntervalEnd = time.Unix(end, 0).UTC()
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}

// Upsert creates or updates the user's single subscription row. The row id is
// stable across updates.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *subscription.Subscription) error {
	now := s.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, billing_interval_start, billing_interval_end,
			cancel_at_period_end, payment_ref, order_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_id = excluded.plan_id,
			status = excluded.status,
			billing_interval_start = excluded.billing_interval_start,
			billing_interval_end = excluded.billing_interval_end,
			cancel_at_period_end = excluded.cancel_at_period_end,
			payment_ref = excluded.payment_ref,
			order_ref = excluded.order_ref,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`

	var id, createdAt int64
	err := r.c.queryRow(ctx, query,
		s.UserID, s.PlanID, string(s.Status), s.BillingIntervalStart.Unix(), s.BillingIntervalEnd.Unix(),
		s.CancelAtPeriodEnd, s.PaymentRef, s.OrderRef, now.Unix(), now.Unix(),
	).Scan(&id, &createdAt)
	if err != nil {
		return errors.StoreUnavailable("Failed to upsert subscription", err)
	}

	s.ID = id
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(now.Unix(), 0).UTC()
	return nil
}

// SetCancelAtPeriodEnd flags the subscription to lapse at period end
func (r *SubscriptionRepository) SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool, now time.Time) error {
	query := `UPDATE subscriptions SET cancel_at_period_end = ?, updated_at = ? WHERE user_id = ?`
	return r.updateOne(ctx, query, cancel, now.Unix(), userID)
}

// UpdateStatus performs a soft status transition
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, userID string, status subscription.Status, now time.Time) error {
	query := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE user_id = ?`
	return r.updateOne(ctx, query, string(status), now.Unix(), userID)
}

// ExpireLapsed marks active subscriptions whose interval has ended as expired
func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE status = ? AND billing_interval_end <= ?`

	result, err := r.c.exec(ctx, query, string(subscription.StatusExpired), now.Unix(),
		string(subscription.StatusActive), now.Unix())
	if err != nil {
		return 0, errors.StoreUnavailable("Failed to expire subscriptions", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.StoreUnavailable("Failed to get affected rows", err)
	}
	return rows, nil
}

func (r *SubscriptionRepository) updateOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.c.exec(ctx, query, args...)
	if err != nil {
		return errors.StoreUnavailable("Failed to update subscription", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StoreUnavailable("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}
