package payment

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
)

// Store runs fn inside one storage transaction. Repositories passed to fn are
// bound to that transaction; fn returning an error rolls everything back.
type Store interface {
	WithinTx(ctx context.Context, fn func(subs subscription.Repository, ledgers usage.Repository) error) error
}

// Service defines the payment reconciliation state machine
type Service interface {
	// ReconcilePayment verifies the assertion and, on success, activates the
	// subscription and resets its ledger. Safe to repeat.
	ReconcilePayment(ctx context.Context, userID string, a Assertion, now time.Time) (*Result, error)

	// CancelSubscription cancels now or at the end of the current period
	CancelSubscription(ctx context.Context, userID string, atPeriodEnd bool, now time.Time) (*subscription.Subscription, error)

	// ExpireLapsed soft-expires subscriptions whose interval has ended
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
