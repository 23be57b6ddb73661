package worker

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// ExpirySweeper periodically soft-expires subscriptions whose billing
// interval has ended. Quota checks already treat lapsed subscriptions as
// free-tier, so the sweep only brings stored status in line.
type ExpirySweeper struct {
	payments payment.Service
	interval time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewExpirySweeper creates a new expiry sweeper worker
func NewExpirySweeper(payments payment.Service, interval time.Duration, log *logger.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		payments: payments,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

// Start runs a sweep immediately and then every interval until ctx is done
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.logger.WithFields(map[string]interface{}{
		"interval": s.interval.String(),
	}).Info("Starting subscription expiry sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("Subscription expiry sweeper stopped")
			return
		}
	}
}

// Sweep expires lapsed subscriptions once and returns how many changed
func (s *ExpirySweeper) Sweep(ctx context.Context) int64 {
	n, err := s.payments.ExpireLapsed(ctx, s.now())
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to expire lapsed subscriptions")
		return 0
	}

	metrics.RecordSubscriptionsExpired(n)
	if n > 0 {
		s.logger.WithFields(map[string]interface{}{
			"expired": n,
		}).Info("Expired lapsed subscriptions")
	}
	return n
}
