package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// QuotaService implements quota.Service
type QuotaService struct {
	catalog plan.Catalog
	subs    subscription.Repository
	ledgers usage.Repository
	logger  *logger.Logger
}

// NewQuotaService creates a new quota engine
func NewQuotaService(catalog plan.Catalog, subs subscription.Repository, ledgers usage.Repository, log *logger.Logger) quota.Service {
	return &QuotaService{
		catalog: catalog,
		subs:    subs,
		ledgers: ledgers,
		logger:  log,
	}
}

// entitlement is the plan and ledger key that apply to a user at one instant
type entitlement struct {
	plan *plan.Plan
	key  usage.Key
}

// resolve picks the paid plan of an entitling subscription, otherwise the
// implicit free plan for the calendar month containing now
func (s *QuotaService) resolve(ctx context.Context, userID string, now time.Time) (*entitlement, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	if sub != nil && sub.Entitles(now) {
		p, err := s.catalog.Get(sub.PlanID)
		if err != nil {
			return nil, err
		}
		return &entitlement{
			plan: p,
			key:  usage.Key{UserID: userID, SubscriptionID: sub.ID, Period: sub.Period()},
		}, nil
	}

	free, err := s.catalog.Get(plan.IDFree)
	if err != nil {
		return nil, err
	}
	return &entitlement{
		plan: free,
		key:  usage.Key{UserID: userID, Period: usage.FreePeriod(now)},
	}, nil
}

// CheckAndReserve charges the action's cost against the current period's
// ledger. Two requests racing for the last credits can never both succeed;
// the conditional update is the only arbiter.
func (s *QuotaService) CheckAndReserve(ctx context.Context, userID string, action quota.Action, now time.Time) (*quota.Decision, error) {
	if userID == "" {
		return nil, errors.Unauthorized("User identity is required")
	}
	charge, err := action.Charge()
	if err != nil {
		return nil, err
	}

	ent, err := s.resolve(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	ledger, err := s.ledgers.GetOrCreate(ctx, ent.key, ent.plan.Limits.CreditsPerPeriod, now)
	if err != nil {
		s.logger.Ctx(ctx).ErrorWithErr(err, "Failed to load usage ledger")
		return nil, err
	}

	if ledger.Remaining() < charge.Credits {
		return s.deny(ctx, userID, action, ent.plan.ID, ledger.Remaining(), charge.Credits), nil
	}

	ok, err := s.ledgers.Reserve(ctx, ledger.ID, charge, now)
	if err != nil {
		s.logger.Ctx(ctx).ErrorWithErr(err, "Failed to reserve credits")
		return nil, err
	}

	// Read back either way so the caller sees the committed balance
	after, err := s.ledgers.GetByID(ctx, ledger.ID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return s.deny(ctx, userID, action, ent.plan.ID, after.Remaining(), charge.Credits), nil
	}

	metrics.RecordQuotaDecision(string(action), "allowed")
	metrics.RecordCreditsCharged(ent.plan.ID, charge.Credits)
	s.logger.Ctx(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"action":    action,
		"plan_id":   ent.plan.ID,
		"charged":   charge.Credits,
		"remaining": after.Remaining(),
	}).Debug("Credits reserved")

	return &quota.Decision{
		Allowed:        true,
		CreditsCharged: charge.Credits,
		Remaining:      after.Remaining(),
		LedgerID:       ledger.ID,
		PlanID:         ent.plan.ID,
	}, nil
}

func (s *QuotaService) deny(ctx context.Context, userID string, action quota.Action, planID string, remaining, required int64) *quota.Decision {
	metrics.RecordQuotaDecision(string(action), "denied")
	s.logger.Ctx(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"action":    action,
		"plan_id":   planID,
		"remaining": remaining,
		"required":  required,
	}).Info("Quota exceeded")
	return quota.Denied(planID, remaining, required)
}

// GetQuotaInfo reports the current period's usage. A missing ledger reads as
// nothing used; nothing is written.
func (s *QuotaService) GetQuotaInfo(ctx context.Context, userID string, now time.Time) (*quota.Info, error) {
	if userID == "" {
		return nil, errors.Unauthorized("User identity is required")
	}

	ent, err := s.resolve(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	limits := ent.plan.Limits
	info := &quota.Info{
		UserID:       userID,
		PlanID:       ent.plan.ID,
		Period:       ent.key.Period,
		Credits:      quota.Dimension{Limit: limits.CreditsPerPeriod},
		WeeklyPlans:  quota.Dimension{Limit: limits.WeeklyPlans},
		MonthlyPlans: quota.Dimension{Limit: limits.MonthlyPlans},
		AsOf:         now,
	}

	ledger, err := s.ledgers.Find(ctx, ent.key)
	if errors.IsNotFound(err) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	info.Period = ledger.Period
	info.Credits = quota.Dimension{Used: ledger.CreditsUsed, Limit: ledger.CreditsLimit}
	info.WeeklyPlans.Used = ledger.WeeklyPlansUsed
	info.MonthlyPlans.Used = ledger.MonthlyPlansUsed
	return info, nil
}
