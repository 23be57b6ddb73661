package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// ReconciliationService implements payment.Service
type ReconciliationService struct {
	catalog plan.Catalog
	gateway payment.Gateway
	store   payment.Store
	subs    subscription.Repository
	logger  *logger.Logger
}

// NewReconciliationService creates a new payment reconciliation service
func NewReconciliationService(
	catalog plan.Catalog,
	gateway payment.Gateway,
	store payment.Store,
	subs subscription.Repository,
	log *logger.Logger,
) payment.Service {
	return &ReconciliationService{
		catalog: catalog,
		gateway: gateway,
		store:   store,
		subs:    subs,
		logger:  log,
	}
}

// ReconcilePayment drives one assertion from VERIFYING to a terminal state.
// Rejections are returned as errors carrying the state's code; a nil error
// means RECONCILED.
func (s *ReconciliationService) ReconcilePayment(ctx context.Context, userID string, a payment.Assertion, now time.Time) (*payment.Result, error) {
	if userID == "" {
		return nil, errors.Unauthorized("User identity is required")
	}
	if a.OrderID == "" || a.PaymentID == "" {
		return nil, errors.BadRequest("order_id and payment_id are required")
	}

	log := s.logger.Ctx(ctx).WithFields(map[string]interface{}{
		"user_id":    userID,
		"order_id":   a.OrderID,
		"payment_id": a.PaymentID,
		"plan_id":    a.ClaimedPlanID,
		"gateway":    s.gateway.Name(),
	})

	// Signature first: a forged assertion must not reach the gateway or the store
	if !payment.SignatureMatches(s.gateway.ComputeSignature(a.OrderID, a.PaymentID), a.Signature) {
		metrics.RecordReconciliation(string(payment.StateSignatureInvalid))
		log.Warn("Payment signature mismatch")
		return nil, errors.SignatureInvalid()
	}

	p, err := s.catalog.Get(a.ClaimedPlanID)
	if err != nil {
		log.Warn("Payment claims unknown plan")
		return nil, err
	}
	if p.IsFree() {
		return nil, errors.BadRequest(fmt.Sprintf("plan %s cannot be purchased", p.ID))
	}

	start := time.Now()
	pay, err := s.gateway.FetchPayment(ctx, a.PaymentID)
	if err != nil {
		metrics.RecordGatewayFetch(s.gateway.Name(), "error", time.Since(start))
		log.WarnWithErr(err, "Gateway payment lookup failed")
		return nil, err
	}
	metrics.RecordGatewayFetch(s.gateway.Name(), pay.Status, time.Since(start))

	if pay.OrderID != "" && pay.OrderID != a.OrderID {
		metrics.RecordReconciliation(string(payment.StateSignatureInvalid))
		log.Warn("Gateway reports payment for a different order")
		return nil, errors.SignatureInvalid()
	}

	if !pay.Settled() {
		metrics.RecordReconciliation(string(payment.StatePaymentNotCaptured))
		log.With("gateway_status", pay.Status).Info("Payment not captured")
		return nil, errors.PaymentNotCaptured(pay.Status)
	}

	if pay.Amount < p.PriceMinor || !strings.EqualFold(pay.Currency, p.Currency) {
		metrics.RecordReconciliation(string(payment.StateAmountMismatch))
		log.WithFields(map[string]interface{}{
			"amount":   pay.Amount,
			"currency": pay.Currency,
			"price":    p.PriceMinor,
		}).Warn("Payment amount does not cover plan")
		return nil, errors.AmountMismatch(p.ID)
	}

	result := &payment.Result{State: payment.StateReconciled, GatewayStatus: pay.Status}
	err = s.store.WithinTx(ctx, func(subs subscription.Repository, ledgers usage.Repository) error {
		sub, ledger, err := s.activate(ctx, subs, ledgers, userID, p, a, now)
		if err != nil {
			return err
		}
		result.Subscription = sub
		result.Ledger = ledger
		return nil
	})
	if err != nil {
		log.ErrorWithErr(err, "Failed to persist reconciled payment")
		if _, ok := errors.As(err); !ok {
			err = errors.StoreUnavailable("Failed to persist subscription", err)
		}
		return nil, err
	}

	metrics.RecordReconciliation(string(payment.StateReconciled))
	log.WithFields(map[string]interface{}{
		"subscription_id": result.Subscription.ID,
		"credits_limit":   result.Ledger.CreditsLimit,
		"period_end":      result.Subscription.BillingIntervalEnd,
	}).Info("Payment reconciled")

	return result, nil
}

// activate writes the subscription and its fresh ledger. Every verified
// capture rewrites the user's row as active with a period starting at now and
// resets the ledger to zero used, so repeated delivery never grants twice.
func (s *ReconciliationService) activate(
	ctx context.Context,
	subs subscription.Repository,
	ledgers usage.Repository,
	userID string,
	p *plan.Plan,
	a payment.Assertion,
	now time.Time,
) (*subscription.Subscription, *usage.Ledger, error) {
	start := now.UTC().Truncate(time.Second)
	sub := &subscription.Subscription{
		UserID:               userID,
		PlanID:               p.ID,
		Status:               subscription.StatusActive,
		BillingIntervalStart: start,
		BillingIntervalEnd:   start.Add(p.Period()),
		CancelAtPeriodEnd:    false,
		PaymentRef:           a.PaymentID,
		OrderRef:             a.OrderID,
		UpdatedAt:            start,
	}
	if err := subs.Upsert(ctx, sub); err != nil {
		return nil, nil, err
	}

	ledger, err := ledgers.Reset(ctx, usage.Key{UserID: userID, SubscriptionID: sub.ID, Period: sub.Period()},
		p.Limits.CreditsPerPeriod, start)
	if err != nil {
		return nil, nil, err
	}
	return sub, ledger, nil
}

// CancelSubscription cancels immediately or flags the subscription to lapse
// at the end of its billing interval
func (s *ReconciliationService) CancelSubscription(ctx context.Context, userID string, atPeriodEnd bool, now time.Time) (*subscription.Subscription, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Entitles(now) {
		return nil, errors.Conflict("Subscription is not active")
	}

	if atPeriodEnd {
		err = s.subs.SetCancelAtPeriodEnd(ctx, userID, true, now)
	} else {
		err = s.subs.UpdateStatus(ctx, userID, subscription.StatusCancelled, now)
	}
	if err != nil {
		s.logger.Ctx(ctx).ErrorWithErr(err, "Failed to cancel subscription")
		return nil, err
	}

	s.logger.Ctx(ctx).WithFields(map[string]interface{}{
		"user_id":       userID,
		"plan_id":       sub.PlanID,
		"at_period_end": atPeriodEnd,
	}).Info("Subscription cancelled")

	return s.subs.GetByUserID(ctx, userID)
}

// ExpireLapsed soft-expires subscriptions whose billing interval has ended
func (s *ReconciliationService) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.subs.ExpireLapsed(ctx, now)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to expire lapsed subscriptions")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"expired": n,
	}).Info("Lapsed subscriptions expired")

	return n, nil
}
