package dto

import (
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
)

// VerifyPaymentRequest is the checkout result posted by the client
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required,max=128"`
	PaymentID string `json:"paymentId" validate:"required,max=128"`
	Signature string `json:"signature" validate:"required,max=256"`
	PlanID    string `json:"planId" validate:"required,max=32"`
}

// CancelSubscriptionRequest cancels the caller's subscription
type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"atPeriodEnd"`
}

// SubscriptionDTO represents a subscription
type SubscriptionDTO struct {
	ID                int64     `json:"id"`
	PlanID            string    `json:"planId"`
	Status            string    `json:"status"`
	PeriodStart       time.Time `json:"periodStart"`
	PeriodEnd         time.Time `json:"periodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}

// ReconcileResponse is a successful reconciliation
type ReconcileResponse struct {
	State         string          `json:"state"`
	GatewayStatus string          `json:"gatewayStatus"`
	Subscription  SubscriptionDTO `json:"subscription"`
	CreditsLimit  int64           `json:"creditsLimit"`
	CreditsUsed   int64           `json:"creditsUsed"`
}

// ToSubscriptionDTO converts a subscription
func ToSubscriptionDTO(s *subscription.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		ID:                s.ID,
		PlanID:            s.PlanID,
		Status:            string(s.Status),
		PeriodStart:       s.BillingIntervalStart,
		PeriodEnd:         s.BillingIntervalEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}
