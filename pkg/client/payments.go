package client

import "context"

// PaymentService handles payment and subscription API calls
type PaymentService struct {
	client *Client
}

// VerifyRequest is the checkout result returned by the payment gateway
type VerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	PlanID    string `json:"planId"`
}

// Verify reconciles a checkout result. Repeating a successful call is safe.
func (s *PaymentService) Verify(ctx context.Context, req VerifyRequest) (*Reconciliation, error) {
	var out Reconciliation
	if err := s.client.doRequest(ctx, "POST", "/api/v1/payments/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelSubscription cancels the caller's subscription now or at the end of
// the current period
func (s *PaymentService) CancelSubscription(ctx context.Context, atPeriodEnd bool) (*Subscription, error) {
	var sub Subscription
	body := map[string]bool{"atPeriodEnd": atPeriodEnd}
	if err := s.client.doRequest(ctx, "POST", "/api/v1/subscription/cancel", body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
