package payment

import "context"

// Gateway is the payment provider seen by reconciliation
type Gateway interface {
	// Name identifies the gateway in logs and metrics
	Name() string

	// ComputeSignature returns the expected signature for an order/payment pair
	ComputeSignature(orderID, paymentID string) string

	// FetchPayment returns the gateway's current view of the payment
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}
