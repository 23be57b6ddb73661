package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// StripeGateway is a payment.Gateway backed by Stripe PaymentIntents. The
// order id travels in the intent's "order_id" metadata.
type StripeGateway struct {
	signSecret string
	intents    *paymentintent.Client
}

// StripeConfig contains Stripe credentials
type StripeConfig struct {
	SecretKey       string
	SignatureSecret string
	// BaseURL overrides the Stripe API host, used by tests
	BaseURL string
}

// NewStripeGateway creates a new Stripe client
func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	return &StripeGateway{
		signSecret: cfg.SignatureSecret,
		intents: &paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
	}
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}

// ComputeSignature returns the server-issued signature for an order/intent pair
func (g *StripeGateway) ComputeSignature(orderID, paymentID string) string {
	return payment.Signature(g.signSecret, orderID, paymentID)
}

// FetchPayment retrieves the PaymentIntent and maps it onto gateway statuses
func (g *StripeGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(paymentID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return nil, errors.ProviderAPIError(g.Name(),
				fmt.Errorf("status %d: %s", stripeErr.HTTPStatusCode, stripeErr.Code))
		}
		return nil, errors.ProviderAPIError(g.Name(), err)
	}

	p := &payment.Payment{
		ID:       pi.ID,
		OrderID:  pi.Metadata["order_id"],
		Status:   stripeStatus(pi.Status),
		Amount:   pi.Amount,
		Currency: strings.ToUpper(string(pi.Currency)),
	}
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		p.Amount = pi.AmountReceived
	}
	return p, nil
}

func stripeStatus(s stripe.PaymentIntentStatus) string {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.StatusCaptured
	case stripe.PaymentIntentStatusRequiresCapture:
		return payment.StatusAuthorized
	case stripe.PaymentIntentStatusCanceled:
		return payment.StatusFailed
	default:
		return string(s)
	}
}
