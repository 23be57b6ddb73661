package payment

import (
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
)

// Assertion is the client-supplied proof of a completed payment
type Assertion struct {
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"payment_id"`
	Signature     string `json:"signature"`
	ClaimedPlanID string `json:"plan_id"`
}

// Gateway payment statuses that matter to reconciliation
const (
	StatusCaptured   = "captured"
	StatusAuthorized = "authorized"
	StatusCreated    = "created"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

// Payment is the gateway's authoritative view of a payment
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id,omitempty"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Settled reports whether the payment may be reconciled
func (p *Payment) Settled() bool {
	return p.Status == StatusCaptured || p.Status == StatusAuthorized
}

// State is a reconciliation state
type State string

const (
	StateVerifying          State = "VERIFYING"
	StateSignatureInvalid   State = "SIGNATURE_INVALID"
	StatePaymentNotCaptured State = "PAYMENT_NOT_CAPTURED"
	StateAmountMismatch     State = "AMOUNT_MISMATCH"
	StateReconciled         State = "RECONCILED"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s != StateVerifying
}

// Result is the outcome of a reconciliation attempt
type Result struct {
	State         State                      `json:"state"`
	GatewayStatus string                     `json:"gateway_status,omitempty"`
	Subscription  *subscription.Subscription `json:"subscription,omitempty"`
	Ledger        *usage.Ledger              `json:"ledger,omitempty"`
}
