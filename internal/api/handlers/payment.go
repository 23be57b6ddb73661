package handlers

import (
	"net/http"
	"net/url"

	"github.com/pratik-mahalle/mealplanner/internal/api/dto"
	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
)

// PaymentHandler reconciles checkout results and manages the subscription
type PaymentHandler struct {
	service   payment.Service
	logger    *logger.Logger
	validator *validator.Validator
	// redirectURL receives the browser after a gateway callback. Empty means
	// the callback answers with JSON.
	redirectURL string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service payment.Service, log *logger.Logger, val *validator.Validator, redirectURL string) *PaymentHandler {
	return &PaymentHandler{
		service:     service,
		logger:      log,
		validator:   val,
		redirectURL: redirectURL,
	}
}

// Verify reconciles a payment posted by the checkout client
// @Summary Verify payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.VerifyPaymentRequest true "Checkout result"
// @Success 200 {object} dto.ReconcileResponse "Subscription activated"
// @Failure 400 {object} utils.ErrorResponse "Signature invalid"
// @Failure 402 {object} utils.ErrorResponse "Payment not captured or amount mismatch"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retry"
// @Security BearerAuth
// @Router /api/v1/payments/verify [post]
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	res, err := h.service.ReconcilePayment(r.Context(), userID, payment.Assertion{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
		ClaimedPlanID: req.PlanID,
	}, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Payment reconciliation failed")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, toReconcileResponse(res))
}

// Callback reconciles a payment after a gateway redirect (3-D Secure flows).
// Both Razorpay-prefixed and plain query parameter names are accepted.
// @Summary Payment callback
// @Tags Payments
// @Produce json
// @Param order_id query string true "Gateway order id"
// @Param payment_id query string true "Gateway payment id"
// @Param signature query string true "Checkout signature"
// @Param plan_id query string true "Claimed plan"
// @Success 200 {object} dto.ReconcileResponse "Subscription activated"
// @Success 303 "Redirect to the frontend with the reconciliation state"
// @Security BearerAuth
// @Router /api/v1/payments/callback [get]
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := dto.VerifyPaymentRequest{
		OrderID:   firstParam(q, "razorpay_order_id", "order_id"),
		PaymentID: firstParam(q, "razorpay_payment_id", "payment_id"),
		Signature: firstParam(q, "razorpay_signature", "signature"),
		PlanID:    firstParam(q, "plan_id", "planId"),
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.finishCallback(w, r, nil, errors.ValidationError("Validation failed", errs))
		return
	}

	res, err := h.service.ReconcilePayment(r.Context(), userID, payment.Assertion{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
		ClaimedPlanID: req.PlanID,
	}, now())
	h.finishCallback(w, r, res, err)
}

func (h *PaymentHandler) finishCallback(w http.ResponseWriter, r *http.Request, res *payment.Result, err error) {
	if h.redirectURL == "" {
		if err != nil {
			writeServiceError(w, r, h.logger, err, "Payment callback failed")
			return
		}
		utils.WriteSuccess(w, http.StatusOK, toReconcileResponse(res))
		return
	}

	state := string(payment.StateReconciled)
	if err != nil {
		h.logger.Ctx(r.Context()).WithError(err).Warn("Payment callback failed")
		state = errors.ErrCodeInternal
		if appErr, ok := errors.As(err); ok {
			state = appErr.Code
		}
	}

	target, perr := url.Parse(h.redirectURL)
	if perr != nil {
		utils.WriteError(w, errors.Internal("Invalid redirect URL", perr))
		return
	}
	values := target.Query()
	values.Set("state", state)
	target.RawQuery = values.Encode()
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

// CancelSubscription cancels the caller's subscription now or at period end
// @Summary Cancel subscription
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.CancelSubscriptionRequest true "Cancel options"
// @Success 200 {object} dto.SubscriptionDTO "Updated subscription"
// @Failure 404 {object} utils.ErrorResponse "No subscription"
// @Failure 409 {object} utils.ErrorResponse "Subscription not active"
// @Security BearerAuth
// @Router /api/v1/subscription/cancel [post]
func (h *PaymentHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CancelSubscriptionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sub, err := h.service.CancelSubscription(r.Context(), userID, req.AtPeriodEnd, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to cancel subscription")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

func toReconcileResponse(res *payment.Result) dto.ReconcileResponse {
	out := dto.ReconcileResponse{
		State:         string(res.State),
		GatewayStatus: res.GatewayStatus,
	}
	if res.Subscription != nil {
		out.Subscription = dto.ToSubscriptionDTO(res.Subscription)
	}
	if res.Ledger != nil {
		out.CreditsLimit = res.Ledger.CreditsLimit
		out.CreditsUsed = res.Ledger.CreditsUsed
	}
	return out
}

func firstParam(q url.Values, names ...string) string {
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v
		}
	}
	return ""
}
