package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeProviderAPI        = "PROVIDER_API_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Entitlement and payment codes
	ErrCodeQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrCodeSignatureInvalid   = "SIGNATURE_INVALID"
	ErrCodePaymentNotCaptured = "PAYMENT_NOT_CAPTURED"
	ErrCodeAmountMismatch     = "AMOUNT_MISMATCH"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND error
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a forbidden error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// ProviderAPIError creates a provider API error
func ProviderAPIError(provider string, err error) *AppError {
	return Wrap(err, ErrCodeProviderAPI,
		fmt.Sprintf("Failed to communicate with %s API", provider),
		http.StatusBadGateway)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// ServiceUnavailable creates a service unavailable error
func ServiceUnavailable(message string) *AppError {
	return New(ErrCodeServiceUnavailable, message, http.StatusServiceUnavailable)
}

// QuotaDetails is the payload attached to a QUOTA_EXCEEDED error
type QuotaDetails struct {
	Remaining int64 `json:"remaining"`
	Required  int64 `json:"required"`
}

// QuotaExceeded creates a quota exceeded error carrying remaining/required credits
func QuotaExceeded(remaining, required int64) *AppError {
	return New(ErrCodeQuotaExceeded,
		fmt.Sprintf("Not enough credits: %d remaining, %d required", remaining, required),
		http.StatusTooManyRequests).WithDetails(QuotaDetails{Remaining: remaining, Required: required})
}

// SignatureInvalid creates a payment signature error. The message never includes
// the expected signature.
func SignatureInvalid() *AppError {
	return New(ErrCodeSignatureInvalid, "Payment signature verification failed", http.StatusBadRequest)
}

// PaymentNotCaptured creates an error for a payment the gateway has not captured
func PaymentNotCaptured(status string) *AppError {
	return New(ErrCodePaymentNotCaptured,
		fmt.Sprintf("Payment is not captured (status: %s)", status),
		http.StatusPaymentRequired).WithDetails(map[string]string{"status": status})
}

// AmountMismatch creates an error for a payment that does not cover the claimed plan
func AmountMismatch(planID string) *AppError {
	return New(ErrCodeAmountMismatch,
		fmt.Sprintf("Payment amount does not match plan %s", planID),
		http.StatusPaymentRequired)
}

// StoreUnavailable creates a transient storage error; callers may retry
func StoreUnavailable(message string, err error) *AppError {
	return Wrap(err, ErrCodeStoreUnavailable, message, http.StatusServiceUnavailable)
}

// PlanNotFound creates a plan catalog miss
func PlanNotFound(planID string) *AppError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("Plan %q not found", planID), http.StatusNotFound)
}
