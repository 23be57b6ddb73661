package client

import (
	"encoding/json"
	"fmt"
)

// Error codes returned by the API that callers commonly branch on
const (
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeSignatureInvalid   = "SIGNATURE_INVALID"
	CodePaymentNotCaptured = "PAYMENT_NOT_CAPTURED"
	CodeAmountMismatch     = "AMOUNT_MISMATCH"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodePlanNotFound       = "PLAN_NOT_FOUND"
)

// APIError represents an error returned by the API
type APIError struct {
	StatusCode int             `json:"-"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// QuotaDetails is attached to QUOTA_EXCEEDED errors
type QuotaDetails struct {
	Remaining int64 `json:"remaining"`
	Required  int64 `json:"required"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("API error: %s (status: %d)", e.Message, e.StatusCode)
}

// IsNotFound returns true if the error is a 404 not found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsQuotaExceeded returns true if the request was denied for lack of credits
func (e *APIError) IsQuotaExceeded() bool {
	return e.Code == CodeQuotaExceeded
}

// IsRetryable returns true for transient failures worth retrying unchanged
func (e *APIError) IsRetryable() bool {
	return e.Code == CodeStoreUnavailable || e.StatusCode == 502 || e.StatusCode == 503
}

// IsServerError returns true if the error is a 5xx server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// Quota decodes the remaining/required details of a QUOTA_EXCEEDED error
func (e *APIError) Quota() (*QuotaDetails, bool) {
	if !e.IsQuotaExceeded() || len(e.Details) == 0 {
		return nil, false
	}
	var d QuotaDetails
	if err := json.Unmarshal(e.Details, &d); err != nil {
		return nil, false
	}
	return &d, true
}
