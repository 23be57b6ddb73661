package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/api/middleware"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type stubQuota struct {
	decision *quota.Decision
	err      error
	gotNow   time.Time
}

func (s *stubQuota) CheckAndReserve(_ context.Context, _ string, _ quota.Action, now time.Time) (*quota.Decision, error) {
	s.gotNow = now
	return s.decision, s.err
}

func (s *stubQuota) GetQuotaInfo(context.Context, string, time.Time) (*quota.Info, error) {
	return nil, s.err
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Error.Code
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		checker    checkerFunc
		wantStatus int
	}{
		{name: "ready", checker: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "database down", checker: func(context.Context) error { return fmt.Errorf("no route") }, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checker, logger.Nop())
			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("Readyz() status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestQuotaHandler_Reserve(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	tests := []struct {
		name       string
		body       string
		userID     string
		svc        *stubQuota
		wantStatus int
		wantCode   string
	}{
		{
			name:       "allowed",
			body:       `{"action":"daily"}`,
			userID:     "u1",
			svc:        &stubQuota{decision: &quota.Decision{Allowed: true, CreditsCharged: 1, Remaining: 6, PlanID: "free"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "denied",
			body:       `{"action":"monthly"}`,
			userID:     "u1",
			svc:        &stubQuota{decision: quota.Denied("free", 2, 7)},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   errors.ErrCodeQuotaExceeded,
		},
		{
			name:       "store failure",
			body:       `{"action":"daily"}`,
			userID:     "u1",
			svc:        &stubQuota{err: errors.StoreUnavailable("Ledger unavailable", fmt.Errorf("locked"))},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   errors.ErrCodeStoreUnavailable,
		},
		{
			name:       "unknown field",
			body:       `{"action":"daily","credits":100}`,
			userID:     "u1",
			svc:        &stubQuota{},
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeBadRequest,
		},
		{
			name:       "no user",
			body:       `{"action":"daily"}`,
			svc:        &stubQuota{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewQuotaHandler(tt.svc, logger.Nop(), validator.New())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/quota/reserve", strings.NewReader(tt.body))
			if tt.userID != "" {
				req = withUser(req, tt.userID)
			}
			rec := httptest.NewRecorder()
			h.Reserve(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Reserve() status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if got := errorCode(t, rec); got != tt.wantCode {
					t.Errorf("Reserve() code = %s, want %s", got, tt.wantCode)
				}
			}
			if tt.wantStatus == http.StatusOK && !tt.svc.gotNow.Equal(fixed) {
				t.Errorf("service saw now = %v, want %v", tt.svc.gotNow, fixed)
			}
		})
	}
}

func TestFirstParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?order_id=plain&razorpay_payment_id=rzp", nil)
	q := req.URL.Query()
	if got := firstParam(q, "razorpay_order_id", "order_id"); got != "plain" {
		t.Errorf("firstParam() = %q, want plain", got)
	}
	if got := firstParam(q, "razorpay_payment_id", "payment_id"); got != "rzp" {
		t.Errorf("firstParam() = %q, want rzp", got)
	}
	if got := firstParam(q, "missing"); got != "" {
		t.Errorf("firstParam() = %q, want empty", got)
	}
}
