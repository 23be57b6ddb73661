package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

func newRazorpayServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_key" || pass != "rzp_secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"auth failed"}}`)
			return
		}
		if r.URL.Path != "/v1/payments/pay_123" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"not found"}}`)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRazorpayGateway_FetchPayment(t *testing.T) {
	srv := newRazorpayServer(t, http.StatusOK,
		`{"id":"pay_123","entity":"payment","amount":29900,"currency":"inr","status":"captured","order_id":"order_9"}`)

	gw := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret", BaseURL: srv.URL + "/"})
	p, err := gw.FetchPayment(context.Background(), "pay_123")
	if err != nil {
		t.Fatalf("FetchPayment() error = %v", err)
	}

	want := payment.Payment{ID: "pay_123", OrderID: "order_9", Status: payment.StatusCaptured, Amount: 29900, Currency: "INR"}
	if *p != want {
		t.Errorf("FetchPayment() = %+v, want %+v", *p, want)
	}
	if !p.Settled() {
		t.Error("captured payment should be settled")
	}
}

func TestRazorpayGateway_FetchPaymentErrors(t *testing.T) {
	tests := []struct {
		name      string
		keySecret string
		paymentID string
		status    int
		body      string
	}{
		{name: "bad credentials", keySecret: "wrong", paymentID: "pay_123", status: http.StatusOK, body: `{}`},
		{name: "unknown payment", keySecret: "rzp_secret", paymentID: "pay_404", status: http.StatusOK, body: `{}`},
		{name: "server error", keySecret: "rzp_secret", paymentID: "pay_123", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed body", keySecret: "rzp_secret", paymentID: "pay_123", status: http.StatusOK, body: `{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRazorpayServer(t, tt.status, tt.body)
			gw := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: tt.keySecret, BaseURL: srv.URL})

			p, err := gw.FetchPayment(context.Background(), tt.paymentID)
			if err == nil {
				t.Fatalf("FetchPayment() = %+v, want error", p)
			}
			if !errors.HasCode(err, errors.ErrCodeProviderAPI) {
				t.Errorf("FetchPayment() error = %v, want %s", err, errors.ErrCodeProviderAPI)
			}
		})
	}
}

func TestRazorpayGateway_ComputeSignature(t *testing.T) {
	gw := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret"})
	if got, want := gw.ComputeSignature("order_1", "pay_1"), payment.Signature("rzp_secret", "order_1", "pay_1"); got != want {
		t.Errorf("ComputeSignature() = %s, want %s", got, want)
	}

	custom := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret", SignatureSecret: "webhook"})
	if got, want := custom.ComputeSignature("order_1", "pay_1"), payment.Signature("webhook", "order_1", "pay_1"); got != want {
		t.Errorf("ComputeSignature() with signature secret = %s, want %s", got, want)
	}
}
