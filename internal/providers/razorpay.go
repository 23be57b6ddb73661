package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// RazorpayGateway is a payment.Gateway backed by the Razorpay REST API
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	signSecret string
	baseURL    string
	httpClient *http.Client
}

// RazorpayConfig contains Razorpay credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	// SignatureSecret defaults to KeySecret, which is what Razorpay signs with
	SignatureSecret string
	BaseURL         string
	Timeout         time.Duration
}

// NewRazorpayGateway creates a new Razorpay client
func NewRazorpayGateway(cfg RazorpayConfig) *RazorpayGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	if cfg.SignatureSecret == "" {
		cfg.SignatureSecret = cfg.KeySecret
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &RazorpayGateway{
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		signSecret: cfg.SignatureSecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the gateway name
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// ComputeSignature returns the checkout signature Razorpay issues for an
// order/payment pair
func (g *RazorpayGateway) ComputeSignature(orderID, paymentID string) string {
	return payment.Signature(g.signSecret, orderID, paymentID)
}

type razorpayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// FetchPayment retrieves the payment from Razorpay
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	endpoint := fmt.Sprintf("%s/v1/payments/%s", g.baseURL, url.PathEscape(paymentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Internal("Failed to create gateway request", err)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.ProviderAPIError(g.Name(), fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.ProviderAPIError(g.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		// Only the gateway's error code and description leave this function
		var gwErr razorpayError
		_ = json.Unmarshal(body, &gwErr)
		return nil, errors.ProviderAPIError(g.Name(),
			fmt.Errorf("status %d: %s %s", resp.StatusCode, gwErr.Error.Code, gwErr.Error.Description))
	}

	var p razorpayPayment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.ProviderAPIError(g.Name(), fmt.Errorf("failed to decode payment: %w", err))
	}

	return &payment.Payment{
		ID:       p.ID,
		OrderID:  p.OrderID,
		Status:   p.Status,
		Amount:   p.Amount,
		Currency: strings.ToUpper(p.Currency),
	}, nil
}
