package providers

import (
	"fmt"
	"strings"

	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
)

// NewGateway builds the payment gateway named by cfg.Gateway
func NewGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	switch strings.ToLower(cfg.Gateway) {
	case "razorpay":
		return NewRazorpayGateway(RazorpayConfig{
			KeyID:           cfg.KeyID,
			KeySecret:       cfg.KeySecret,
			SignatureSecret: cfg.SignatureSecret,
			BaseURL:         cfg.BaseURL,
			Timeout:         cfg.FetchTimeout,
		}), nil
	case "stripe":
		return NewStripeGateway(StripeConfig{
			SecretKey:       cfg.StripeSecretKey,
			SignatureSecret: cfg.SignatureSecret,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported payment gateway: %s", cfg.Gateway)
	}
}

// NewGenerator builds the meal plan generator named by cfg.Provider
func NewGenerator(cfg config.AIConfig) (generation.Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIGenerator(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel}), nil
	case "gemini":
		return NewGeminiGenerator(GeminiConfig{APIKey: cfg.GeminiAPIKey}), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
