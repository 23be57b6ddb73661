package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

var testProfile = generation.Profile{DietType: "vegan", Allergies: []string{"soy"}}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			MaxTokens int `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[len(req.Messages)-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"# Day 1"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":40,"completion_tokens":60,"total_tokens":100}}`)
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	res, err := g.Generate(context.Background(), testProfile, generation.Options{Days: 7, MaxTokens: 500})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Content != "# Day 1" {
		t.Errorf("Generate() content = %q, want %q", res.Content, "# Day 1")
	}
	if res.TokenUsage.TotalTokens != 100 || res.TokenUsage.PromptTokens != 40 {
		t.Errorf("Generate() usage = %+v", res.TokenUsage)
	}
	if !strings.Contains(gotPrompt, "7-day") || !strings.Contains(gotPrompt, "soy") {
		t.Errorf("prompt sent = %q, want days and allergies", gotPrompt)
	}
}

func TestOpenAIGenerator_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), testProfile, generation.Options{Days: 1}); !errors.HasCode(err, errors.ErrCodeProviderAPI) {
		t.Errorf("Generate() error = %v, want %s", err, errors.ErrCodeProviderAPI)
	}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Api-Key") != "g-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/gemini-test:generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"# Day 1\n"},{"text":"Oats"}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":30,"totalTokenCount":42}}`)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{name: "success", apiKey: "g-key"},
		{name: "rejected key", apiKey: "bad", wantErr: true},
		{name: "missing key", apiKey: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeminiGenerator(GeminiConfig{APIKey: tt.apiKey, Model: "gemini-test", BaseURL: srv.URL})
			res, err := g.Generate(context.Background(), testProfile, generation.Options{Days: 3, MaxTokens: 256})
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeProviderAPI) {
					t.Errorf("Generate() error = %v, want %s", err, errors.ErrCodeProviderAPI)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if res.Content != "# Day 1\nOats" {
				t.Errorf("Generate() content = %q", res.Content)
			}
			if res.TokenUsage.TotalTokens != 42 {
				t.Errorf("Generate() total tokens = %d, want 42", res.TokenUsage.TotalTokens)
			}
		})
	}
}

func TestFactories(t *testing.T) {
	if g, err := NewGateway(config.PaymentConfig{Gateway: "razorpay"}); err != nil || g.Name() != "razorpay" {
		t.Errorf("NewGateway(razorpay) = %v, %v", g, err)
	}
	if g, err := NewGateway(config.PaymentConfig{Gateway: "Stripe"}); err != nil || g.Name() != "stripe" {
		t.Errorf("NewGateway(stripe) = %v, %v", g, err)
	}
	if _, err := NewGateway(config.PaymentConfig{Gateway: "paypal"}); err == nil {
		t.Error("NewGateway(paypal) should fail")
	}
	if g, err := NewGenerator(config.AIConfig{Provider: "gemini"}); err != nil || g.Provider() != "gemini" {
		t.Errorf("NewGenerator(gemini) = %v, %v", g, err)
	}
	if _, err := NewGenerator(config.AIConfig{Provider: "llama"}); err == nil {
		t.Error("NewGenerator(llama) should fail")
	}
}
