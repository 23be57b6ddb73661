package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

const systemPrompt = "You are a registered dietitian. Plans must respect every listed allergy."

// OpenAIGenerator generates meal plans with the OpenAI chat completions API
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// OpenAIConfig contains OpenAI settings
type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, used by tests and compatible proxies
	BaseURL string
}

// NewOpenAIGenerator creates a new OpenAI-backed generator
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Provider returns the provider name
func (g *OpenAIGenerator) Provider() string {
	return "openai"
}

// Generate produces a meal plan for profile
func (g *OpenAIGenerator) Generate(ctx context.Context, profile generation.Profile, opts generation.Options) (*generation.Result, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: generation.Prompt(profile, opts)},
		},
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return nil, errors.ProviderAPIError(g.Provider(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.ProviderAPIError(g.Provider(), fmt.Errorf("no content generated"))
	}

	return &generation.Result{
		Content: resp.Choices[0].Message.Content,
		TokenUsage: generation.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
