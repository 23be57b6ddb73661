package generation

import "context"

// Profile describes the person a meal plan is generated for
type Profile struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	Age          int      `json:"age" validate:"omitempty,gte=1,lte=120"`
	DietType     string   `json:"diet_type" validate:"omitempty,max=50"`
	Allergies    []string `json:"allergies" validate:"omitempty,max=20,dive,max=50"`
	Goal         string   `json:"goal" validate:"omitempty,max=200"`
	FamilySize   int      `json:"family_size" validate:"omitempty,gte=1,lte=12"`
	CaloriesGoal int      `json:"calories_goal" validate:"omitempty,gte=800,lte=6000"`
}

// Options controls a single generation
type Options struct {
	// Days is the number of days the plan covers
	Days int
	// MaxTokens caps the provider response
	MaxTokens int
}

// TokenUsage is the token accounting reported by the provider
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a generated meal plan
type Result struct {
	Content    string     `json:"content"`
	TokenUsage TokenUsage `json:"token_usage"`
}

// Generator is the paid external operation. It is invoked only after a
// successful reservation.
type Generator interface {
	// Provider identifies the backing AI provider
	Provider() string

	// Generate produces a meal plan for profile
	Generate(ctx context.Context, profile Profile, opts Options) (*Result, error)
}
