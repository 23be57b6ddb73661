package client

import "time"

// Plan is a purchasable plan from the catalog
type Plan struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Tier             string `json:"tier"`
	PriceMinor       int64  `json:"priceMinor"`
	Currency         string `json:"currency"`
	PeriodDays       int    `json:"periodDays"`
	CreditsPerPeriod int64  `json:"creditsPerPeriod"`
	MaxFamilyMembers int    `json:"maxFamilyMembers"`
}

// Usage is one tracked allowance
type Usage struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// QuotaInfo summarizes the caller's current period
type QuotaInfo struct {
	PlanID       string    `json:"planId"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
	Credits      Usage     `json:"credits"`
	WeeklyPlans  Usage     `json:"weeklyPlans"`
	MonthlyPlans Usage     `json:"monthlyPlans"`
}

// Reservation is an allowed credit reservation
type Reservation struct {
	PlanID         string `json:"planId"`
	CreditsCharged int64  `json:"creditsCharged"`
	Remaining      int64  `json:"remaining"`
}

// Profile describes the person a meal plan is generated for
type Profile struct {
	Name         string   `json:"name,omitempty"`
	Age          int      `json:"age,omitempty"`
	DietType     string   `json:"diet_type,omitempty"`
	Allergies    []string `json:"allergies,omitempty"`
	Goal         string   `json:"goal,omitempty"`
	FamilySize   int      `json:"family_size,omitempty"`
	CaloriesGoal int      `json:"calories_goal,omitempty"`
}

// Retention describes when a free-tier meal plan disappears
type Retention struct {
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	IsExpiringSoon   bool       `json:"isExpiringSoon"`
	RemainingSeconds int64      `json:"remainingSeconds,omitempty"`
}

// MealPlan is a stored meal plan
type MealPlan struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	Provider   string    `json:"provider"`
	TokensUsed int       `json:"tokensUsed"`
	CreatedAt  time.Time `json:"createdAt"`
	Retention  Retention `json:"retention"`
}

// GeneratedMealPlan is a new meal plan plus the credits it cost
type GeneratedMealPlan struct {
	MealPlan       MealPlan `json:"mealPlan"`
	CreditsCharged int64    `json:"creditsCharged"`
	Remaining      int64    `json:"remaining"`
}

// MealPlanPage is one page of meal plans
type MealPlanPage struct {
	Data       []MealPlan `json:"data"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int64      `json:"total_items"`
	TotalPages int        `json:"total_pages"`
}

// Subscription is the caller's subscription
type Subscription struct {
	ID                int64     `json:"id"`
	PlanID            string    `json:"planId"`
	Status            string    `json:"status"`
	PeriodStart       time.Time `json:"periodStart"`
	PeriodEnd         time.Time `json:"periodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}

// Reconciliation is a successfully verified payment
type Reconciliation struct {
	State         string       `json:"state"`
	GatewayStatus string       `json:"gatewayStatus"`
	Subscription  Subscription `json:"subscription"`
	CreditsLimit  int64        `json:"creditsLimit"`
	CreditsUsed   int64        `json:"creditsUsed"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ListOptions contains pagination options
type ListOptions struct {
	Page     int
	PageSize int
}
