package dto

import "github.com/pratik-mahalle/mealplanner/internal/domain/plan"

// PlanDTO represents a purchasable plan
type PlanDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Tier             string `json:"tier"`
	PriceMinor       int64  `json:"priceMinor"`
	Currency         string `json:"currency"`
	PeriodDays       int    `json:"periodDays"`
	CreditsPerPeriod int64  `json:"creditsPerPeriod"`
	MaxFamilyMembers int    `json:"maxFamilyMembers"`
}

// ToPlanDTO converts a catalog plan
func ToPlanDTO(p *plan.Plan) PlanDTO {
	return PlanDTO{
		ID:               p.ID,
		Name:             p.Name,
		Tier:             string(p.Tier),
		PriceMinor:       p.PriceMinor,
		Currency:         p.Currency,
		PeriodDays:       p.PeriodDays,
		CreditsPerPeriod: p.Limits.CreditsPerPeriod,
		MaxFamilyMembers: p.Limits.MaxFamilyMembers,
	}
}
