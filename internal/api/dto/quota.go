package dto

import "time"

// ReserveRequest asks to charge credits for an action
type ReserveRequest struct {
	Action string `json:"action" validate:"required,action"`
}

// ReserveResponse is an allowed reservation
type ReserveResponse struct {
	PlanID         string `json:"planId"`
	CreditsCharged int64  `json:"creditsCharged"`
	Remaining      int64  `json:"remaining"`
}

// UsageDTO is one tracked allowance
type UsageDTO struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// QuotaInfoDTO summarizes a user's current period
type QuotaInfoDTO struct {
	PlanID       string    `json:"planId"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
	Credits      UsageDTO  `json:"credits"`
	WeeklyPlans  UsageDTO  `json:"weeklyPlans"`
	MonthlyPlans UsageDTO  `json:"monthlyPlans"`
}
