package quota

import (
	"fmt"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
)

// Action is a paid action a user can request
type Action string

const (
	ActionDailyPlan   Action = "daily"
	ActionWeeklyPlan  Action = "weekly"
	ActionMonthlyPlan Action = "monthly"
)

// costs is the credit price of each action. Values are product policy.
var costs = map[Action]int64{
	ActionDailyPlan:   1,
	ActionWeeklyPlan:  4,
	ActionMonthlyPlan: 7,
}

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := costs[a]; !ok {
		return "", errors.BadRequest(fmt.Sprintf("unknown action %q", s))
	}
	return a, nil
}

// Cost returns the credit cost of the action
func (a Action) Cost() (int64, error) {
	c, ok := costs[a]
	if !ok {
		return 0, errors.BadRequest(fmt.Sprintf("unknown action %q", string(a)))
	}
	return c, nil
}

// Charge returns the ledger mutation for the action, including the legacy
// per-feature counters
func (a Action) Charge() (usage.Charge, error) {
	c, err := a.Cost()
	if err != nil {
		return usage.Charge{}, err
	}
	ch := usage.Charge{Credits: c}
	switch a {
	case ActionWeeklyPlan:
		ch.WeeklyPlans = 1
	case ActionMonthlyPlan:
		ch.MonthlyPlans = 1
	}
	return ch, nil
}

// Days is how many days a plan generated for the action covers
func (a Action) Days() int {
	switch a {
	case ActionWeeklyPlan:
		return 7
	case ActionMonthlyPlan:
		return 30
	default:
		return 1
	}
}

// Actions lists all known actions
func Actions() []Action {
	return []Action{ActionDailyPlan, ActionWeeklyPlan, ActionMonthlyPlan}
}

// ReasonQuotaExceeded is the machine-readable denial reason
const ReasonQuotaExceeded = errors.ErrCodeQuotaExceeded

// Decision is the outcome of CheckAndReserve
type Decision struct {
	Allowed        bool                 `json:"allowed"`
	CreditsCharged int64                `json:"credits_charged,omitempty"`
	Remaining      int64                `json:"remaining"`
	Reason         string               `json:"reason,omitempty"`
	Details        *errors.QuotaDetails `json:"details,omitempty"`
	LedgerID       int64                `json:"-"`
	PlanID         string               `json:"plan_id"`
}

// Err converts a denial into the QUOTA_EXCEEDED error surfaced to callers.
// It returns nil for an allowed decision.
func (d *Decision) Err() *errors.AppError {
	if d.Allowed || d.Details == nil {
		return nil
	}
	return errors.QuotaExceeded(d.Details.Remaining, d.Details.Required)
}

// Denied builds a QUOTA_EXCEEDED decision
func Denied(planID string, remaining, required int64) *Decision {
	return &Decision{
		Allowed:   false,
		Remaining: remaining,
		Reason:    ReasonQuotaExceeded,
		Details:   &errors.QuotaDetails{Remaining: remaining, Required: required},
		PlanID:    planID,
	}
}

// Dimension is one tracked allowance
type Dimension struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// Info is the read-only quota summary for a user
type Info struct {
	UserID       string       `json:"user_id"`
	PlanID       string       `json:"plan_id"`
	Period       usage.Period `json:"period"`
	Credits      Dimension    `json:"credits"`
	WeeklyPlans  Dimension    `json:"weekly_plans"`
	MonthlyPlans Dimension    `json:"monthly_plans"`
	AsOf         time.Time    `json:"as_of"`
}
