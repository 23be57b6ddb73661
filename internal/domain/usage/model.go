package usage

import (
	"fmt"
	"time"
)

// Period is a billing period [Start, End)
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Validate checks that the period is non-empty
func (p Period) Validate() error {
	if !p.End.After(p.Start) {
		return fmt.Errorf("period end %s is not after start %s", p.End, p.Start)
	}
	return nil
}

// FreePeriod returns the UTC calendar month containing now. Free-tier ledgers
// roll over on month boundaries.
func FreePeriod(now time.Time) Period {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// Ledger tracks credits granted and consumed in one billing period
type Ledger struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	SubscriptionID   int64     `json:"subscription_id"` // 0 for the implicit free plan
	Period           Period    `json:"period"`
	CreditsLimit     int64     `json:"credits_limit"`
	CreditsUsed      int64     `json:"credits_used"`
	WeeklyPlansUsed  int64     `json:"weekly_plans_used"`
	MonthlyPlansUsed int64     `json:"monthly_plans_used"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Remaining returns the credits still available
func (l *Ledger) Remaining() int64 {
	if r := l.CreditsLimit - l.CreditsUsed; r > 0 {
		return r
	}
	return 0
}

// CheckInvariant verifies 0 <= used <= limit
func (l *Ledger) CheckInvariant() error {
	if l.CreditsUsed < 0 || l.CreditsUsed > l.CreditsLimit {
		return fmt.Errorf("ledger %d violates 0 <= used(%d) <= limit(%d)", l.ID, l.CreditsUsed, l.CreditsLimit)
	}
	return nil
}

// Key identifies the ledger row for a user's billing period. Paid ledgers are
// unique per subscription; free ledgers are unique per (user, period start).
type Key struct {
	UserID         string
	SubscriptionID int64
	Period         Period
}

// IsFree reports whether the key addresses a free-tier ledger
func (k Key) IsFree() bool {
	return k.SubscriptionID == 0
}

// Charge is the mutation applied by a successful reservation
type Charge struct {
	Credits      int64
	WeeklyPlans  int64
	MonthlyPlans int64
}
