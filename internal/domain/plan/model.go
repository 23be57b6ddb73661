package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Plan identifiers
const (
	IDFree       = "free"
	IDIndividual = "individual"
	IDFamily     = "family"
)

// Tier is the closed set of plan tiers. Retention and entitlement only ever
// distinguish free from paid.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPaid
}

// LimitsVersion is the only limits schema version this build understands
const LimitsVersion = 1

// Limits holds the per-period allowances of a plan
type Limits struct {
	Version          int   `json:"version"`
	CreditsPerPeriod int64 `json:"credits_per_period"`
	MaxFamilyMembers int   `json:"max_family_members"`
	// Legacy per-feature caps, reported only. Zero means not tracked.
	WeeklyPlans  int64 `json:"weekly_plans,omitempty"`
	MonthlyPlans int64 `json:"monthly_plans,omitempty"`
}

// Plan represents a purchasable (or free) plan
type Plan struct {
	ID         string    `json:"id"`
	Tier       Tier      `json:"tier"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Currency   string    `json:"currency"`
	PeriodDays int       `json:"period_days"`
	Limits     Limits    `json:"limits"`
	Active     bool      `json:"active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Period returns the length of one billing period
func (p *Plan) Period() time.Duration {
	return time.Duration(p.PeriodDays) * 24 * time.Hour
}

// IsFree reports whether the plan belongs to the free tier
func (p *Plan) IsFree() bool {
	return p.Tier == TierFree
}

// ParseLimits decodes a stored limits document. Unknown versions and unknown
// fields are rejected so a new field can never be silently ignored.
func ParseLimits(raw []byte) (Limits, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Limits{}, fmt.Errorf("invalid limits document: %w", err)
	}
	if probe.Version != LimitsVersion {
		return Limits{}, fmt.Errorf("unsupported limits version %d", probe.Version)
	}

	var l Limits
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return Limits{}, fmt.Errorf("invalid limits v%d: %w", probe.Version, err)
	}
	if err := l.Validate(); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// Validate checks the invariants of a limits document
func (l Limits) Validate() error {
	if l.CreditsPerPeriod < 0 {
		return fmt.Errorf("credits_per_period must be >= 0, got %d", l.CreditsPerPeriod)
	}
	if l.MaxFamilyMembers < 1 {
		return fmt.Errorf("max_family_members must be >= 1, got %d", l.MaxFamilyMembers)
	}
	if l.WeeklyPlans < 0 || l.MonthlyPlans < 0 {
		return fmt.Errorf("legacy plan caps must be >= 0")
	}
	return nil
}

// Encode serializes limits for storage
func (l Limits) Encode() ([]byte, error) {
	l.Version = LimitsVersion
	return json.Marshal(l)
}

// Defaults returns the built-in plan policy. The plans table is seeded with
// the same values.
func Defaults() []*Plan {
	return []*Plan{
		{
			ID: IDFree, Tier: TierFree, Name: "Free", Currency: "INR", PeriodDays: 30, Active: true,
			Limits: Limits{Version: LimitsVersion, CreditsPerPeriod: 7, MaxFamilyMembers: 1, WeeklyPlans: 1, MonthlyPlans: 0},
		},
		{
			ID: IDIndividual, Tier: TierPaid, Name: "Individual", PriceMinor: 29900, Currency: "INR", PeriodDays: 30, Active: true,
			Limits: Limits{Version: LimitsVersion, CreditsPerPeriod: 42, MaxFamilyMembers: 1, WeeklyPlans: 4, MonthlyPlans: 2},
		},
		{
			ID: IDFamily, Tier: TierPaid, Name: "Family", PriceMinor: 59900, Currency: "INR", PeriodDays: 30, Active: true,
			Limits: Limits{Version: LimitsVersion, CreditsPerPeriod: 100, MaxFamilyMembers: 6, WeeklyPlans: 8, MonthlyPlans: 4},
		},
	}
}
