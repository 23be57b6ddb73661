// Package retention derives the lifetime of ephemeral free-tier artifacts.
// Nothing here deletes data; callers use the result to filter and annotate
// read paths, and anything already expired is safe for a purge job.
package retention

import (
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
)

const (
	// Window is how long a free-tier artifact stays visible
	Window = 12 * time.Hour
	// WarningThreshold is when a free-tier artifact starts expiring soon
	WarningThreshold = 2 * time.Hour
)

// Status is the derived visibility of an artifact
type Status struct {
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
	IsExpired      bool          `json:"is_expired"`
	IsExpiringSoon bool          `json:"is_expiring_soon"`
	Remaining      time.Duration `json:"remaining"`
}

// Classify computes the retention status of an artifact created at createdAt,
// owned by a user on tier, as seen at now. Paid artifacts never expire.
func Classify(createdAt time.Time, tier plan.Tier, now time.Time) Status {
	if tier != plan.TierFree {
		return Status{}
	}

	expiresAt := createdAt.Add(Window)
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return Status{ExpiresAt: &expiresAt, IsExpired: true}
	}
	return Status{
		ExpiresAt:      &expiresAt,
		IsExpiringSoon: remaining <= WarningThreshold,
		Remaining:      remaining,
	}
}

// Visible reports whether an artifact with this status should be listed
func (s Status) Visible() bool {
	return !s.IsExpired
}

// PurgeEligible returns the ids whose artifacts are already expired
func PurgeEligible(createdAt map[int64]time.Time, tier plan.Tier, now time.Time) []int64 {
	var ids []int64
	for id, ts := range createdAt {
		if Classify(ts, tier, now).IsExpired {
			ids = append(ids, id)
		}
	}
	return ids
}
