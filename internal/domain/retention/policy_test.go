package retention

import (
	"testing"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		createdAt     time.Time
		tier          plan.Tier
		wantExpired   bool
		wantSoon      bool
		wantExpiry    bool
		wantRemaining time.Duration
	}{
		{
			name:        "free just past window",
			createdAt:   now.Add(-12*time.Hour - time.Second),
			tier:        plan.TierFree,
			wantExpired: true,
			wantExpiry:  true,
		},
		{
			name:        "free exactly at window",
			createdAt:   now.Add(-12 * time.Hour),
			tier:        plan.TierFree,
			wantExpired: true,
			wantExpiry:  true,
		},
		{
			name:          "free ten hours old expires soon",
			createdAt:     now.Add(-10 * time.Hour),
			tier:          plan.TierFree,
			wantSoon:      true,
			wantExpiry:    true,
			wantRemaining: 2 * time.Hour,
		},
		{
			name:          "free one hour old",
			createdAt:     now.Add(-time.Hour),
			tier:          plan.TierFree,
			wantExpiry:    true,
			wantRemaining: 11 * time.Hour,
		},
		{
			name:      "paid very old",
			createdAt: now.AddDate(-1, 0, 0),
			tier:      plan.TierPaid,
		},
		{
			name:      "paid fresh",
			createdAt: now,
			tier:      plan.TierPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.createdAt, tt.tier, now)

			if got.IsExpired != tt.wantExpired {
				t.Errorf("Classify() IsExpired = %v, want %v", got.IsExpired, tt.wantExpired)
			}
			if got.IsExpiringSoon != tt.wantSoon {
				t.Errorf("Classify() IsExpiringSoon = %v, want %v", got.IsExpiringSoon, tt.wantSoon)
			}
			if (got.ExpiresAt != nil) != tt.wantExpiry {
				t.Errorf("Classify() ExpiresAt = %v, want set=%v", got.ExpiresAt, tt.wantExpiry)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Classify() Remaining = %v, want %v", got.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestClassify_ExpiresAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := Classify(created, plan.TierFree, created)

	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(created.Add(Window)) {
		t.Errorf("Classify() ExpiresAt = %v, want %v", got.ExpiresAt, created.Add(Window))
	}
	if !got.Visible() {
		t.Error("fresh artifact should be visible")
	}
}

func TestPurgeEligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := map[int64]time.Time{
		1: now.Add(-13 * time.Hour),
		2: now.Add(-time.Hour),
	}

	ids := PurgeEligible(created, plan.TierFree, now)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("PurgeEligible() = %v, want [1]", ids)
	}

	if ids := PurgeEligible(created, plan.TierPaid, now); len(ids) != 0 {
		t.Errorf("PurgeEligible() for paid = %v, want none", ids)
	}
}
