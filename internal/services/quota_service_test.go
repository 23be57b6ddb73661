package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/testutil"
)

func TestQuotaService_CheckAndReserve_FreeTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := testutil.Time(t, "2026-03-14T10:00:00Z")

	steps := []struct {
		name          string
		action        quota.Action
		wantAllowed   bool
		wantRemaining int64
		wantRequired  int64
	}{
		{"daily", quota.ActionDailyPlan, true, 6, 0},
		{"weekly", quota.ActionWeeklyPlan, true, 2, 0},
		{"second weekly denied", quota.ActionWeeklyPlan, false, 2, 4},
		{"monthly denied", quota.ActionMonthlyPlan, false, 2, 7},
		{"daily", quota.ActionDailyPlan, true, 1, 0},
		{"exactly remaining", quota.ActionDailyPlan, true, 0, 0},
		{"empty ledger", quota.ActionDailyPlan, false, 0, 1},
	}

	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.quota.CheckAndReserve(ctx, "user-1", tt.action, now)
			if err != nil {
				t.Fatalf("CheckAndReserve() error = %v", err)
			}
			if d.Allowed != tt.wantAllowed {
				t.Errorf("CheckAndReserve() allowed = %v, want %v", d.Allowed, tt.wantAllowed)
			}
			if d.Remaining != tt.wantRemaining {
				t.Errorf("CheckAndReserve() remaining = %d, want %d", d.Remaining, tt.wantRemaining)
			}
			if d.PlanID != "free" {
				t.Errorf("CheckAndReserve() plan = %s, want free", d.PlanID)
			}
			if tt.wantAllowed {
				return
			}
			if d.Reason != quota.ReasonQuotaExceeded {
				t.Errorf("CheckAndReserve() reason = %s, want %s", d.Reason, quota.ReasonQuotaExceeded)
			}
			if d.Details == nil || d.Details.Required != tt.wantRequired || d.Details.Remaining != tt.wantRemaining {
				t.Errorf("CheckAndReserve() details = %+v, want remaining %d required %d", d.Details, tt.wantRemaining, tt.wantRequired)
			}
			if appErr := d.Err(); appErr == nil || appErr.Code != errors.ErrCodeQuotaExceeded {
				t.Errorf("Decision.Err() = %v, want QUOTA_EXCEEDED", appErr)
			}
		})
	}

	info, err := f.quota.GetQuotaInfo(ctx, "user-1", now)
	if err != nil {
		t.Fatalf("GetQuotaInfo() error = %v", err)
	}
	if info.Credits != (quota.Dimension{Used: 7, Limit: 7}) {
		t.Errorf("GetQuotaInfo() credits = %+v, want 7/7", info.Credits)
	}
	if info.WeeklyPlans.Used != 1 || info.MonthlyPlans.Used != 0 {
		t.Errorf("GetQuotaInfo() weekly/monthly = %d/%d, want 1/0", info.WeeklyPlans.Used, info.MonthlyPlans.Used)
	}
}

func TestQuotaService_CheckAndReserve_Concurrent(t *testing.T) {
	tests := []struct {
		name    string
		action  quota.Action
		workers int
		want    int
	}{
		{"daily races for 7 credits", quota.ActionDailyPlan, 20, 7},
		{"weekly races for 7 credits", quota.ActionWeeklyPlan, 10, 1},
		{"monthly races for 7 credits", quota.ActionMonthlyPlan, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			now := testutil.Time(t, "2026-03-14T10:00:00Z")

			var wg sync.WaitGroup
			var mu sync.Mutex
			allowed := 0
			for i := 0; i < tt.workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					d, err := f.quota.CheckAndReserve(ctx, "user-1", tt.action, now)
					if err != nil {
						t.Errorf("CheckAndReserve() error = %v", err)
						return
					}
					if d.Allowed {
						mu.Lock()
						allowed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if allowed != tt.want {
				t.Errorf("allowed = %d, want %d", allowed, tt.want)
			}

			cost, _ := tt.action.Cost()
			info, err := f.quota.GetQuotaInfo(ctx, "user-1", now)
			if err != nil {
				t.Fatalf("GetQuotaInfo() error = %v", err)
			}
			if info.Credits.Used != int64(tt.want)*cost {
				t.Errorf("credits used = %d, want %d", info.Credits.Used, int64(tt.want)*cost)
			}
			if f.countRows(t, "usage_ledgers") != 1 {
				t.Error("concurrent lazy creation produced more than one ledger")
			}
		})
	}
}

func TestQuotaService_UnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.quota.CheckAndReserve(context.Background(), "user-1", quota.Action("yearly"), time.Now())
	if !errors.HasCode(err, errors.ErrCodeBadRequest) {
		t.Errorf("CheckAndReserve() error = %v, want BAD_REQUEST", err)
	}
	if _, err := f.quota.CheckAndReserve(context.Background(), "", quota.ActionDailyPlan, time.Now()); !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Errorf("CheckAndReserve() without user error = %v, want UNAUTHORIZED", err)
	}
}

func TestQuotaService_GetQuotaInfo_DoesNotWrite(t *testing.T) {
	f := newFixture(t)
	now := testutil.Time(t, "2026-03-14T10:00:00Z")

	info, err := f.quota.GetQuotaInfo(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("GetQuotaInfo() error = %v", err)
	}
	if info.PlanID != "free" || info.Credits != (quota.Dimension{Used: 0, Limit: 7}) {
		t.Errorf("GetQuotaInfo() = %s %+v, want free 0/7", info.PlanID, info.Credits)
	}
	if !info.Period.Start.Equal(testutil.Time(t, "2026-03-01T00:00:00Z")) {
		t.Errorf("GetQuotaInfo() period start = %v, want 2026-03-01", info.Period.Start)
	}
	if n := f.countRows(t, "usage_ledgers"); n != 0 {
		t.Errorf("GetQuotaInfo() created %d ledgers", n)
	}
}

func TestQuotaService_FreePeriodRollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lastMinute := testutil.Time(t, "2026-03-31T23:59:00Z")

	d, err := f.quota.CheckAndReserve(ctx, "user-1", quota.ActionMonthlyPlan, lastMinute)
	if err != nil || !d.Allowed || d.Remaining != 0 {
		t.Fatalf("CheckAndReserve() = %+v, %v; want allowed with 0 remaining", d, err)
	}

	d, err = f.quota.CheckAndReserve(ctx, "user-1", quota.ActionDailyPlan, lastMinute.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("CheckAndReserve() error = %v", err)
	}
	if !d.Allowed || d.Remaining != 6 {
		t.Errorf("CheckAndReserve() in April = %+v, want allowed with 6 remaining", d)
	}
}

func TestQuotaService_LapsedSubscriptionUsesFreePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := testutil.Time(t, "2026-03-14T10:00:00Z")

	sub := &subscription.Subscription{
		UserID:               "user-1",
		PlanID:               "family",
		Status:               subscription.StatusActive,
		BillingIntervalStart: now.AddDate(0, 0, -40),
		BillingIntervalEnd:   now.AddDate(0, 0, -10),
		UpdatedAt:            now,
	}
	if err := f.subs.Upsert(ctx, sub); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := f.ledgers.Reset(ctx, usage.Key{UserID: "user-1", SubscriptionID: sub.ID, Period: sub.Period()}, 100, now); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	d, err := f.quota.CheckAndReserve(ctx, "user-1", quota.ActionDailyPlan, now)
	if err != nil {
		t.Fatalf("CheckAndReserve() error = %v", err)
	}
	if d.PlanID != "free" || d.Remaining != 6 {
		t.Errorf("CheckAndReserve() = %s/%d, want free/6", d.PlanID, d.Remaining)
	}

	// The boundary instant belongs to the next period
	d, err = f.quota.CheckAndReserve(ctx, "user-1", quota.ActionDailyPlan, sub.BillingIntervalEnd)
	if err != nil {
		t.Fatalf("CheckAndReserve() error = %v", err)
	}
	if d.PlanID != "free" {
		t.Errorf("CheckAndReserve() at interval end plan = %s, want free", d.PlanID)
	}
}
