package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/testutil"
)

func TestPlanCatalog_Get(t *testing.T) {
	catalog := NewPlanCatalog(testutil.NewMockPlanRepository(), logger.Nop())

	tests := []struct {
		name        string
		planID      string
		wantCredits int64
		wantErr     string
	}{
		{"free", plan.IDFree, 7, ""},
		{"individual", plan.IDIndividual, 42, ""},
		{"family", plan.IDFamily, 100, ""},
		{"unknown", "enterprise", 0, errors.ErrCodePlanNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := catalog.Get(tt.planID)
			if tt.wantErr != "" {
				if !errors.HasCode(err, tt.wantErr) {
					t.Errorf("Get() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if p.Limits.CreditsPerPeriod != tt.wantCredits {
				t.Errorf("Get() credits = %d, want %d", p.Limits.CreditsPerPeriod, tt.wantCredits)
			}
		})
	}
}

func TestPlanCatalog_GetReturnsCopy(t *testing.T) {
	catalog := NewPlanCatalog(testutil.NewMockPlanRepository(), logger.Nop())

	p, _ := catalog.Get(plan.IDFree)
	p.Limits.CreditsPerPeriod = 1000

	again, _ := catalog.Get(plan.IDFree)
	if again.Limits.CreditsPerPeriod != 7 {
		t.Errorf("catalog snapshot was mutated through Get(): %d", again.Limits.CreditsPerPeriod)
	}
}

func TestPlanCatalog_Refresh(t *testing.T) {
	defaults := plan.Defaults()
	inactive := *defaults[2]
	inactive.Active = false
	repo := testutil.NewMockPlanRepository(defaults[0], defaults[1], &inactive)
	repo.Skipped = []error{fmt.Errorf("plan legacy: unsupported limits version 2")}

	catalog := NewPlanCatalog(repo, logger.Nop())
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	list := catalog.List()
	if len(list) != 2 || list[0].ID != plan.IDFree || list[1].ID != plan.IDIndividual {
		t.Errorf("List() = %v, want [free individual]", list)
	}
	if _, err := catalog.Get(plan.IDFamily); err != nil {
		t.Errorf("Get() of inactive plan error = %v, want it resolvable", err)
	}
	if _, err := catalog.Get("legacy"); !errors.HasCode(err, errors.ErrCodePlanNotFound) {
		t.Errorf("Get() of skipped plan error = %v, want PLAN_NOT_FOUND", err)
	}

	// A failed refresh keeps the previous snapshot
	repo.ListError = stderrors.New("connection reset")
	if err := catalog.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() error = nil, want failure")
	}
	if len(catalog.List()) != 2 {
		t.Error("failed Refresh() replaced the snapshot")
	}
}

func TestPlanCatalog_RefreshWithoutFreePlan(t *testing.T) {
	defaults := plan.Defaults()

	tests := []struct {
		name    string
		plans   []*plan.Plan
		skipped []error
	}{
		{name: "empty table", plans: nil},
		{name: "only paid plans", plans: []*plan.Plan{defaults[1], defaults[2]}},
		{name: "free row skipped", plans: []*plan.Plan{defaults[1]}, skipped: []error{fmt.Errorf("plan free: invalid limits")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockPlanRepository(tt.plans...)
			repo.Skipped = tt.skipped
			catalog := NewPlanCatalog(repo, logger.Nop())

			if err := catalog.Refresh(context.Background()); err == nil {
				t.Fatal("Refresh() error = nil, want failure")
			}

			p, err := catalog.Get(plan.IDFree)
			if err != nil {
				t.Fatalf("Get(free) error = %v, want previous snapshot kept", err)
			}
			if p.Limits.CreditsPerPeriod != 7 {
				t.Errorf("Get(free) credits = %d, want 7", p.Limits.CreditsPerPeriod)
			}
			if len(catalog.List()) != len(defaults) {
				t.Errorf("List() = %d plans, want %d", len(catalog.List()), len(defaults))
			}
		})
	}
}

func TestPlanCatalog_ConcurrentReadsDuringRefresh(t *testing.T) {
	repo := testutil.NewMockPlanRepository(plan.Defaults()...)
	catalog := NewPlanCatalog(repo, logger.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := catalog.Get(plan.IDFree); err != nil {
					t.Errorf("Get() error = %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			_ = catalog.Refresh(ctx)
		}()
	}
	wg.Wait()
}

func TestPlanCatalog_StartRefresh(t *testing.T) {
	catalog := NewPlanCatalog(testutil.NewMockPlanRepository(), logger.Nop())

	if err := catalog.StartRefresh("not a schedule"); err == nil {
		t.Error("StartRefresh() accepted an invalid schedule")
	}
	if err := catalog.StartRefresh("@every 1h"); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	defer catalog.Stop()

	if err := catalog.StartRefresh("@every 1h"); err == nil {
		t.Error("StartRefresh() started twice")
	}
}
