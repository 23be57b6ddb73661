package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// catalogSnapshot is never mutated after it is published
type catalogSnapshot struct {
	byID   map[string]*plan.Plan
	active []*plan.Plan
}

func newCatalogSnapshot(plans []*plan.Plan) *catalogSnapshot {
	snap := &catalogSnapshot{byID: make(map[string]*plan.Plan, len(plans))}
	for _, p := range plans {
		snap.byID[p.ID] = p
		if p.Active {
			snap.active = append(snap.active, p)
		}
	}
	sort.Slice(snap.active, func(i, j int) bool {
		if snap.active[i].PriceMinor != snap.active[j].PriceMinor {
			return snap.active[i].PriceMinor < snap.active[j].PriceMinor
		}
		return snap.active[i].ID < snap.active[j].ID
	})
	return snap
}

// PlanCatalog implements plan.Catalog. Reads are lock-free against the
// current snapshot; Refresh swaps in a new one.
type PlanCatalog struct {
	repo     plan.Repository
	logger   *logger.Logger
	snapshot atomic.Pointer[catalogSnapshot]

	cronMu    sync.Mutex
	scheduler *cron.Cron
}

// NewPlanCatalog creates a catalog serving the built-in defaults until the
// first Refresh
func NewPlanCatalog(repo plan.Repository, log *logger.Logger) *PlanCatalog {
	c := &PlanCatalog{repo: repo, logger: log}
	c.snapshot.Store(newCatalogSnapshot(plan.Defaults()))
	return c
}

// Get returns a copy of the plan with the given id
func (c *PlanCatalog) Get(planID string) (*plan.Plan, error) {
	p, ok := c.snapshot.Load().byID[planID]
	if !ok {
		return nil, errors.PlanNotFound(planID)
	}
	cp := *p
	return &cp, nil
}

// List returns all active plans ordered by price
func (c *PlanCatalog) List() []*plan.Plan {
	active := c.snapshot.Load().active
	out := make([]*plan.Plan, len(active))
	for i, p := range active {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Refresh reloads the catalog from storage. On failure the previous snapshot
// stays in place.
func (c *PlanCatalog) Refresh(ctx context.Context) error {
	plans, skipped, err := c.repo.List(ctx)
	if err != nil {
		metrics.RecordCatalogRefresh("failure", 0)
		c.logger.ErrorWithErr(err, "Failed to refresh plan catalog")
		return err
	}

	for _, skipErr := range skipped {
		c.logger.WithError(skipErr).Warn("Skipping plan with invalid definition")
	}

	snap := newCatalogSnapshot(plans)
	if _, ok := snap.byID[plan.IDFree]; !ok {
		metrics.RecordCatalogRefresh("failure", len(plans))
		err := errors.Internal("Refreshed plan catalog has no free plan", nil)
		c.logger.WithFields(map[string]interface{}{
			"plans":   len(plans),
			"skipped": len(skipped),
		}).ErrorWithErr(err, "Keeping previous plan catalog")
		return err
	}

	c.snapshot.Store(snap)
	metrics.RecordCatalogRefresh("success", len(plans))

	c.logger.WithFields(map[string]interface{}{
		"plans":   len(plans),
		"skipped": len(skipped),
	}).Debug("Plan catalog refreshed")

	return nil
}

// StartRefresh schedules periodic refreshes using a cron spec such as
// "@every 5m" or "*/10 * * * *"
func (c *PlanCatalog) StartRefresh(schedule string) error {
	c.cronMu.Lock()
	defer c.cronMu.Unlock()

	if c.scheduler != nil {
		return fmt.Errorf("catalog refresh is already running")
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = c.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid catalog refresh schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	c.scheduler = scheduler

	c.logger.WithFields(map[string]interface{}{
		"schedule": schedule,
	}).Info("Plan catalog refresh started")

	return nil
}

// Stop stops scheduled refreshes and waits for a running one to finish
func (c *PlanCatalog) Stop() {
	c.cronMu.Lock()
	defer c.cronMu.Unlock()

	if c.scheduler == nil {
		return
	}
	<-c.scheduler.Stop().Done()
	c.scheduler = nil
}
