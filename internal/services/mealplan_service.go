package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/domain/generation"
	"github.com/pratik-mahalle/mealplanner/internal/domain/mealplan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/domain/retention"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/metrics"
)

// MealPlanService implements mealplan.Service
type MealPlanService struct {
	quota     quota.Service
	generator generation.Generator
	repo      mealplan.Repository
	catalog   plan.Catalog
	subs      subscription.Repository
	maxTokens int
	logger    *logger.Logger
}

// NewMealPlanService creates a new meal plan service
func NewMealPlanService(
	quotaSvc quota.Service,
	generator generation.Generator,
	repo mealplan.Repository,
	catalog plan.Catalog,
	subs subscription.Repository,
	maxTokens int,
	log *logger.Logger,
) mealplan.Service {
	return &MealPlanService{
		quota:     quotaSvc,
		generator: generator,
		repo:      repo,
		catalog:   catalog,
		subs:      subs,
		maxTokens: maxTokens,
		logger:    log,
	}
}

// Generate reserves credits before calling the generator. Credits are not
// returned if the generator fails or the caller goes away afterwards.
func (s *MealPlanService) Generate(ctx context.Context, req mealplan.GenerateRequest, now time.Time) (*mealplan.Listed, *quota.Decision, error) {
	decision, err := s.quota.CheckAndReserve(ctx, req.UserID, req.Action, now)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	log := s.logger.Ctx(ctx).WithFields(map[string]interface{}{
		"user_id":  req.UserID,
		"action":   req.Action,
		"plan_id":  decision.PlanID,
		"provider": s.generator.Provider(),
	})

	start := time.Now()
	res, err := s.generator.Generate(ctx, req.Profile, generation.Options{
		Days:      req.Action.Days(),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		metrics.RecordGeneration(s.generator.Provider(), "error", 0, time.Since(start))
		log.With("credits_charged", decision.CreditsCharged).WarnWithErr(err, "Generation failed after reservation")
		if _, ok := errors.As(err); !ok {
			err = errors.ProviderAPIError(s.generator.Provider(), err)
		}
		return nil, decision, err
	}
	metrics.RecordGeneration(s.generator.Provider(), "success", res.TokenUsage.TotalTokens, time.Since(start))

	m := &mealplan.MealPlan{
		UserID:     req.UserID,
		Kind:       string(req.Action),
		Content:    res.Content,
		TokensUsed: res.TokenUsage.TotalTokens,
		Provider:   s.generator.Provider(),
		CreatedAt:  now.UTC().Truncate(time.Second),
	}
	// The generation is paid for; keep it even if the client disconnected
	if err := s.repo.Create(context.WithoutCancel(ctx), m); err != nil {
		log.ErrorWithErr(err, "Failed to store generated meal plan")
		return nil, decision, err
	}

	tier := plan.TierFree
	if p, err := s.catalog.Get(decision.PlanID); err == nil {
		tier = p.Tier
	}

	log.WithFields(map[string]interface{}{
		"meal_plan_id": m.ID,
		"tokens":       m.TokensUsed,
	}).Info("Meal plan generated")

	return &mealplan.Listed{MealPlan: m, Retention: retention.Classify(m.CreatedAt, tier, now)}, decision, nil
}

// List returns the user's visible meal plans newest first. Free-tier plans
// past the retention window are filtered out in the query.
func (s *MealPlanService) List(ctx context.Context, userID string, limit, offset int, now time.Time) ([]*mealplan.Listed, int64, error) {
	tier, err := s.tierOf(ctx, userID, now)
	if err != nil {
		return nil, 0, err
	}

	filter := mealplan.Filter{UserID: userID}
	if tier == plan.TierFree {
		cutoff := now.Add(-retention.Window)
		filter.CreatedAfter = &cutoff
	}

	plans, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	listed := make([]*mealplan.Listed, 0, len(plans))
	for _, m := range plans {
		st := retention.Classify(m.CreatedAt, tier, now)
		if !st.Visible() {
			continue
		}
		listed = append(listed, &mealplan.Listed{MealPlan: m, Retention: st})
	}
	return listed, total, nil
}

// Get returns one meal plan, treating an expired free-tier plan as missing
func (s *MealPlanService) Get(ctx context.Context, userID string, id int64, now time.Time) (*mealplan.Listed, error) {
	m, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	tier, err := s.tierOf(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	st := retention.Classify(m.CreatedAt, tier, now)
	if !st.Visible() {
		return nil, errors.NotFound("Meal plan")
	}
	return &mealplan.Listed{MealPlan: m, Retention: st}, nil
}

func (s *MealPlanService) tierOf(ctx context.Context, userID string, now time.Time) (plan.Tier, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if errors.IsNotFound(err) {
		return plan.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	if !sub.Entitles(now) {
		return plan.TierFree, nil
	}
	p, err := s.catalog.Get(sub.PlanID)
	if err != nil {
		return "", err
	}
	return p.Tier, nil
}
