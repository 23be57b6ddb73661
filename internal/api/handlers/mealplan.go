package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/mealplanner/internal/api/dto"
	"github.com/pratik-mahalle/mealplanner/internal/domain/mealplan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
)

// MealPlanHandler generates and lists meal plans
type MealPlanHandler struct {
	service   mealplan.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewMealPlanHandler creates a new meal plan handler
func NewMealPlanHandler(service mealplan.Service, log *logger.Logger, val *validator.Validator) *MealPlanHandler {
	return &MealPlanHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Generate reserves credits and generates a meal plan
// @Summary Generate meal plan
// @Tags MealPlans
// @Accept json
// @Produce json
// @Param request body dto.GenerateMealPlanRequest true "Action and profile"
// @Success 201 {object} dto.GenerateMealPlanResponse "Generated meal plan"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 429 {object} utils.ErrorResponse "Quota exceeded"
// @Failure 502 {object} utils.ErrorResponse "Generator failed"
// @Security BearerAuth
// @Router /api/v1/mealplans [post]
func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.GenerateMealPlanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	listed, decision, err := h.service.Generate(r.Context(), mealplan.GenerateRequest{
		UserID:  userID,
		Action:  quota.Action(req.Action),
		Profile: req.Profile,
	}, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to generate meal plan")
		return
	}
	if !decision.Allowed {
		utils.WriteError(w, decision.Err())
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.GenerateMealPlanResponse{
		MealPlan:       dto.ToMealPlanDTO(listed),
		CreditsCharged: decision.CreditsCharged,
		Remaining:      decision.Remaining,
	})
}

// List returns the caller's visible meal plans
// @Summary List meal plans
// @Description Expired free-tier plans are omitted
// @Tags MealPlans
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.MealPlanDTO} "Meal plans"
// @Security BearerAuth
// @Router /api/v1/mealplans [get]
func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p := utils.ParsePaginationParams(r)
	plans, total, err := h.service.List(r.Context(), userID, p.PageSize, p.Offset, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to list meal plans")
		return
	}

	dtos := make([]dto.MealPlanDTO, len(plans))
	for i, m := range plans {
		dtos[i] = dto.ToMealPlanDTO(m)
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Get returns one meal plan
// @Summary Get meal plan
// @Tags MealPlans
// @Produce json
// @Param id path int true "Meal plan ID"
// @Success 200 {object} dto.MealPlanDTO "Meal plan"
// @Failure 404 {object} utils.ErrorResponse "Not found or expired"
// @Security BearerAuth
// @Router /api/v1/mealplans/{id} [get]
func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		utils.WriteError(w, errors.BadRequest("Invalid meal plan ID"))
		return
	}

	m, err := h.service.Get(r.Context(), userID, id, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to get meal plan")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ToMealPlanDTO(m))
}
