package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/mealplanner/internal/api/dto"
	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
)

// QuotaHandler exposes the quota engine
type QuotaHandler struct {
	service   quota.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(service quota.Service, log *logger.Logger, val *validator.Validator) *QuotaHandler {
	return &QuotaHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Info returns the caller's usage for the current period
// @Summary Get quota
// @Tags Quota
// @Produce json
// @Success 200 {object} dto.QuotaInfoDTO "Current period usage"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/quota [get]
func (h *QuotaHandler) Info(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	info, err := h.service.GetQuotaInfo(r.Context(), userID, now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to get quota info")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.QuotaInfoDTO{
		PlanID:       info.PlanID,
		PeriodStart:  info.Period.Start,
		PeriodEnd:    info.Period.End,
		Credits:      dto.UsageDTO(info.Credits),
		WeeklyPlans:  dto.UsageDTO(info.WeeklyPlans),
		MonthlyPlans: dto.UsageDTO(info.MonthlyPlans),
	})
}

// Reserve charges credits for an action
// @Summary Reserve credits
// @Tags Quota
// @Accept json
// @Produce json
// @Param request body dto.ReserveRequest true "Action to reserve"
// @Success 200 {object} dto.ReserveResponse "Credits reserved"
// @Failure 400 {object} utils.ErrorResponse "Invalid action"
// @Failure 429 {object} utils.ErrorResponse "Quota exceeded"
// @Security BearerAuth
// @Router /api/v1/quota/reserve [post]
func (h *QuotaHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ReserveRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	decision, err := h.service.CheckAndReserve(r.Context(), userID, quota.Action(req.Action), now())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to reserve credits")
		return
	}
	if !decision.Allowed {
		utils.WriteError(w, decision.Err())
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ReserveResponse{
		PlanID:         decision.PlanID,
		CreditsCharged: decision.CreditsCharged,
		Remaining:      decision.Remaining,
	})
}
