package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/mealplanner/internal/api/dto"
	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/utils"
)

// PlanHandler serves the plan catalog
type PlanHandler struct {
	catalog plan.Catalog
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(catalog plan.Catalog) *PlanHandler {
	return &PlanHandler{catalog: catalog}
}

// List returns all active plans
// @Summary List plans
// @Tags Plans
// @Produce json
// @Success 200 {array} dto.PlanDTO "Active plans ordered by price"
// @Router /api/v1/plans [get]
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans := h.catalog.List()
	dtos := make([]dto.PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = dto.ToPlanDTO(p)
	}
	utils.WriteSuccess(w, http.StatusOK, dtos)
}
