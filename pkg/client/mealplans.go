package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// MealPlanService handles meal plan API calls
type MealPlanService struct {
	client *Client
}

// GenerateRequest asks for a new meal plan
type GenerateRequest struct {
	Action  string  `json:"action"`
	Profile Profile `json:"profile"`
}

// Generate reserves credits for req.Action and generates a meal plan
func (s *MealPlanService) Generate(ctx context.Context, req GenerateRequest) (*GeneratedMealPlan, error) {
	var out GeneratedMealPlan
	if err := s.client.doRequest(ctx, "POST", "/api/v1/mealplans", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List retrieves a page of the caller's visible meal plans
func (s *MealPlanService) List(ctx context.Context, opts *ListOptions) (*MealPlanPage, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/mealplans"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page MealPlanPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a meal plan by ID
func (s *MealPlanService) Get(ctx context.Context, id int64) (*MealPlan, error) {
	var m MealPlan
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/mealplans/%d", id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
