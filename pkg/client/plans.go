package client

import "context"

// PlanService handles plan catalog API calls
type PlanService struct {
	client *Client
}

// List retrieves the purchasable plans
func (s *PlanService) List(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.client.doRequest(ctx, "GET", "/api/v1/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Get retrieves one plan by ID from the listed catalog
func (s *PlanService) Get(ctx context.Context, planID string) (*Plan, error) {
	plans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == planID {
			return &plans[i], nil
		}
	}
	return nil, &APIError{StatusCode: 404, Code: CodePlanNotFound, Message: "Plan " + planID + " not found"}
}
