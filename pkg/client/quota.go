package client

import "context"

// Actions accepted by Reserve and MealPlans().Generate
const (
	ActionDaily   = "daily"
	ActionWeekly  = "weekly"
	ActionMonthly = "monthly"
)

// QuotaService handles credit quota API calls
type QuotaService struct {
	client *Client
}

// Info retrieves the caller's current period usage
func (s *QuotaService) Info(ctx context.Context) (*QuotaInfo, error) {
	var info QuotaInfo
	if err := s.client.doRequest(ctx, "GET", "/api/v1/quota", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Reserve charges credits for action. A denial is returned as an *APIError
// with code QUOTA_EXCEEDED.
func (s *QuotaService) Reserve(ctx context.Context, action string) (*Reservation, error) {
	var res Reservation
	body := map[string]string{"action": action}
	if err := s.client.doRequest(ctx, "POST", "/api/v1/quota/reserve", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
