package quota

import (
	"context"
	"time"
)

// Service defines the quota engine
type Service interface {
	// CheckAndReserve decides whether userID may perform action at now and, if
	// so, commits the charge. A denial is returned as a Decision, not an error.
	CheckAndReserve(ctx context.Context, userID string, action Action, now time.Time) (*Decision, error)

	// GetQuotaInfo reports usage for the current period without writing
	GetQuotaInfo(ctx context.Context, userID string, now time.Time) (*Info, error)
}
