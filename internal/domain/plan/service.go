package plan

import "context"

// Catalog is the read-only plan lookup used at request time
type Catalog interface {
	// Get returns the plan with the given id or a PLAN_NOT_FOUND error
	Get(planID string) (*Plan, error)

	// List returns all active plans ordered by price
	List() []*Plan

	// Refresh reloads the catalog from storage
	Refresh(ctx context.Context) error
}
