package plan

import "context"

// Repository defines the interface for plan data access
type Repository interface {
	// List retrieves all plan rows. Rows whose limits cannot be parsed are
	// returned in the second slice so the caller can report them.
	List(ctx context.Context) ([]*Plan, []error, error)

	// Upsert inserts or replaces a plan row
	Upsert(ctx context.Context, p *Plan) error
}
