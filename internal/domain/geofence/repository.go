package geofence

import "context"

type EventRepository interface {
	// Append a new event; events are never updated or deleted through Create.
	Create(ctx context.Context, e *Event) error

	// Get by public event_id
	GetByEventID(ctx context.Context, eventID string) (*Event, error)

	// List events matching f, newest first
	List(ctx context.Context, f EventFilter) ([]Event, error)

	// Conditionally move approval_status from pending to r.Status.
	// Returns ErrNotPending when no pending row matched.
	TransitionApproval(ctx context.Context, eventID string, r Review) error
}

type PolicyRepository interface {
	// Get the singleton policy (gorm.ErrRecordNotFound when never configured)
	Get(ctx context.Context) (*Policy, error)

	// Save replaces the singleton policy
	Save(ctx context.Context, p *Policy) error
}
