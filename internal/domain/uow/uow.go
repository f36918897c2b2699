package uow

import (
	"context"

	"geofence-attendance/internal/domain/geofence"
)

// Repos are bound to the enclosing transaction.
type Repos struct {
	Events geofence.EventRepository
}

type UnitOfWork interface {
	// WithinEventTx loads (and locks) the event, then runs fn in the same tx.
	// A missing event ends the tx before fn runs.
	WithinEventTx(ctx context.Context, eventID string, fn func(r Repos, e *geofence.Event) error) error
}
