package eventmock

import (
	"context"

	domain "geofence-attendance/internal/domain/geofence"
)

var _ domain.EventRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.EventRepository.
// Unset writes are no-ops; unset reads return context.Canceled.
type Repo struct {
	CreateFn             func(ctx context.Context, e *domain.Event) error
	GetByEventIDFn       func(ctx context.Context, eventID string) (*domain.Event, error)
	ListFn               func(ctx context.Context, f domain.EventFilter) ([]domain.Event, error)
	TransitionApprovalFn func(ctx context.Context, eventID string, r domain.Review) error
}

func (m *Repo) Create(ctx context.Context, e *domain.Event) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) GetByEventID(ctx context.Context, eventID string) (*domain.Event, error) {
	if m.GetByEventIDFn != nil {
		return m.GetByEventIDFn(ctx, eventID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) TransitionApproval(ctx context.Context, eventID string, r domain.Review) error {
	if m.TransitionApprovalFn != nil {
		return m.TransitionApprovalFn(ctx, eventID, r)
	}
	return nil
}
