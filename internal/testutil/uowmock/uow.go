package uowmock

import (
	"context"
	"errors"

	"geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed uow.UnitOfWork; an unset func returns errUnimplemented.
type UoW struct {
	WithinEventTxFn func(ctx context.Context, eventID string, fn func(r uow.Repos, e *geofence.Event) error) error
}

// Passthrough runs fn directly against r without a transaction, loading the
// event through r.Events first.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinEventTxFn: func(ctx context.Context, eventID string, fn func(uow.Repos, *geofence.Event) error) error {
			e, err := r.Events.GetByEventID(ctx, eventID)
			if err != nil {
				return err
			}
			return fn(r, e)
		},
	}
}

func (m *UoW) WithinEventTx(ctx context.Context, eventID string, fn func(r uow.Repos, e *geofence.Event) error) error {
	if m.WithinEventTxFn == nil {
		return errUnimplemented
	}
	return m.WithinEventTxFn(ctx, eventID, fn)
}
