package uowmock

import (
	"context"
	"errors"
	"testing"

	"geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/domain/uow"
	"geofence-attendance/internal/testutil/eventmock"
)

func TestUoW_DefaultUnimplemented(t *testing.T) {
	err := (&UoW{}).WithinEventTx(context.Background(), "x", func(uow.Repos, *geofence.Event) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinEventTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_LoadsEventFirst(t *testing.T) {
	ctx := context.Background()
	want := &geofence.Event{EventID: "evt-7"}
	events := &eventmock.Repo{
		GetByEventIDFn: func(_ context.Context, id string) (*geofence.Event, error) {
			if id != "evt-7" {
				t.Fatalf("event id mismatch: %s", id)
			}
			return want, nil
		},
	}

	var got *geofence.Event
	err := Passthrough(uow.Repos{Events: events}).WithinEventTx(ctx, "evt-7", func(r uow.Repos, e *geofence.Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("WithinEventTx: unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("event not forwarded: %+v", got)
	}
}

func TestPassthrough_LoadErrorSkipsBody(t *testing.T) {
	sentinel := errors.New("no rows")
	events := &eventmock.Repo{
		GetByEventIDFn: func(context.Context, string) (*geofence.Event, error) { return nil, sentinel },
	}
	err := Passthrough(uow.Repos{Events: events}).WithinEventTx(context.Background(), "missing", func(uow.Repos, *geofence.Event) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want %v, got %v", sentinel, err)
	}
}
