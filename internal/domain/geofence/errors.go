package geofence

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrPolicyDisabled = errors.New("geofencing is not enabled")
	ErrNotFound       = errors.New("geofence event not found")
	ErrNotPending     = errors.New("approval request is not pending")
	ErrForbidden      = errors.New("not allowed to access this geofence event")

	// ErrStorage marks infrastructure failures; callers may retry.
	ErrStorage = errors.New("geofence storage unavailable")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StorageError wraps a driver error so that both ErrStorage and the
// original error match with errors.Is.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
