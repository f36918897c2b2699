package http

import (
	"errors"
	"net/http"

	domainEmployee "geofence-attendance/internal/domain/employee"
	domain "geofence-attendance/internal/domain/geofence"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// statusFor maps a usecase error onto an HTTP status and stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, domain.ErrPolicyDisabled):
		return http.StatusConflict, "policy_disabled"
	case errors.Is(err, domain.ErrNotPending):
		return http.StatusConflict, "not_pending"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domainEmployee.ErrNotFound):
		return http.StatusNotFound, "employee_not_found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c echo.Context, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		// driver details stay in the log
		msg = http.StatusText(status)
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "invalid_input",
		Details: ToFieldErrors(err),
	})
}
