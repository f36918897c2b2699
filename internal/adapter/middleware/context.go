package middleware

import (
	domain "geofence-attendance/internal/domain/geofence"

	"github.com/labstack/echo/v4"
)

const identityKey = "geofence.identity"

// IdentityFrom returns the caller set by JWTAuth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey).(domain.Identity)
	return v, ok && v.UserID != ""
}

func setIdentity(c echo.Context, id domain.Identity) { c.Set(identityKey, id) }
