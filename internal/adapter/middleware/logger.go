package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger emits one zerolog event per request. Pair it with
// echomw.RequestIDWithConfig so the request id is populated.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogRequestID: true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			var ev *zerolog.Event
			switch {
			case v.Status >= 500 || v.Error != nil:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			if id, ok := IdentityFrom(c); ok {
				ev = ev.Str("user_id", id.UserID).Str("role", string(id.Role))
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("http request")
			return nil
		},
	})
}
