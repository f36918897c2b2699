package http

import (
	"geofence-attendance/internal/adapter/middleware"
	domain "geofence-attendance/internal/domain/geofence"

	"github.com/labstack/echo/v4"
)

// Router wires handlers onto an echo instance.
type Router struct {
	Health    *Handler
	Geofence  *GeofenceHandler
	Policy    *PolicyHandler
	JWTSecret string
	// Idempotency guards event submission; nil disables it.
	Idempotency echo.MiddlewareFunc
}

func (rt Router) Register(e *echo.Echo) {
	e.GET("/health", rt.Health.Health)

	api := e.Group("/api/v1", middleware.JWTAuth(rt.JWTSecret))
	gf := api.Group("/geofence")

	submit := []echo.MiddlewareFunc{}
	if rt.Idempotency != nil {
		submit = append(submit, rt.Idempotency)
	}
	reviewers := middleware.RequireRole(domain.RoleAdmin, domain.RoleHR, domain.RoleManager)

	gf.POST("/events", rt.Geofence.SubmitEvent, submit...)
	gf.GET("/events", rt.Geofence.ListEvents)
	gf.GET("/events/:event_id", rt.Geofence.GetEvent)
	gf.POST("/events/:event_id/review", rt.Geofence.ReviewEvent, reviewers)
	gf.GET("/approvals/pending", rt.Geofence.PendingApprovals, reviewers)

	gf.GET("/policy", rt.Policy.GetPolicy)
	gf.PUT("/policy", rt.Policy.UpdatePolicy, middleware.RequireRole(domain.RoleAdmin))
}
