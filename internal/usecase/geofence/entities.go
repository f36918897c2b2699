package geofence

import (
	"time"

	domain "geofence-attendance/internal/domain/geofence"
	"geofence-attendance/pkg/geo"
)

type SubmitInput struct {
	Identity   domain.Identity
	Latitude   *float64
	Longitude  *float64
	Accuracy   *float64
	EventType  string
	Reason     string
	ReportedAt *time.Time // nil = now
	UserAgent  string
}

type ListInput struct {
	Identity       domain.Identity
	EmployeeID     string // honoured for admin/hr only
	ApprovalStatus string
	Limit          int
}

type ReviewInput struct {
	Identity domain.Identity
	EventID  string
	Decision string // approved | rejected
}

type EventDTO struct {
	EventID                  string                  `json:"event_id"`
	EmployeeID               string                  `json:"employee_id"`
	UserID                   string                  `json:"user_id"`
	EventType                string                  `json:"event_type"`
	Location                 domain.Location         `json:"location"`
	GeofenceCenter           geo.Point               `json:"geofence_center"`
	GeofenceRadiusMeters     float64                 `json:"geofence_radius_meters"`
	DistanceFromCenterMeters int64                   `json:"distance_from_center_meters"`
	IsWithinGeofence         bool                    `json:"is_within_geofence"`
	DuringWorkHours          bool                    `json:"during_work_hours"`
	DepartmentID             string                  `json:"department_id,omitempty"`
	ReportingManagerID       string                  `json:"reporting_manager_id,omitempty"`
	ApprovalRequest          *domain.ApprovalRequest `json:"approval_request,omitempty"`
	CreatedAt                time.Time               `json:"created_at"`
}

type SubmitResult struct {
	IsWithinGeofence bool      `json:"is_within_geofence"`
	DistanceMeters   int64     `json:"distance_meters"`
	RequiresApproval bool      `json:"requires_approval"`
	Event            *EventDTO `json:"event"`
}

func toDTO(e *domain.Event) *EventDTO {
	return &EventDTO{
		EventID:                  e.EventID,
		EmployeeID:               e.EmployeeID,
		UserID:                   e.UserID,
		EventType:                string(e.EventType),
		Location:                 e.Location,
		GeofenceCenter:           e.Center,
		GeofenceRadiusMeters:     e.RadiusMeters,
		DistanceFromCenterMeters: e.DistanceMeters,
		IsWithinGeofence:         e.IsWithinGeofence,
		DuringWorkHours:          e.DuringWorkHours,
		DepartmentID:             e.DepartmentID,
		ReportingManagerID:       e.ReportingManagerID,
		ApprovalRequest:          e.Approval(),
		CreatedAt:                e.CreatedAt,
	}
}
