package geofence

import (
	"time"

	"geofence-attendance/pkg/geo"
)

type EventType string

const (
	EventEntry EventType = "entry"
	EventExit  EventType = "exit"
)

func (t EventType) Valid() bool { return t == EventEntry || t == EventExit }

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decision reports whether s is a terminal review outcome.
func (s ApprovalStatus) Decision() bool { return s == StatusApproved || s == StatusRejected }

type Location struct {
	Latitude       float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude      float64   `gorm:"column:longitude;not null" json:"longitude"`
	AccuracyMeters *float64  `gorm:"column:accuracy_meters" json:"accuracy_meters,omitempty"`
	Timestamp      time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (l Location) Point() geo.Point { return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude} }

// Table: geofence_events. Rows are append-only; the approval_* columns are
// the only ones ever updated, and only from pending.
type Event struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	EventID    string    `gorm:"column:event_id;size:32;not null;uniqueIndex:ux_geofence_events_event_id"`
	EmployeeID string    `gorm:"column:employee_id;size:64;not null;index:idx_geofence_events_employee"`
	UserID     string    `gorm:"column:user_id;size:64;not null"`
	EventType  EventType `gorm:"column:event_type;size:8;not null"`
	Location   Location  `gorm:"embedded;embeddedPrefix:location_"`

	// Policy snapshot at evaluation time
	Center       geo.Point `gorm:"embedded;embeddedPrefix:center_"`
	RadiusMeters float64   `gorm:"column:radius_meters;not null"`

	DistanceMeters     int64  `gorm:"column:distance_meters;not null"`
	IsWithinGeofence   bool   `gorm:"column:is_within_geofence;not null"`
	DuringWorkHours    bool   `gorm:"column:during_work_hours;not null"`
	DepartmentID       string `gorm:"column:department_id;size:64;index:idx_geofence_events_department"`
	ReportingManagerID string `gorm:"column:reporting_manager_id;size:64"`
	UserAgent          string `gorm:"column:user_agent;size:512"`

	ApprovalReason      *string         `gorm:"column:approval_reason;type:text"`
	ApprovalRequestedAt *time.Time      `gorm:"column:approval_requested_at"`
	ApprovalStatus      *ApprovalStatus `gorm:"column:approval_status;size:16;index:idx_geofence_events_approval_status"`
	ApprovalReviewedBy  *string         `gorm:"column:approval_reviewed_by;size:64"`
	ApprovalReviewedAt  *time.Time      `gorm:"column:approval_reviewed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Event) TableName() string { return "geofence_events" }

// ApprovalRequest is the exception sub-record of an out-of-perimeter event.
type ApprovalRequest struct {
	Reason      string         `json:"reason"`
	RequestedAt time.Time      `json:"requested_at"`
	Status      ApprovalStatus `json:"status"`
	ReviewedBy  string         `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty"`
}

// Approval returns the nested approval request, or nil when the event has none.
func (e *Event) Approval() *ApprovalRequest {
	if e.ApprovalStatus == nil {
		return nil
	}
	a := &ApprovalRequest{Status: *e.ApprovalStatus, ReviewedAt: e.ApprovalReviewedAt}
	if e.ApprovalReason != nil {
		a.Reason = *e.ApprovalReason
	}
	if e.ApprovalRequestedAt != nil {
		a.RequestedAt = *e.ApprovalRequestedAt
	}
	if e.ApprovalReviewedBy != nil {
		a.ReviewedBy = *e.ApprovalReviewedBy
	}
	return a
}

func (e *Event) attachApproval(reason string, at time.Time) {
	status := StatusPending
	e.ApprovalReason = &reason
	e.ApprovalRequestedAt = &at
	e.ApprovalStatus = &status
}

// Review is the single permitted mutation of a stored event.
type Review struct {
	Status     ApprovalStatus
	ReviewedBy string
	ReviewedAt time.Time
}

// EventFilter is the storage-level query. Scope fields are applied as WHERE
// clauses; an empty field means "no constraint".
type EventFilter struct {
	EventID        string
	EmployeeID     string
	DepartmentID   string
	ApprovalStatus ApprovalStatus
	Limit          int
}
