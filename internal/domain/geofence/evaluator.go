package geofence

import (
	"math"
	"strings"
	"time"

	"geofence-attendance/pkg/geo"
	"geofence-attendance/pkg/id"
)

// Report is one location sample submitted by an employee's device.
type Report struct {
	Latitude       *float64
	Longitude      *float64
	AccuracyMeters *float64
	// Zero means "now".
	ReportedAt time.Time
	// Empty means inferred from membership.
	EventType EventType
	Reason    string
	UserAgent string
}

// Subject is the reporting employee as known to the directory.
type Subject struct {
	UserID             string
	EmployeeID         string
	DepartmentID       string
	ReportingManagerID string
}

type Verdict struct {
	IsWithinGeofence bool
	DistanceMeters   int64
	RequiresApproval bool
}

// Evaluator turns a report into an event. It keeps no state between calls.
type Evaluator struct {
	Now func() time.Time
	// Location used for the work-window check.
	Location *time.Location
	NewID    func() string
}

func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{
		Now:      func() time.Time { return time.Now().UTC() },
		Location: loc,
		NewID:    id.NewID32,
	}
}

func (ev *Evaluator) Evaluate(r Report, p Policy, s Subject) (*Event, Verdict, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return nil, Verdict{}, invalidf("latitude and longitude are required")
	}
	point := geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
	if !geo.Valid(point) {
		return nil, Verdict{}, invalidf("coordinates (%v, %v) are not valid", point.Latitude, point.Longitude)
	}
	if r.AccuracyMeters != nil && (math.IsNaN(*r.AccuracyMeters) || math.IsInf(*r.AccuracyMeters, 0) || *r.AccuracyMeters < 0) {
		return nil, Verdict{}, invalidf("accuracy must be a non-negative number")
	}
	if r.EventType != "" && !r.EventType.Valid() {
		return nil, Verdict{}, invalidf("unknown event type %q", r.EventType)
	}
	if !p.Enabled {
		return nil, Verdict{}, ErrPolicyDisabled
	}

	now := ev.Now()
	reportedAt := r.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = now
	}

	distance := geo.Distance(point, p.Center)
	within := distance <= p.RadiusMeters
	duringWork := WithinWorkWindow(reportedAt.In(ev.Location), p.WorkStart, p.WorkEnd)

	eventType := r.EventType
	if eventType == "" {
		eventType = EventExit
		if within {
			eventType = EventEntry
		}
	}

	e := &Event{
		EventID:    ev.NewID(),
		EmployeeID: s.EmployeeID,
		UserID:     s.UserID,
		EventType:  eventType,
		Location: Location{
			Latitude:       point.Latitude,
			Longitude:      point.Longitude,
			AccuracyMeters: r.AccuracyMeters,
			Timestamp:      reportedAt.UTC(),
		},
		Center:             p.Center,
		RadiusMeters:       p.RadiusMeters,
		DistanceMeters:     int64(math.Round(distance)),
		IsWithinGeofence:   within,
		DuringWorkHours:    duringWork,
		DepartmentID:       s.DepartmentID,
		ReportingManagerID: s.ReportingManagerID,
		UserAgent:          r.UserAgent,
		CreatedAt:          now,
	}

	outside := !within && duringWork
	if reason := strings.TrimSpace(r.Reason); outside && reason != "" {
		e.attachApproval(reason, now)
	}

	return e, Verdict{
		IsWithinGeofence: within,
		DistanceMeters:   e.DistanceMeters,
		RequiresApproval: outside && p.RequireApproval,
	}, nil
}
