package geofence

import (
	"math"
	"time"

	"geofence-attendance/pkg/geo"
)

// PolicyID is the primary key of the organization's single policy row.
const PolicyID uint64 = 1

// Policy is the organization-wide geofence configuration. It is read once per
// evaluation and handed to the Evaluator by value.
type Policy struct {
	ID              uint64    `gorm:"column:id;primaryKey" json:"-"`
	Enabled         bool      `gorm:"column:enabled;not null" json:"enabled"`
	Center          geo.Point `gorm:"embedded;embeddedPrefix:center_" json:"center"`
	RadiusMeters    float64   `gorm:"column:radius_meters;not null" json:"radius_meters"`
	WorkStart       TimeOfDay `gorm:"column:work_start;not null" json:"work_start"`
	WorkEnd         TimeOfDay `gorm:"column:work_end;not null" json:"work_end"`
	RequireApproval bool      `gorm:"column:require_approval;not null" json:"require_approval"`
	UpdatedBy       string    `gorm:"column:updated_by;size:64" json:"updated_by,omitempty"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (Policy) TableName() string { return "geofence_policies" }

func (p Policy) Validate() error {
	if !geo.Valid(p.Center) {
		return invalidf("geofence center (%v, %v) out of range", p.Center.Latitude, p.Center.Longitude)
	}
	if math.IsNaN(p.RadiusMeters) || math.IsInf(p.RadiusMeters, 0) || p.RadiusMeters <= 0 {
		return invalidf("radius_meters must be greater than 0")
	}
	if !p.WorkStart.Valid() || !p.WorkEnd.Valid() {
		return invalidf("work hours out of range")
	}
	if p.WorkStart >= p.WorkEnd {
		return invalidf("work_start %s must be before work_end %s", p.WorkStart, p.WorkEnd)
	}
	return nil
}
