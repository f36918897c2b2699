package geofence

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ParseRole maps a role claim onto a known Role. Anything unrecognised is an
// employee, never an elevated role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleHR:
		return RoleHR
	case RoleManager:
		return RoleManager
	default:
		return RoleEmployee
	}
}

// Reviewer reports whether the role may review approval requests at all.
func (r Role) Reviewer() bool { return r == RoleAdmin || r == RoleHR || r == RoleManager }

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string
	Role   Role
}

// Caller is the authenticated principal resolved against the directory.
type Caller struct {
	UserID       string
	EmployeeID   string
	DepartmentID string
	Role         Role
}

type ListQuery struct {
	EmployeeID     string
	ApprovalStatus ApprovalStatus
	Limit          int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ScopeFor narrows q to what c may read. The returned filter must be passed
// to the store as-is.
func ScopeFor(c Caller, q ListQuery) (EventFilter, error) {
	if q.ApprovalStatus != "" && !q.ApprovalStatus.Valid() {
		return EventFilter{}, invalidf("unknown approval status %q", q.ApprovalStatus)
	}
	if q.Limit < 0 {
		return EventFilter{}, invalidf("limit must not be negative")
	}
	f := EventFilter{ApprovalStatus: q.ApprovalStatus, Limit: q.Limit}
	switch {
	case f.Limit == 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}

	switch c.Role {
	case RoleAdmin, RoleHR:
		f.EmployeeID = q.EmployeeID
	case RoleManager:
		if c.DepartmentID == "" {
			return EventFilter{}, ErrForbidden
		}
		f.DepartmentID = c.DepartmentID
	case RoleEmployee:
		if c.EmployeeID == "" {
			return EventFilter{}, ErrForbidden
		}
		f.EmployeeID = c.EmployeeID
	default:
		return EventFilter{}, ErrForbidden
	}
	return f, nil
}

// CanReview reports whether c has authority over the department of e.
func CanReview(c Caller, e *Event) bool {
	switch c.Role {
	case RoleAdmin, RoleHR:
		return true
	case RoleManager:
		return c.DepartmentID != "" && e.DepartmentID == c.DepartmentID
	default:
		return false
	}
}
