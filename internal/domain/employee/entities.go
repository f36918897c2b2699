package employee

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("employee not found")

// Table: employees. Owned by the HR directory; this service only reads it.
type Employee struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EmployeeID         string    `gorm:"column:employee_id;size:64;not null;uniqueIndex:ux_employees_employee_id" json:"employee_id"`
	UserID             string    `gorm:"column:user_id;size:64;not null;uniqueIndex:ux_employees_user_id" json:"user_id"`
	FullName           string    `gorm:"column:full_name;size:255" json:"full_name"`
	DepartmentID       string    `gorm:"column:department_id;size:64;index" json:"department_id"`
	ReportingManagerID string    `gorm:"column:reporting_manager_id;size:64" json:"reporting_manager_id"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }
