package mysql

import (
	"context"

	domain "geofence-attendance/internal/domain/employee"

	"gorm.io/gorm"
)

// EmployeeRepository reads the HR directory table.
type EmployeeRepository struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository { return &EmployeeRepository{db: db} }

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID string) (*domain.Employee, error) {
	var out domain.Employee
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
