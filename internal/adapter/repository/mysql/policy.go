package mysql

import (
	"context"

	domain "geofence-attendance/internal/domain/geofence"

	"gorm.io/gorm"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) Get(ctx context.Context) (*domain.Policy, error) {
	var out domain.Policy
	res := r.db.WithContext(ctx).Where("id = ?", domain.PolicyID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// Save upserts the singleton row.
func (r *PolicyRepository) Save(ctx context.Context, p *domain.Policy) error {
	p.ID = domain.PolicyID
	return r.db.WithContext(ctx).Save(p).Error
}
