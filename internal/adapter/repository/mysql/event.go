package mysql

import (
	"context"

	domain "geofence-attendance/internal/domain/geofence"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) GetByEventID(ctx context.Context, eventID string) (*domain.Event, error) {
	var out domain.Event
	res := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&out)
	return &out, res.Error
}

// GetByEventIDForUpdate locks the row for the rest of the enclosing tx.
func (r *EventRepository) GetByEventIDForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	var out domain.Event
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", eventID).
		First(&out)
	return &out, res.Error
}

func (r *EventRepository) List(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	q := r.db.WithContext(ctx).Model(&domain.Event{})
	if f.EventID != "" {
		q = q.Where("event_id = ?", f.EventID)
	}
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.DepartmentID != "" {
		q = q.Where("department_id = ?", f.DepartmentID)
	}
	if f.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", string(f.ApprovalStatus))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []domain.Event
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventRepository) TransitionApproval(ctx context.Context, eventID string, rv domain.Review) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("event_id = ? AND approval_status = ?", eventID, string(domain.StatusPending)).
		Updates(map[string]any{
			"approval_status":      string(rv.Status),
			"approval_reviewed_by": rv.ReviewedBy,
			"approval_reviewed_at": rv.ReviewedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotPending
	}
	return nil
}
