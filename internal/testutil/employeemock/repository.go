package employeemock

import (
	"context"

	domain "geofence-attendance/internal/domain/employee"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByUserIDFn func(ctx context.Context, userID string) (*domain.Employee, error)
}

// Directory returns a Repo backed by a fixed user_id -> employee map;
// unknown users yield gorm.ErrRecordNotFound like the gorm repository does.
func Directory(emps ...domain.Employee) *Repo {
	byUser := make(map[string]domain.Employee, len(emps))
	for _, e := range emps {
		byUser[e.UserID] = e
	}
	return &Repo{GetByUserIDFn: func(_ context.Context, userID string) (*domain.Employee, error) {
		e, ok := byUser[userID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		return &e, nil
	}}
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Employee, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}
