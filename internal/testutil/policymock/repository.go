package policymock

import (
	"context"

	domain "geofence-attendance/internal/domain/geofence"
)

var _ domain.PolicyRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.PolicyRepository.
type Repo struct {
	GetFn  func(ctx context.Context) (*domain.Policy, error)
	SaveFn func(ctx context.Context, p *domain.Policy) error
}

// Static returns a Repo whose Get always yields a copy of p.
func Static(p domain.Policy) *Repo {
	return &Repo{GetFn: func(context.Context) (*domain.Policy, error) {
		cp := p
		return &cp, nil
	}}
}

func (m *Repo) Get(ctx context.Context) (*domain.Policy, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, p *domain.Policy) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
