package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "geofence-attendance/internal/domain/geofence"
	"geofence-attendance/pkg/geo"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Usecase struct {
	repo domain.PolicyRepository
	now  func() time.Time
}

func NewUsecase(r domain.PolicyRepository) *Usecase {
	return &Usecase{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the current policy; an unconfigured organization reads as disabled.
func (u *Usecase) Get(ctx context.Context) (*domain.Policy, error) {
	p, err := u.repo.Get(ctx)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &domain.Policy{ID: domain.PolicyID}, nil
	default:
		return nil, domain.StorageError("policy.Get", err)
	}
}

// Update replaces the organization policy. Admin only.
func (u *Usecase) Update(ctx context.Context, ident domain.Identity, in UpdatePolicyInput) (*domain.Policy, error) {
	if ident.UserID == "" || ident.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if in.CenterLatitude == nil || in.CenterLongitude == nil {
		return nil, fmt.Errorf("%w: center_latitude and center_longitude are required", domain.ErrInvalidInput)
	}
	start, err := domain.ParseTimeOfDay(in.WorkStart)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseTimeOfDay(in.WorkEnd)
	if err != nil {
		return nil, err
	}

	p := &domain.Policy{
		ID:              domain.PolicyID,
		Enabled:         in.Enabled,
		Center:          geo.Point{Latitude: *in.CenterLatitude, Longitude: *in.CenterLongitude},
		RadiusMeters:    in.RadiusMeters,
		WorkStart:       start,
		WorkEnd:         end,
		RequireApproval: in.RequireApproval,
		UpdatedBy:       ident.UserID,
		UpdatedAt:       u.now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, domain.StorageError("policy.Update", err)
	}

	log.Info().
		Str("updated_by", ident.UserID).
		Bool("enabled", p.Enabled).
		Float64("radius_m", p.RadiusMeters).
		Str("work_start", p.WorkStart.String()).
		Str("work_end", p.WorkEnd.String()).
		Msg("geofence policy updated")
	return p, nil
}
