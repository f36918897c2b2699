package mysql

import (
	"context"

	"geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinEventTx(ctx context.Context, eventID string, fn func(r uow.Repos, e *geofence.Event) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := &EventRepository{db: tx}
		// lock the event row up-front so concurrent reviewers serialize
		e, err := events.GetByEventIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		return fn(uow.Repos{Events: events}, e)
	})
}
