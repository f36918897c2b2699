package geofence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainEmployee "geofence-attendance/internal/domain/employee"
	domain "geofence-attendance/internal/domain/geofence"
	"geofence-attendance/internal/domain/uow"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errNoUnitOfWork = errors.New("geofence: unit of work not configured")

type Usecase struct {
	events    domain.EventRepository
	policies  domain.PolicyRepository
	employees domainEmployee.Repository
	uow       uow.UnitOfWork
	eval      *domain.Evaluator
	now       func() time.Time
}

// NewUsecase: repos for the single-write paths, a UoW for review.
func NewUsecase(events domain.EventRepository, policies domain.PolicyRepository, employees domainEmployee.Repository, tx uow.UnitOfWork, eval *domain.Evaluator) *Usecase {
	if eval == nil {
		eval = domain.NewEvaluator(time.Local)
	}
	return &Usecase{
		events:    events,
		policies:  policies,
		employees: employees,
		uow:       tx,
		eval:      eval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit evaluates one location report and appends the resulting event.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.Identity.UserID == "" {
		return nil, domain.ErrForbidden
	}

	emp, err := u.employees.GetByUserID(ctx, in.Identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainEmployee.ErrNotFound
		}
		return nil, domain.StorageError("geofence.Submit: load employee", err)
	}

	policy, err := u.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}

	report := domain.Report{
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		AccuracyMeters: in.Accuracy,
		EventType:      domain.EventType(strings.ToLower(strings.TrimSpace(in.EventType))),
		Reason:         in.Reason,
		UserAgent:      in.UserAgent,
	}
	if in.ReportedAt != nil {
		report.ReportedAt = *in.ReportedAt
	}
	subject := domain.Subject{
		UserID:             in.Identity.UserID,
		EmployeeID:         emp.EmployeeID,
		DepartmentID:       emp.DepartmentID,
		ReportingManagerID: emp.ReportingManagerID,
	}

	e, verdict, err := u.eval.Evaluate(report, *policy, subject)
	if err != nil {
		return nil, err
	}
	if err := u.events.Create(ctx, e); err != nil {
		log.Error().Err(err).Str("employee_id", e.EmployeeID).Msg("geofence.Submit: failed to persist event")
		return nil, domain.StorageError("geofence.Submit", err)
	}

	log.Info().
		Str("event_id", e.EventID).
		Str("employee_id", e.EmployeeID).
		Str("event_type", string(e.EventType)).
		Bool("within", verdict.IsWithinGeofence).
		Int64("distance_m", verdict.DistanceMeters).
		Bool("requires_approval", verdict.RequiresApproval).
		Msg("geofence event recorded")

	return &SubmitResult{
		IsWithinGeofence: verdict.IsWithinGeofence,
		DistanceMeters:   verdict.DistanceMeters,
		RequiresApproval: verdict.RequiresApproval,
		Event:            toDTO(e),
	}, nil
}

// List returns the events visible to the caller, newest first.
func (u *Usecase) List(ctx context.Context, in ListInput) ([]EventDTO, error) {
	caller, err := u.resolveCaller(ctx, in.Identity)
	if err != nil {
		return nil, err
	}
	f, err := domain.ScopeFor(caller, domain.ListQuery{
		EmployeeID:     strings.TrimSpace(in.EmployeeID),
		ApprovalStatus: domain.ApprovalStatus(strings.ToLower(strings.TrimSpace(in.ApprovalStatus))),
		Limit:          in.Limit,
	})
	if err != nil {
		return nil, err
	}
	return u.find(ctx, f)
}

// Pending is the reviewer queue: pending approvals inside the caller's scope.
func (u *Usecase) Pending(ctx context.Context, ident domain.Identity, limit int) ([]EventDTO, error) {
	caller, err := u.resolveCaller(ctx, ident)
	if err != nil {
		return nil, err
	}
	if !caller.Role.Reviewer() {
		return nil, domain.ErrForbidden
	}
	f, err := domain.ScopeFor(caller, domain.ListQuery{ApprovalStatus: domain.StatusPending, Limit: limit})
	if err != nil {
		return nil, err
	}
	return u.find(ctx, f)
}

// Get returns one event if it lies inside the caller's scope. Events outside
// the scope are reported as not found.
func (u *Usecase) Get(ctx context.Context, ident domain.Identity, eventID string) (*EventDTO, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}
	caller, err := u.resolveCaller(ctx, ident)
	if err != nil {
		return nil, err
	}
	f, err := domain.ScopeFor(caller, domain.ListQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	f.EventID = eventID
	out, err := u.find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return &out[0], nil
}

// Review moves a pending approval request to approved or rejected, once.
func (u *Usecase) Review(ctx context.Context, in ReviewInput) (*EventDTO, error) {
	if u.uow == nil {
		return nil, errNoUnitOfWork
	}
	decision := domain.ApprovalStatus(strings.ToLower(strings.TrimSpace(in.Decision)))
	if !decision.Decision() {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.EventID) == "" {
		return nil, fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}

	caller, err := u.resolveCaller(ctx, in.Identity)
	if err != nil {
		return nil, err
	}
	if !caller.Role.Reviewer() {
		return nil, domain.ErrForbidden
	}

	var dto *EventDTO
	err = u.uow.WithinEventTx(ctx, strings.TrimSpace(in.EventID), func(r uow.Repos, e *domain.Event) error {
		if !domain.CanReview(caller, e) {
			return domain.ErrForbidden
		}
		// No approval request, or already decided
		if a := e.Approval(); a == nil || a.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		review := domain.Review{Status: decision, ReviewedBy: caller.UserID, ReviewedAt: u.now()}
		if err := r.Events.TransitionApproval(ctx, e.EventID, review); err != nil {
			return err
		}

		updated, err := r.Events.GetByEventID(ctx, e.EventID)
		if err != nil {
			return err
		}
		dto = toDTO(updated)
		return nil
	})
	if err != nil {
		return nil, translate("geofence.Review", err)
	}

	log.Info().
		Str("event_id", dto.EventID).
		Str("decision", string(decision)).
		Str("reviewed_by", caller.UserID).
		Msg("geofence approval reviewed")
	return dto, nil
}

func (u *Usecase) find(ctx context.Context, f domain.EventFilter) ([]EventDTO, error) {
	rows, err := u.events.List(ctx, f)
	if err != nil {
		return nil, domain.StorageError("geofence.List", err)
	}
	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// loadPolicy returns a disabled policy when none has been configured yet.
func (u *Usecase) loadPolicy(ctx context.Context) (*domain.Policy, error) {
	p, err := u.policies.Get(ctx)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &domain.Policy{ID: domain.PolicyID}, nil
	default:
		return nil, domain.StorageError("geofence: load policy", err)
	}
}

// resolveCaller joins the token identity with the directory. Admin and HR
// accounts may exist without an employee record.
func (u *Usecase) resolveCaller(ctx context.Context, ident domain.Identity) (domain.Caller, error) {
	if ident.UserID == "" {
		return domain.Caller{}, domain.ErrForbidden
	}
	c := domain.Caller{UserID: ident.UserID, Role: ident.Role}
	emp, err := u.employees.GetByUserID(ctx, ident.UserID)
	switch {
	case err == nil:
		c.EmployeeID = emp.EmployeeID
		c.DepartmentID = emp.DepartmentID
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return domain.Caller{}, domain.StorageError("geofence: resolve caller", err)
	}
	return c, nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidInput):
		return err
	default:
		return domain.StorageError(op, err)
	}
}
