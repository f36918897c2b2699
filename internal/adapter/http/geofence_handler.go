package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"geofence-attendance/internal/adapter/middleware"
	ucGeofence "geofence-attendance/internal/usecase/geofence"
	"geofence-attendance/pkg/id"

	"github.com/labstack/echo/v4"
)

type GeofenceHandler struct{ uc *ucGeofence.Usecase }

func NewGeofenceHandler(uc *ucGeofence.Usecase) *GeofenceHandler { return &GeofenceHandler{uc: uc} }

type submitEventReq struct {
	Latitude   *float64   `json:"latitude"    validate:"required,latitude"`
	Longitude  *float64   `json:"longitude"   validate:"required,longitude"`
	Accuracy   *float64   `json:"accuracy"    validate:"omitempty,gte=0"`
	EventType  string     `json:"event_type"  validate:"omitempty,eventtype"`
	Reason     string     `json:"reason"      validate:"max=500"`
	ReportedAt *time.Time `json:"reported_at"`
}

type reviewReq struct {
	EventID  string `param:"event_id" json:"-" validate:"required,hex32"`
	Decision string `json:"decision"   validate:"required,decision"`
}

var errBadLimit = errors.New("limit must be a non-negative integer")

type listResponse struct {
	Data []ucGeofence.EventDTO `json:"data"`
}

// SubmitEvent handles POST /geofence/events.
func (h *GeofenceHandler) SubmitEvent(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	var req submitEventReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	res, err := h.uc.Submit(c.Request().Context(), ucGeofence.SubmitInput{
		Identity:   ident,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Accuracy:   req.Accuracy,
		EventType:  req.EventType,
		Reason:     req.Reason,
		ReportedAt: req.ReportedAt,
		UserAgent:  c.Request().UserAgent(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListEvents handles GET /geofence/events?employee_id=&approval_status=&limit=.
func (h *GeofenceHandler) ListEvents(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	limit, err := queryLimit(c)
	if err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.List(c.Request().Context(), ucGeofence.ListInput{
		Identity:       ident,
		EmployeeID:     c.QueryParam("employee_id"),
		ApprovalStatus: c.QueryParam("approval_status"),
		Limit:          limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: out})
}

// GetEvent handles GET /geofence/events/:event_id.
func (h *GeofenceHandler) GetEvent(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	eventID := c.Param("event_id")
	if !id.IsID32(eventID) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found", Code: "not_found"})
	}
	dto, err := h.uc.Get(c.Request().Context(), ident, eventID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ReviewEvent handles POST /geofence/events/:event_id/review.
func (h *GeofenceHandler) ReviewEvent(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	dto, err := h.uc.Review(c.Request().Context(), ucGeofence.ReviewInput{
		Identity: ident,
		EventID:  req.EventID,
		Decision: req.Decision,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// PendingApprovals handles GET /geofence/approvals/pending.
func (h *GeofenceHandler) PendingApprovals(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	limit, err := queryLimit(c)
	if err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Pending(c.Request().Context(), ident, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Data: out})
}

func queryLimit(c echo.Context) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadLimit
	}
	return n, nil
}
