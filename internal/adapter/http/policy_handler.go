package http

import (
	"net/http"

	"geofence-attendance/internal/adapter/middleware"
	ucPolicy "geofence-attendance/internal/usecase/policy"

	"github.com/labstack/echo/v4"
)

type PolicyHandler struct{ uc *ucPolicy.Usecase }

func NewPolicyHandler(uc *ucPolicy.Usecase) *PolicyHandler { return &PolicyHandler{uc: uc} }

type updatePolicyReq struct {
	Enabled         bool     `json:"enabled"`
	CenterLatitude  *float64 `json:"center_latitude"  validate:"required,latitude"`
	CenterLongitude *float64 `json:"center_longitude" validate:"required,longitude"`
	RadiusMeters    float64  `json:"radius_meters"    validate:"gt=0"`
	WorkStart       string   `json:"work_start"       validate:"required,datetime=15:04"`
	WorkEnd         string   `json:"work_end"         validate:"required,datetime=15:04"`
	RequireApproval bool     `json:"require_approval"`
}

func (h *PolicyHandler) GetPolicy(c echo.Context) error {
	p, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PolicyHandler) UpdatePolicy(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	}
	var req updatePolicyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	p, err := h.uc.Update(c.Request().Context(), ident, ucPolicy.UpdatePolicyInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
