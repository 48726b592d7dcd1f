package admin

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
	"github.com/SwapnilGotsurve/health-care-system-sub000/pkg/pagination"
)

// Handler exposes the approval workflow and dashboard on the admin area.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(adminGroup *echo.Group) {
	adminGroup.GET("/doctors/pending", h.ListPending)
	adminGroup.POST("/doctors/:id/approve", h.Approve)
	adminGroup.POST("/doctors/:id/reject", h.Reject)
	adminGroup.GET("/stats", h.Stats)
}

type decisionResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Decision Decision  `json:"decision"`
	Applied  bool      `json:"applied"`
}

func (h *Handler) Approve(c echo.Context) error {
	return h.decide(c, DecisionApprove, h.svc.Approve)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.decide(c, DecisionReject, h.svc.Reject)
}

// decide answers 200 whether or not the row changed; a request racing
// another admin, or naming a non-pending doctor, reports applied=false.
func (h *Handler) decide(c echo.Context, d Decision,
	apply func(context.Context, identity.Caller, uuid.UUID) (bool, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	caller, _ := identity.CallerFromContext(c.Request().Context())
	applied, err := apply(c.Request().Context(), caller, id)
	if err != nil {
		return identity.HTTPError(err)
	}
	metrics.RecordDoctorDecision(string(d), applied)
	return c.JSON(http.StatusOK, decisionResponse{DoctorID: id, Decision: d, Applied: applied})
}

func (h *Handler) ListPending(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	p := pagination.FromContext(c)
	items, total, err := h.svc.PendingDoctors(c.Request().Context(), caller, p.Limit, p.Offset)
	if err != nil {
		return identity.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) Stats(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	st, err := h.svc.Stats(c.Request().Context(), caller)
	if err != nil {
		return identity.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}
