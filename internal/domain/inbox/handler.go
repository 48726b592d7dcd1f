package inbox

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(doctorGroup, patientGroup *echo.Group) {
	doctorGroup.POST("/alerts", h.Send)
	doctorGroup.GET("/alerts", h.ListSent)

	patientGroup.GET("/alerts", h.ListMine)
	patientGroup.GET("/alerts/unseen", h.UnseenCount)
	patientGroup.POST("/alerts/:id/seen", h.MarkSeen)
}

type sendRequest struct {
	PatientID string `json:"patient_id" form:"patient_id"`
	Message   string `json:"message" form:"message"`
}

func (h *Handler) Send(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return careteam.HTTPError(careteam.ErrNotAssigned)
	}
	caller, _ := identity.CallerFromContext(c.Request().Context())
	a, err := h.svc.Send(c.Request().Context(), caller.ID, patientID, req.Message)
	if err != nil {
		return HTTPError(err)
	}
	metrics.RecordAlertSent()
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListSent(c echo.Context) error {
	var f Filter
	f.State = AlertState(c.QueryParam("state"))
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = id
	}
	w, err := ParseWindow(c.QueryParam("window"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.Window = w

	caller, _ := identity.CallerFromContext(c.Request().Context())
	alerts, err := h.svc.ListSentBy(c.Request().Context(), caller.ID, f)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, nonNil(alerts))
}

func (h *Handler) ListMine(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	alerts, err := h.svc.ListForPatient(c.Request().Context(), caller.ID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, nonNil(alerts))
}

func (h *Handler) UnseenCount(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	n, err := h.svc.UnseenCount(c.Request().Context(), caller.ID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"unseen": n})
}

func (h *Handler) MarkSeen(c echo.Context) error {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	caller, _ := identity.CallerFromContext(c.Request().Context())
	applied, err := h.svc.MarkSeen(c.Request().Context(), caller.ID, alertID)
	if err != nil {
		return HTTPError(err)
	}
	if applied {
		metrics.RecordAlertSeen()
	}
	return c.JSON(http.StatusOK, map[string]bool{"applied": applied})
}

func nonNil(alerts []*Alert) []*Alert {
	if alerts == nil {
		return []*Alert{}
	}
	return alerts
}

// HTTPError maps alert errors onto HTTP statuses, falling back to the
// care-team mapping.
func HTTPError(err error) error {
	if errors.Is(err, ErrInvalidMessage) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return careteam.HTTPError(err)
}
