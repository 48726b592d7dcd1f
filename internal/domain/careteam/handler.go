package careteam

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(doctorGroup, patientGroup, adminGroup *echo.Group) {
	doctorGroup.GET("/patients", h.ListMyPatients)
	patientGroup.GET("/doctors", h.ListMyDoctors)

	adminGroup.POST("/assignments", h.Assign)
	adminGroup.DELETE("/assignments/:doctor_id/:patient_id", h.Unassign)
	adminGroup.GET("/doctors/:id/patients", h.ListPatientsOfDoctor)
}

type assignRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Assign(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Assign(c.Request().Context(), req.DoctorID, req.PatientID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Unassign(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	removed, err := h.svc.Unassign(c.Request().Context(), doctorID, patientID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) ListMyPatients(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	patients, err := h.svc.PatientsOf(c.Request().Context(), caller.ID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, orEmpty(patients))
}

func (h *Handler) ListPatientsOfDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	patients, err := h.svc.PatientsOf(c.Request().Context(), doctorID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, orEmpty(patients))
}

func (h *Handler) ListMyDoctors(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	doctors, err := h.svc.DoctorsOf(c.Request().Context(), caller.ID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, orEmpty(doctors))
}

// orEmpty keeps an empty listing encoded as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// HTTPError maps care-team errors onto HTTP statuses, falling back to the
// identity mapping.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateAssignment):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotAssigned):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return identity.HTTPError(err)
}
