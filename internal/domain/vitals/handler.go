package vitals

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
	"github.com/SwapnilGotsurve/health-care-system-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(patientGroup, doctorGroup *echo.Group) {
	patientGroup.POST("/records", h.Submit)
	patientGroup.GET("/records", h.ListMyRecords)
	patientGroup.GET("/records/summary", h.MySummary)

	doctorGroup.GET("/patients/:id/records", h.ListPatientRecords)
}

// rawValue accepts a JSON string, a JSON number or a form value verbatim so
// that presence and numeric checks run on what the client actually sent.
type rawValue string

func (v *rawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = rawValue(s)
		return nil
	}
	*v = rawValue(data)
	return nil
}

func (v *rawValue) UnmarshalParam(param string) error {
	*v = rawValue(param)
	return nil
}

type submitRequest struct {
	Systolic  rawValue `json:"systolic" form:"systolic"`
	Diastolic rawValue `json:"diastolic" form:"diastolic"`
	Sugar     rawValue `json:"sugar" form:"sugar"`
	HeartRate rawValue `json:"heart_rate" form:"heart_rate"`
}

func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller, _ := identity.CallerFromContext(c.Request().Context())
	rec, err := h.svc.Submit(c.Request().Context(), caller, RawVitals{
		Systolic:  string(req.Systolic),
		Diastolic: string(req.Diastolic),
		Sugar:     string(req.Sugar),
		HeartRate: string(req.HeartRate),
	})
	if err != nil {
		return HTTPError(err)
	}
	metrics.RecordHealthRecord(string(rec.Wellness))
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListMyRecords(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	p := pagination.FromContext(c)
	records, total, err := h.svc.Page(c.Request().Context(), caller.ID, p.Limit, p.Offset)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
}

func (h *Handler) MySummary(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	sum, err := h.svc.Summary(c.Request().Context(), caller.ID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) ListPatientRecords(c echo.Context) error {
	caller, _ := identity.CallerFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Same answer as an unassigned patient.
		return careteam.HTTPError(careteam.ErrNotAssigned)
	}
	p := pagination.FromContext(c)
	records, total, err := h.svc.HistoryForDoctor(c.Request().Context(), caller.ID, patientID, p.Limit, p.Offset)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
}

// HTTPError maps record errors onto HTTP statuses. Validation failures carry
// the full list of reasons.
func HTTPError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message": ErrValidationFailed.Error(),
			"errors":  verr.Reasons,
		})
	}
	return careteam.HTTPError(err)
}
