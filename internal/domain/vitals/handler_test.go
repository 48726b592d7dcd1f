package vitals

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

func asCaller(req *http.Request, c identity.Caller) *http.Request {
	return req.WithContext(identity.ContextWithCaller(req.Context(), c))
}

func TestSubmitHandler_JSONNumbersAndStrings(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"systolic":120,"diastolic":"80","sugar":95.5,"heart_rate":"72"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Submit(e.NewContext(asCaller(req, f.patient), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var result map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result["wellness"] != string(WellnessHealthy) {
		t.Errorf("expected healthy, got %v", result["wellness"])
	}
}

func TestSubmitHandler_Form(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	form := url.Values{"systolic": {"150"}, "diastolic": {"85"}, "sugar": {"100"}, "heart_rate": {"70"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	if err := h.Submit(e.NewContext(asCaller(req, f.patient), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.records) != 1 || f.repo.records[0].Systolic != 150 {
		t.Errorf("expected stored record with systolic 150, got %+v", f.repo.records)
	}
}

func TestSubmitHandler_ValidationErrors(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"systolic":70,"diastolic":null,"sugar":"x","heart_rate":72}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Submit(e.NewContext(asCaller(req, f.patient), httptest.NewRecorder()))

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", httpErr.Code)
	}
	msg, ok := httpErr.Message.(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured message, got %T", httpErr.Message)
	}
	if reasons, _ := msg["errors"].([]string); len(reasons) != 3 {
		t.Errorf("expected 3 reasons, got %v", msg["errors"])
	}
}

func TestListPatientRecordsHandler_MasksUnknownPatient(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	for _, id := range []string{uuid.New().String(), f.patient.ID.String(), "garbage"} {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/", nil), f.doctor)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		err := h.ListPatientRecords(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusNotFound {
			t.Errorf("id %s: expected 404, got %v", id, err)
			continue
		}
		if httpErr.Message != "patient not found or not assigned" {
			t.Errorf("id %s: unexpected message %v", id, httpErr.Message)
		}
	}
}
