package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubIssuer struct{}

func (stubIssuer) Issue(subject, role string) (string, time.Time, error) {
	return "token-" + subject + "-" + role, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc, stubIssuer{}), svc, echo.New()
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestRegisterHandler_Success(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost,
		`{"name":"Dana","email":"dana@example.com","password":"pw","role":"doctor"}`), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var result map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result["status"] != "pending" {
		t.Errorf("expected status pending, got %v", result["status"])
	}
	if _, ok := result["credential"]; ok {
		t.Error("credential must not be serialized")
	}
}

func TestRegisterHandler_RejectsAdminRole(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost,
		`{"name":"Eve","email":"eve@example.com","password":"pw","role":"admin"}`), httptest.NewRecorder())

	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRegisterHandler_Duplicate(t *testing.T) {
	h, svc, e := newTestHandler()
	svc.Register(context.Background(), "Dana", "dana@example.com", "pw", RolePatient)

	c := e.NewContext(jsonRequest(http.MethodPost,
		`{"name":"Dana","email":"Dana@Example.com","password":"pw","role":"patient"}`), httptest.NewRecorder())
	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestLoginHandler(t *testing.T) {
	h, svc, e := newTestHandler()
	ctx := context.Background()
	pat, _ := svc.Register(ctx, "Pat", "pat@example.com", "pw", RolePatient)
	svc.Register(ctx, "Doc", "doc@example.com", "pw", RoleDoctor)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"email":"pat@example.com","password":"pw"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "token-"+pat.ID.String()+"-patient" {
		t.Errorf("unexpected token %q", resp.Token)
	}
	if resp.Redirect != "/patient" {
		t.Errorf("expected redirect /patient, got %q", resp.Redirect)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong password", `{"email":"pat@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"who@example.com","password":"pw"}`, http.StatusUnauthorized},
		{"pending doctor", `{"email":"doc@example.com","password":"pw"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(jsonRequest(http.MethodPost, tt.body), httptest.NewRecorder())
			err := h.Login(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.status {
				t.Errorf("expected %d, got %v", tt.status, err)
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	h, svc, e := newTestHandler()
	pat, _ := svc.Register(context.Background(), "Pat", "pat@example.com", "pw", RolePatient)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithCaller(req.Context(), Caller{ID: pat.ID, Role: RolePatient}))
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	err := h.Me(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %v", err)
	}
}

func TestDeleteAccountHandler(t *testing.T) {
	h, svc, e := newTestHandler()
	ctx := context.Background()
	admin, _ := svc.Register(ctx, "Root", "root@example.com", "pw", RoleAdmin)
	pat, _ := svc.Register(ctx, "Pat", "pat@example.com", "pw", RolePatient)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(ContextWithCaller(req.Context(), Caller{ID: admin.ID, Role: RoleAdmin}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pat.ID.String())

	if err := h.DeleteAccount(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &result)
	if !result["deleted"] {
		t.Error("expected deleted=true")
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	err := h.DeleteAccount(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 without admin session, got %v", err)
	}
}
