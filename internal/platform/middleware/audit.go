package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/auth"
)

// AuditEntry records who touched which portal resource and how it ended.
type AuditEntry struct {
	UserID     string
	Role       string
	Area       string
	Action     string // read, create, update, delete
	Route      string
	Path       string
	Method     string
	TargetID   string
	IPAddress  string
	UserAgent  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every request into a portal area (/api/v1/patient,
// /api/v1/doctor, /api/v1/admin). Public auth endpoints are not audited.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			area, ok := auditArea(req.URL.Path)
			if !ok {
				return next(c)
			}

			err := next(c)

			ctx := req.Context()
			entry := AuditEntry{
				UserID:     auth.UserIDFromContext(ctx),
				Area:       area,
				Action:     httpMethodToAction(req.Method),
				Route:      c.Path(),
				Path:       req.URL.Path,
				Method:     req.Method,
				TargetID:   targetID(c),
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				RequestID:  requestID(c),
				StatusCode: responseStatus(c, err),
				Timestamp:  time.Now().UTC(),
			}
			if roles := auth.RolesFromContext(ctx); len(roles) > 0 {
				entry.Role = roles[0]
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			evt := logger.Info()
			if entry.StatusCode == http.StatusForbidden || entry.StatusCode == http.StatusUnauthorized {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("role", entry.Role).
				Str("area", entry.Area).
				Str("action", entry.Action).
				Str("route", entry.Route).
				Str("target_id", entry.TargetID).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("portal_access")

			return err
		}
	}
}

// auditArea returns the portal area a path belongs to.
func auditArea(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "", false
	}
	area, _, _ := strings.Cut(rest, "/")
	switch area {
	case "patient", "doctor", "admin":
		return area, true
	}
	return "", false
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// targetID picks the first uuid-shaped route parameter, which is the
// account, patient or alert the request acts on.
func targetID(c echo.Context) string {
	for _, name := range c.ParamNames() {
		if v := c.Param(name); isUUIDLike(v) {
			return v
		}
	}
	return ""
}

func isUUIDLike(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
