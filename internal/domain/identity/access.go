package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/auth"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
)

// Area is a protected section of the portal.
type Area string

const (
	AreaPatient Area = "patient"
	AreaDoctor  Area = "doctor"
	AreaAdmin   Area = "admin"
)

// LoginPath is where callers without a usable role are sent.
const LoginPath = "/login"

// AccessDecision is the outcome of an area check. Redirect is set only when
// Allowed is false.
type AccessDecision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Area returns the area owned by the role.
func (r Role) Area() Area {
	return Area(r)
}

// AreaRoot returns the entry path of the role's own area, or LoginPath for an
// unknown role.
func (r Role) AreaRoot() string {
	if !r.Valid() {
		return LoginPath
	}
	return "/" + string(r)
}

// AuthorizeAreaAccess decides whether a caller holding role may enter area.
// A caller in the wrong area is sent to their own area root; a caller with no
// valid role is sent to the login page.
func AuthorizeAreaAccess(role Role, area Area) AccessDecision {
	if role.Valid() && role.Area() == area {
		return AccessDecision{Allowed: true}
	}
	return AccessDecision{Redirect: role.AreaRoot()}
}

// CallerFromContext rebuilds the session caller placed on ctx by the JWT
// middleware. It reports false when there is no identity or it is malformed.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Caller{}, false
	}
	roles := auth.RolesFromContext(ctx)
	if len(roles) == 0 {
		return Caller{ID: id}, true
	}
	return Caller{ID: id, Role: Role(roles[0])}, true
}

// ContextWithCaller attaches c to ctx in the same shape the JWT middleware uses.
func ContextWithCaller(ctx context.Context, c Caller) context.Context {
	return auth.WithIdentity(ctx, c.ID.String(), []string{string(c.Role)})
}

// RequireArea gates a route group on AuthorizeAreaAccess. Denials carry the
// redirect target both in the body and in the Location header.
func RequireArea(area Area) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFromContext(c.Request().Context())
			decision := AuthorizeAreaAccess(caller.Role, area)
			metrics.RecordAreaDecision(string(area), decision.Allowed)
			if decision.Allowed {
				return next(c)
			}
			c.Response().Header().Set(echo.HeaderLocation, decision.Redirect)
			status := http.StatusForbidden
			if !ok || !caller.Role.Valid() {
				status = http.StatusUnauthorized
			}
			return echo.NewHTTPError(status, map[string]string{
				"message":  "access denied",
				"redirect": decision.Redirect,
			})
		}
	}
}

// RequireLiveAccount rejects a token whose account has since been deleted or
// rejected. It runs after RequireArea, so the caller is already known.
func (s *Service) RequireLiveAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := CallerFromContext(c.Request().Context())
			_, err := s.accounts.GetByID(c.Request().Context(), caller.ID)
			if errors.Is(err, ErrAccountNotFound) {
				c.Response().Header().Set(echo.HeaderLocation, LoginPath)
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"message":  "account no longer exists",
					"redirect": LoginPath,
				})
			}
			if err != nil {
				return err
			}
			return next(c)
		}
	}
}
