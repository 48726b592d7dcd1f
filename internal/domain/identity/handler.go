package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
	"github.com/SwapnilGotsurve/health-care-system-sub000/pkg/pagination"
)

// TokenIssuer mints a session token for an authenticated caller.
type TokenIssuer interface {
	Issue(subject, role string) (string, time.Time, error)
}

type Handler struct {
	svc    *Service
	tokens TokenIssuer
}

func NewHandler(svc *Service, tokens TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes mounts the public auth endpoints on api and the account
// directory on the admin area group.
func (h *Handler) RegisterRoutes(api *echo.Group, adminGroup *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)

	adminGroup.GET("/accounts", h.ListAccounts)
	adminGroup.GET("/accounts/:id", h.GetAccount)
	adminGroup.DELETE("/accounts/:id", h.DeleteAccount)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Caller    Caller    `json:"caller"`
	Redirect  string    `json:"redirect"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Administrators are provisioned from the command line only.
	if req.Role != RolePatient && req.Role != RoleDoctor {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be patient or doctor")
	}
	a, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return httpError(err)
	}
	metrics.RecordAccountRegistered(string(a.Role))
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caller, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		metrics.RecordLogin("invalid_credentials")
		return httpError(err)
	case errors.Is(err, ErrPendingApproval):
		metrics.RecordLogin("pending_approval")
		return httpError(err)
	case err != nil:
		return httpError(err)
	}
	metrics.RecordLogin("success")
	token, expires, err := h.tokens.Issue(caller.ID.String(), string(caller.Role))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		Caller:    caller,
		Redirect:  caller.Role.AreaRoot(),
	})
}

func (h *Handler) Me(c echo.Context) error {
	caller, ok := CallerFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	a, err := h.svc.GetAccount(c.Request().Context(), caller.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	caller, _ := CallerFromContext(c.Request().Context())
	p := pagination.FromContext(c)
	filter := ListFilter{
		Role:   Role(c.QueryParam("role")),
		Status: Status(c.QueryParam("status")),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role filter")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}
	items, total, err := h.svc.ListAccounts(c.Request().Context(), caller, filter, p.Limit, p.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAccount(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAccount(c echo.Context) error {
	caller, _ := CallerFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	deleted, err := h.svc.DeleteAccount(c.Request().Context(), caller, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": deleted})
}

// httpError maps identity errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateIdentity):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPendingApproval), errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrUnknownAccount):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// HTTPError exposes the identity error mapping to other handler packages.
func HTTPError(err error) error { return httpError(err) }
