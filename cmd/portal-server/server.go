package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/config"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/admin"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/inbox"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/vitals"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/auth"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/db"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/memstore"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/metrics"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/middleware"
)

// stores bundles the repositories of one storage driver.
type stores struct {
	accounts    identity.AccountRepository
	assignments careteam.AssignmentRepository
	records     vitals.RecordRepository
	alerts      inbox.AlertRepository
	snapshot    admin.TxRunner
	// pool is nil on the memory driver.
	pool *pgxpool.Pool
}

func memoryStores() stores {
	st := memstore.New()
	return stores{
		accounts:    st.Accounts(),
		assignments: st.Assignments(),
		records:     st.Records(),
		alerts:      st.Alerts(),
		snapshot:    st,
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		accounts:    identity.NewAccountRepoPG(pool),
		assignments: careteam.NewAssignmentRepoPG(pool),
		records:     vitals.NewRecordRepoPG(pool),
		alerts:      inbox.NewAlertRepoPG(pool),
		snapshot:    db.NewSnapshotRunner(pool),
		pool:        pool,
	}
}

func poolConfig(cfg *config.Config, logger zerolog.Logger) db.PoolConfig {
	pc := db.PoolConfig{
		URL:               cfg.DatabaseURL,
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		HealthCheckPeriod: cfg.DBHealthCheck,
		ApplicationName:   cfg.DBAppName,
	}
	if cfg.DBLogQueries {
		ql := logger.With().Str("component", "pgx").Logger()
		pc.QueryLogger = &ql
	}
	return pc
}

// openStores selects the storage driver named by cfg. The returned func
// releases whatever the driver holds.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (stores, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return memoryStores(), func() {}, nil
	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg, logger))
		if err != nil {
			return stores{}, nil, err
		}
		return postgresStores(pool), pool.Close, nil
	}
	return stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

type services struct {
	identity *identity.Service
	careteam *careteam.Service
	vitals   *vitals.Service
	inbox    *inbox.Service
	admin    *admin.Service
}

func newServices(st stores, hasher identity.CredentialHasher, logger zerolog.Logger) *services {
	svcs := &services{}
	svcs.identity = identity.NewService(st.accounts, hasher)
	svcs.identity.SetLogger(logger.With().Str("component", "identity").Logger())

	svcs.careteam = careteam.NewService(st.assignments, st.accounts)
	svcs.careteam.SetLogger(logger.With().Str("component", "careteam").Logger())

	svcs.vitals = vitals.NewService(st.records, st.accounts, svcs.careteam)
	svcs.vitals.SetLogger(logger.With().Str("component", "vitals").Logger())

	svcs.inbox = inbox.NewService(st.alerts, svcs.careteam)
	svcs.inbox.SetLogger(logger.With().Str("component", "inbox").Logger())

	svcs.admin = admin.NewService(st.accounts, st.assignments, st.records, st.alerts)
	svcs.admin.SetLogger(logger.With().Str("component", "admin").Logger())
	svcs.admin.SetTxRunner(st.snapshot)
	return svcs
}

// newServer builds the echo instance with every portal route mounted.
func newServer(cfg *config.Config, st stores, logger zerolog.Logger) (*echo.Echo, *services, error) {
	signingKey, err := cfg.SigningKey()
	if err != nil {
		return nil, nil, err
	}
	svcs := newServices(st, auth.NewBcryptHasher(cfg.BcryptCost), logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		Issuer:         cfg.JWTIssuer,
		SigningKey:     signingKey,
		Skipper:        auth.AuthSkipper,
		AllowAnonymous: true,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.Audit(logger, auditMetrics))

	// API groups
	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond = cfg.RateLimitRPS
	rl.BurstSize = cfg.RateLimitBurst
	apiV1 := e.Group("/api/v1", middleware.RateLimit(rl))
	live := svcs.identity.RequireLiveAccount()
	patientGroup := apiV1.Group("/patient", identity.RequireArea(identity.AreaPatient), live)
	doctorGroup := apiV1.Group("/doctor", identity.RequireArea(identity.AreaDoctor), live)
	adminGroup := apiV1.Group("/admin", identity.RequireArea(identity.AreaAdmin), live)

	tokens := auth.NewTokenIssuer(cfg.JWTIssuer, signingKey, cfg.TokenTTL)
	identity.NewHandler(svcs.identity, tokens).RegisterRoutes(apiV1, adminGroup)
	careteam.NewHandler(svcs.careteam).RegisterRoutes(doctorGroup, patientGroup, adminGroup)
	vitals.NewHandler(svcs.vitals).RegisterRoutes(patientGroup, doctorGroup)
	inbox.NewHandler(svcs.inbox).RegisterRoutes(doctorGroup, patientGroup)
	admin.NewHandler(svcs.admin).RegisterRoutes(adminGroup)

	// Infrastructure
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(st.pool))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e, svcs, nil
}

// auditMetrics counts audited portal requests by area, action and status.
var auditMetrics = middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
	metrics.RecordAuditEvent(entry.Area, entry.Action, entry.StatusCode)
	return nil
})

// provisionAdmin registers an administrator. An email that is already taken
// is reported through created=false rather than an error.
func provisionAdmin(ctx context.Context, svc *identity.Service, name, email, password string) (acct *identity.Account, created bool, err error) {
	acct, err = svc.Register(ctx, name, email, password, identity.RoleAdmin)
	if errors.Is(err, identity.ErrDuplicateIdentity) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return acct, true, nil
}
