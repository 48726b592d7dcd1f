package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Portal metrics
	accountsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_accounts_registered_total",
			Help: "Total number of accounts registered",
		},
		[]string{"role"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	doctorDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_doctor_decisions_total",
			Help: "Total number of approve and reject requests",
		},
		[]string{"decision", "applied"},
	)

	healthRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_health_records_total",
			Help: "Total number of health records stored",
		},
		[]string{"wellness"},
	)

	alertsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_alerts_sent_total",
			Help: "Total number of alerts sent",
		},
	)

	alertsSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_alerts_seen_total",
			Help: "Total number of alerts acknowledged",
		},
	)

	areaDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_area_decisions_total",
			Help: "Total number of area access decisions",
		},
		[]string{"area", "decision"},
	)

	auditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_audit_events_total",
			Help: "Total number of audited portal requests",
		},
		[]string{"area", "action", "status_class"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency. The path label is the
// matched route template, so ids never reach the label set.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			path := routePath(c)

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}

// --- Business metric helpers ---

func RecordAccountRegistered(role string) {
	accountsRegistered.WithLabelValues(role).Inc()
}

// RecordLogin records a login attempt. outcome is "success" or the error
// class that ended it.
func RecordLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

func RecordDoctorDecision(decision string, applied bool) {
	doctorDecisions.WithLabelValues(decision, strconv.FormatBool(applied)).Inc()
}

func RecordHealthRecord(wellness string) {
	healthRecords.WithLabelValues(wellness).Inc()
}

func RecordAlertSent() {
	alertsSent.Inc()
}

func RecordAlertSeen() {
	alertsSeen.Inc()
}

// RecordAreaDecision records an area access decision
func RecordAreaDecision(area string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	areaDecisions.WithLabelValues(area, decision).Inc()
}

// RecordAuditEvent counts one audited request. The status is folded into its
// class (2xx, 4xx, ...) to keep the label set small.
func RecordAuditEvent(area, action string, status int) {
	auditEvents.WithLabelValues(area, action, statusClass(status)).Inc()
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
