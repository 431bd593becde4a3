// Package metrics provides Prometheus metrics for the portfolio server and
// its terminal sessions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Terminal metrics
	terminalSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_terminal_sessions_active",
			Help: "Number of open terminal sessions",
		},
	)

	terminalCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_terminal_commands_total",
			Help: "Commands submitted to terminal sessions",
		},
		[]string{"command"},
	)

	terminalEffectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_terminal_effects_total",
			Help: "Side effects requested by terminal sessions",
		},
		[]string{"effect"},
	)

	hacktypeRoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_hacktype_rounds_total",
			Help: "Completed hacktype rounds",
		},
	)

	hacktypeWPM = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_hacktype_wpm",
			Help:    "Words per minute of completed hacktype rounds",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 80, 100, 130, 160, 200},
		},
	)

	// Admin metrics
	adminLoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_admin_login_attempts_total",
			Help: "Admin login attempts",
		},
		[]string{"result"},
	)
)

// knownCommands bounds the label cardinality of terminal_commands_total.
var knownCommands = map[string]bool{
	"help": true, "ls": true, "cd": true, "cat": true, "pwd": true, "clear": true,
	"whoami": true, "goto": true, "open": true, "download": true, "theme": true,
	"matrix": true, "exit": true, "sudo": true, "rm": true, "hacktype": true,
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SessionOpened increments the active terminal session gauge.
func SessionOpened() {
	terminalSessionsActive.Inc()
}

// SessionClosed decrements the active terminal session gauge.
func SessionClosed() {
	terminalSessionsActive.Dec()
}

// RecordCommand counts a submitted command. Unknown names share one label.
func RecordCommand(name string) {
	if name == "" {
		return
	}
	if !knownCommands[name] {
		name = "unknown"
	}
	terminalCommandsTotal.WithLabelValues(name).Inc()
}

// RecordEffect counts a side effect requested by a session.
func RecordEffect(effect string) {
	terminalEffectsTotal.WithLabelValues(effect).Inc()
}

// RecordRound records a completed hacktype round.
func RecordRound(wpm int) {
	hacktypeRoundsTotal.Inc()
	hacktypeWPM.Observe(float64(wpm))
}

// RecordAdminLogin records an admin login attempt.
func RecordAdminLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	adminLoginAttempts.WithLabelValues(result).Inc()
}

// GinMiddleware records request metrics using the matched route template
// so path labels stay bounded.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
