// Package monitoring exposes Prometheus metrics for the player bridge.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	CommandsTotal    *prometheus.CounterVec
	SubmissionErrors prometheus.Counter
	MessagesTotal    *prometheus.CounterVec
	ParseFailures    *prometheus.CounterVec
	NavigationsTotal *prometheus.CounterVec
	PlayersActive    prometheus.Gauge
	WSConnections    prometheus.Gauge
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playerbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playerbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playerbridge_commands_total",
				Help: "Commands dispatched to the remote peer",
			},
			[]string{"command"},
		),
		SubmissionErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "playerbridge_submission_errors_total",
				Help: "Script submissions that failed at the surface",
			},
		),
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playerbridge_messages_total",
				Help: "Inbound channel messages by channel name",
			},
			[]string{"channel"},
		),
		ParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playerbridge_parse_failures_total",
				Help: "Inbound payloads that failed to parse, by channel",
			},
			[]string{"channel"},
		),
		NavigationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playerbridge_navigations_total",
				Help: "Navigation attempts by decision",
			},
			[]string{"decision"},
		),
		PlayersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "playerbridge_players_active",
				Help: "Player instances currently alive",
			},
		),
		WSConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "playerbridge_ws_connections",
				Help: "Active WebSocket event stream connections",
			},
		),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CommandsTotal,
		m.SubmissionErrors,
		m.MessagesTotal,
		m.ParseFailures,
		m.NavigationsTotal,
		m.PlayersActive,
		m.WSConnections,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latencies per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
