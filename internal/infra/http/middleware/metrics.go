package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	inboundMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_messages_total",
			Help: "Total number of inbound conversation messages",
		},
		[]string{"channel", "status"},
	)

	hotLeads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hot_leads_total",
			Help: "Total number of leads that transitioned into HOT",
		},
	)

	workflowEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_events_total",
			Help: "Total number of workflow events dispatched",
		},
		[]string{"event"},
	)

	notificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of failed notification deliveries",
		},
		[]string{"sink"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordInboundMessage(channel, status string) {
	inboundMessages.WithLabelValues(channel, status).Inc()
}

func RecordWorkflowEvent(event string) {
	workflowEvents.WithLabelValues(event).Inc()
	if event == "on_hot_lead" {
		hotLeads.Inc()
	}
}

func RecordNotificationFailure(sink string) {
	notificationFailures.WithLabelValues(sink).Inc()
}
