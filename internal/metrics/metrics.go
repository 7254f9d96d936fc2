// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aeroway"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	TrackingSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_sessions_created_total",
		Help:      "Tracking sessions created.",
	})

	TrackingSessionsReused = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_sessions_reused_total",
		Help:      "Generate calls answered with an existing live session.",
	})

	TrackingCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_code_collisions_total",
		Help:      "Candidate tracking codes rejected as already taken.",
	})

	SweepRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_rows_total",
		Help:      "Rows touched by the periodic sweep, by task.",
	}, []string{"task"})

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sse_clients",
		Help:      "Connected live tracking clients.",
	})
)

var ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "chat_messages_total",
	Help:      "Chatbot exchanges by response language.",
}, []string{"language"})
