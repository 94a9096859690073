package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pingchain",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// outcome: created | duplicate | local_only
	RemindersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "reminders",
			Name:      "create_total",
			Help:      "Reminder create attempts by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	RemindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "reminders",
			Name:      "dispatch_total",
			Help:      "Due reminders handed to the notifier",
		},
		[]string{"status"},
	)

	// source: ai | template ; provider is empty for templates
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "suggestions",
			Name:      "generated_total",
			Help:      "Reply suggestions by source",
		},
		[]string{"source", "provider"},
	)

	PlatformMessagesSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "platforms",
			Name:      "messages_synced_total",
			Help:      "Messages imported by platform adapters",
		},
		[]string{"platform"},
	)

	PlatformSyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingchain",
			Subsystem: "platforms",
			Name:      "sync_errors_total",
			Help:      "Failed platform polls",
		},
		[]string{"platform"},
	)
)
