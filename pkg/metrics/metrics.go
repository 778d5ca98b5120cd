// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessedTotal tracks CDC events processed by stream and outcome
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "cdc",
			Name:      "events_total",
			Help:      "Total number of CDC events processed by stream and outcome",
		},
		[]string{"stream", "outcome"},
	)

	// NotificationsSentTotal tracks notifications handed to the push transport
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of notifications sent by transition kind",
		},
		[]string{"kind"},
	)

	// NotificationsSkippedTotal tracks silent no-ops by reason
	NotificationsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "notify",
			Name:      "skipped_total",
			Help:      "Total number of notifications skipped by reason",
		},
		[]string{"reason"},
	)

	// PushSendFailuresTotal tracks push transport failures
	PushSendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "push",
			Name:      "failures_total",
			Help:      "Total number of push transport send failures",
		},
	)

	// PushSendDuration tracks push transport request duration
	PushSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "push",
			Name:      "send_duration_seconds",
			Help:      "Duration of push transport sends in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Outcome labels for EventsProcessedTotal
const (
	OutcomeNotified   = "notified"
	OutcomeSuppressed = "suppressed"
	OutcomeSkipped    = "skipped"
	OutcomeError      = "error"
)

// Skip reason labels for NotificationsSkippedTotal
const (
	ReasonMissingUser = "missing_user"
	ReasonNoToken     = "no_token"
	ReasonSendFailed  = "send_failed"
)
