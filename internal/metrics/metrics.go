// Package metrics holds the Prometheus collectors of the parcel locker service.
// They register with the default registry and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_reservations_total",
		Help: "Locker reservation attempts by requested size and outcome (reserved, not_available).",
	},
		[]string{"size", "outcome"},
	)

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_parcel_transitions_total",
		Help: "Applied parcel lifecycle transitions by target status.",
	},
		[]string{"to"},
	)

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_pin_verifications_total",
		Help: "PIN verification attempts by outcome (success, failure).",
	},
		[]string{"outcome"},
	)

	CredentialIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_credential_issues_total",
		Help: "Issued PINs and generation tokens by reason.",
	},
		[]string{"reason"},
	)

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parcellocker_regenerations_rate_limited_total",
		Help: "Regeneration requests refused by the daily cap.",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_notifications_total",
		Help: "Notification delivery attempts by template kind and outcome.",
	},
		[]string{"kind", "outcome"},
	)

	AuditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parcellocker_audit_failures_total",
		Help: "Audit events the sink failed to record.",
	})

	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_sweep_runs_total",
		Help: "Background sweep runs by outcome (completed, skipped, failed).",
	},
		[]string{"outcome"},
	)

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parcellocker_sweep_duration_seconds",
		Help:    "Duration of completed background sweeps.",
		Buckets: prometheus.DefBuckets,
	})

	RemindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parcellocker_reminders_total",
		Help: "Reminder attempts by outcome (sent, failed).",
	},
		[]string{"outcome"},
	)

	ExpiredParcelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parcellocker_parcels_expired_total",
		Help: "Parcels returned to sender by the expiration sweep.",
	})

	RequestsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parcellocker_http_requests_throttled_total",
		Help: "HTTP requests rejected by the per-client rate limiter.",
	})
)
