// Package metrics holds the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IdentitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "account",
		Name:      "identities_created_total",
		Help:      "Identities created.",
	})

	IdentitiesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "account",
		Name:      "identities_deleted_total",
		Help:      "Identities deleted, including signup rollbacks.",
	})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "account",
		Name:      "sessions_created_total",
		Help:      "Sessions opened.",
	})

	ProfilesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "account",
		Name:      "profiles_created_total",
		Help:      "Profile documents created.",
	})

	RecoveryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "account",
		Name:      "recovery_requests_total",
		Help:      "Password recovery requests by outcome.",
	}, []string{"outcome"})

	AppointmentsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seva",
		Subsystem: "appointments",
		Name:      "booked_total",
		Help:      "Appointments booked.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seva",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
