// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for auth operation metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDenied  = "denied"
)

// AuthOperations is the counter for auth operations.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "peopledir_auth_operations_total",
		Help: "Total number of auth operations",
	},
	[]string{"operation", "status"},
)

// AuthOperationDuration is the histogram for auth operation duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthOperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "peopledir_auth_operation_duration_seconds",
		Help:    "Auth operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// SecretsPurged is the counter for expired codes and tokens removed by the
// scavenger.
var SecretsPurged = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "peopledir_secrets_purged_total",
		Help: "Total number of expired verification codes and reset tokens purged",
	},
	[]string{"kind"},
)

// RegisterMetrics registers identity package metrics with the given
// Prometheus registry. Panics if registration fails (prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthOperations)
	reg.MustRegister(AuthOperationDuration)
	reg.MustRegister(SecretsPurged)
}

// recordOperation increments the operation counter and observes duration.
func recordOperation(operation, status string, start time.Time) {
	AuthOperations.WithLabelValues(operation, status).Inc()
	AuthOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
