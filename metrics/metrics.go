// Package metrics exposes Prometheus collectors for the certification
// workflow core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "certflow"

var (
	// MessagesPublished counts signals accepted by the engine, per message name.
	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_published_total",
		Help:      "Signals published to the process engine, by message name.",
	}, []string{"message"})

	// JobsCompleted counts job activations reported complete, per job type.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_completed_total",
		Help:      "Job activations completed back to the engine, by job type.",
	}, []string{"job_type"})

	// JobsFailed counts job activations reported failed, per job type. Only
	// state-changing jobs surface failures; absorbed notification errors are
	// counted under NotificationsDropped instead.
	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_failed_total",
		Help:      "Job activations failed back to the engine, by job type.",
	}, []string{"job_type"})

	// NotificationsDropped counts notification deliveries that errored and
	// were absorbed without blocking the pipeline.
	NotificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Notification attempts that failed and were absorbed, by job type.",
	}, []string{"job_type"})

	// BadgeDuplicates counts duplicate creer-badge activations resolved by
	// the ledger's idempotency check.
	BadgeDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "badge_duplicate_activations_total",
		Help:      "Duplicate badge issuance attempts answered with the existing badge.",
	})

	// RegistryEvictions counts visitor correlations removed by the TTL sweep.
	RegistryEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registry_evictions_total",
		Help:      "Visitor correlations evicted after exceeding the registry TTL.",
	})
)
