// Package observability provides Prometheus metrics for the API and the reply pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starhaven_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ModerationVerdicts counts moderation check outcomes.
	// verdict is one of: allowed, blocked, error.
	ModerationVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starhaven_moderation_verdicts_total",
		Help: "Total number of moderation check outcomes by verdict",
	}, []string{"verdict"})

	// OracleLatency records latency of oracle calls by operation (check, generate).
	OracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starhaven_oracle_latency_seconds",
		Help:    "Latency of moderation/generation oracle calls in seconds",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
	}, []string{"operation"})

	// ReplyJobsEnqueued counts reply jobs accepted by the queue.
	ReplyJobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starhaven_reply_jobs_enqueued_total",
		Help: "Total number of reply jobs enqueued",
	})

	// ReplyJobsDelivered counts job deliveries by result (acked, nacked, duplicate).
	ReplyJobsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starhaven_reply_jobs_delivered_total",
		Help: "Total number of reply job deliveries by result",
	}, []string{"result"})

	// ReplyJobsDropped counts jobs dropped after exhausting redeliveries.
	ReplyJobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starhaven_reply_jobs_dropped_total",
		Help: "Total number of reply jobs dropped after exceeding the delivery cap",
	})

	// ReplyQueueDepth is the number of jobs currently scheduled in the queue.
	ReplyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "starhaven_reply_queue_depth",
		Help: "Number of reply jobs currently scheduled",
	})
)

// ObserveOracleCall records the latency of an oracle call.
func ObserveOracleCall(operation string, start time.Time) {
	OracleLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
