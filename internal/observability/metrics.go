package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCast counts accepted votes by target kind and direction.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_votes_cast_total",
		Help: "Total number of votes cast by target and direction",
	}, []string{"target", "direction"})

	// BadgesAwarded counts badges newly added to profiles.
	BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_badges_awarded_total",
		Help: "Total number of badges awarded by badge id",
	}, []string{"badge"})

	// ModerationFlags counts content flagged by the scanner.
	ModerationFlags = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_moderation_flags_total",
		Help: "Total number of submissions flagged for review",
	}, []string{"target"})

	// GenAIRequests counts generative text calls by feature and outcome.
	GenAIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_genai_requests_total",
		Help: "Total generative text requests by feature and outcome",
	}, []string{"feature", "outcome"})

	// StoreOperationLatency records document store latency by driver and operation.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hearth_docstore_latency_seconds",
		Help:    "Document store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation"})

	// StoreConflicts counts optimistic write conflicts that forced a retry.
	StoreConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_docstore_conflicts_total",
		Help: "Total number of optimistic concurrency conflicts by driver",
	}, []string{"driver"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hearth_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearth_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackStoreOperation returns a function that records latency when called (e.g. defer).
func TrackStoreOperation(driver, operation string) func() {
	start := time.Now()
	return func() {
		StoreOperationLatency.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	}
}
