package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event Pipeline Metrics
var (
	// EventsTotal tracks inbound events by outcome
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmabot_events_total",
			Help: "Inbound events by outcome (ignored/duplicate/karma/reload/no_tokens/error)",
		},
		[]string{"outcome"},
	)

	// TokensTotal tracks karma tokens by result
	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmabot_tokens_total",
			Help: "Karma tokens processed by result (applied/self/empty/resolve_error/store_error/post_error)",
		},
		[]string{"result"},
	)

	// EventProcessingDuration tracks end-to-end event dispatch latency
	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "karmabot_event_processing_duration_seconds",
			Help:    "Event dispatch duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// DirectoryReloadsTotal tracks directory reloads by result
	DirectoryReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karmabot_directory_reloads_total",
			Help: "Directory reloads by result (success/error)",
		},
		[]string{"result"},
	)

	// DirectoryIdentitiesUpserted tracks identities written during reloads
	DirectoryIdentitiesUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "karmabot_directory_identities_upserted_total",
			Help: "Total identity records written during directory reloads",
		},
	)
)

// Slack API Metrics
var (
	// SlackAPICallsTotal tracks outbound Slack Web API calls by method and status
	SlackAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slack_api_calls_total",
			Help: "Outbound Slack Web API calls by method and status",
		},
		[]string{"method", "status"},
	)

	// SlackAPICallDuration tracks Slack Web API call latency
	SlackAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slack_api_call_duration_seconds",
			Help:    "Slack Web API call duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// SlackSignatureFailures tracks rejected webhook deliveries
	SlackSignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slack_signature_failures_total",
			Help: "Webhook deliveries rejected by signature verification",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Redis Operations Metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
