// Package metrics provides centralized Prometheus metrics registry for the trade journal.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trade_journal"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TradesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_processed_total",
		Help:      "Total number of trades processed incrementally",
	})
	PatternsDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patterns_detected_total",
		Help:      "Total number of behavioral patterns detected",
	}, []string{"pattern_type", "severity"})
	InsightsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insights_generated_total",
		Help:      "Total number of insights generated",
	}, []string{"category"})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of trade predictions by recommendation",
	}, []string{"recommendation"})
	CoachResponsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coach_responses_total",
		Help:      "Total number of coach responses by source",
	}, []string{"source"})
	ContextCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "context_cache_total",
		Help:      "Context cache lookups by result",
	}, []string{"result"})
	PersistenceFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Failed writes to the pattern and insight sink",
	}, []string{"kind"})
)

// Gauge metrics
var (
	CachedContexts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cached_contexts",
		Help:      "Number of user contexts currently cached",
	})
	UserRiskScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "user_risk_score",
		Help:      "Latest composite risk score per user",
	}, []string{"user_id"})
)

// Histogram metrics
var (
	ContextBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "context_build_duration_seconds",
		Help:      "Duration of full context builds in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	IncrementalUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "incremental_update_duration_seconds",
		Help:      "Duration of incremental context updates in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(TradesProcessedTotal)
		registry.MustRegister(PatternsDetectedTotal)
		registry.MustRegister(InsightsGeneratedTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(CoachResponsesTotal)
		registry.MustRegister(ContextCacheTotal)
		registry.MustRegister(PersistenceFailuresTotal)

		registry.MustRegister(CachedContexts)
		registry.MustRegister(UserRiskScore)

		registry.MustRegister(ContextBuildDuration)
		registry.MustRegister(IncrementalUpdateDuration)
		registry.MustRegister(HTTPRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordContextBuild records a full context build.
func RecordContextBuild(durationSeconds float64) {
	ContextBuildDuration.Observe(durationSeconds)
}

// RecordIncrementalUpdate records a single-trade context update.
func RecordIncrementalUpdate(durationSeconds float64) {
	TradesProcessedTotal.Inc()
	IncrementalUpdateDuration.Observe(durationSeconds)
}

// RecordPattern records a detected pattern.
func RecordPattern(patternType, severity string) {
	PatternsDetectedTotal.WithLabelValues(patternType, severity).Inc()
}

// RecordInsight records a generated insight.
func RecordInsight(category string) {
	InsightsGeneratedTotal.WithLabelValues(category).Inc()
}

// RecordPrediction records a prediction outcome.
func RecordPrediction(recommendation string) {
	PredictionsTotal.WithLabelValues(recommendation).Inc()
}

// RecordCoachResponse records which source answered a coach question.
func RecordCoachResponse(source string) {
	CoachResponsesTotal.WithLabelValues(source).Inc()
}

// RecordCacheHit records a context cache hit.
func RecordCacheHit() {
	ContextCacheTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a context cache miss.
func RecordCacheMiss() {
	ContextCacheTotal.WithLabelValues("miss").Inc()
}

// RecordPersistenceFailure records a dropped pattern or insight write.
func RecordPersistenceFailure(kind string) {
	PersistenceFailuresTotal.WithLabelValues(kind).Inc()
}

// UpdateCachedContexts updates the cached contexts gauge.
func UpdateCachedContexts(count int) {
	CachedContexts.Set(float64(count))
}

// UpdateRiskScore updates the risk score gauge for a user.
func UpdateRiskScore(userID string, score float64) {
	UserRiskScore.WithLabelValues(userID).Set(score)
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	HTTPRequestDuration.WithLabelValues(route, method, status).Observe(durationSeconds)
}
