package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPattern(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PatternsDetectedTotal.WithLabelValues("tilt", "critical"))

	RecordPattern("tilt", "critical")
	RecordPattern("tilt", "critical")

	after := testutil.ToFloat64(PatternsDetectedTotal.WithLabelValues("tilt", "critical"))
	assert.Equal(t, before+2, after)
}

func TestRecordIncrementalUpdate(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(TradesProcessedTotal)

	RecordIncrementalUpdate(0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(TradesProcessedTotal))
}

func TestCacheCounters(t *testing.T) {
	InitRegistry()
	hits := testutil.ToFloat64(ContextCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(ContextCacheTotal.WithLabelValues("miss"))

	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheMiss()

	assert.Equal(t, hits+1, testutil.ToFloat64(ContextCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(ContextCacheTotal.WithLabelValues("miss")))
}

func TestGauges(t *testing.T) {
	tests := []struct {
		name  string
		score float64
	}{
		{name: "low risk", score: 12.5},
		{name: "zero", score: 0},
		{name: "max", score: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateRiskScore("user-1", tt.score)
			assert.Equal(t, tt.score, testutil.ToFloat64(UserRiskScore.WithLabelValues("user-1")))
		})
	}

	UpdateCachedContexts(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(CachedContexts))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordPrediction("take")
	RecordCoachResponse("rules")
	RecordInsight("risk")
	RecordContextBuild(0.01)
	RecordHTTPRequest("/health", http.MethodGet, "200", 0.001)

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "trade_journal_predictions_total")
	assert.Contains(t, string(body), "trade_journal_coach_responses_total")
	assert.Contains(t, string(body), "trade_journal_context_build_duration_seconds")
}

func TestRecordPersistenceFailure(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PersistenceFailuresTotal.WithLabelValues("insight"))

	RecordPersistenceFailure("insight")

	assert.Equal(t, before+1, testutil.ToFloat64(PersistenceFailuresTotal.WithLabelValues("insight")))
}
