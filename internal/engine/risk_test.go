package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/patterns"
)

func TestContextRiskScore(t *testing.T) {
	tests := []struct {
		name         string
		metrics      *models.Metrics
		active       []models.DetectedPattern
		interactions []models.PatternInteraction
		want         float64
	}{
		{
			name: "nil metrics",
			want: 50,
		},
		{
			name:    "drawdown and consistency",
			metrics: &models.Metrics{MaxDrawdownPercent: 0.1, ConsistencyScore: 50},
			want:    50,
		},
		{
			name:    "active severities",
			metrics: &models.Metrics{ConsistencyScore: 100},
			active:  []models.DetectedPattern{{Severity: 8}, {Severity: 5}},
			want:    56,
		},
		{
			name:         "largest interaction multiplier",
			metrics:      &models.Metrics{ConsistencyScore: 100},
			active:       []models.DetectedPattern{{Severity: 5}},
			interactions: []models.PatternInteraction{{RiskMultiplier: 1.2}, {RiskMultiplier: 1.5}},
			want:         60,
		},
		{
			name:    "clamped high",
			metrics: &models.Metrics{MaxDrawdownPercent: 0.9},
			want:    100,
		},
		{
			name:    "clamped low",
			metrics: &models.Metrics{ConsistencyScore: 400},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ContextRiskScore(tt.metrics, tt.active, tt.interactions), 1e-9)
		})
	}
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "low", RiskLevel(10))
	assert.Equal(t, "moderate", RiskLevel(30))
	assert.Equal(t, "high", RiskLevel(65))
	assert.Equal(t, "critical", RiskLevel(80))
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "low", SeverityLabel(2))
	assert.Equal(t, "medium", SeverityLabel(4))
	assert.Equal(t, "high", SeverityLabel(7))
	assert.Equal(t, "critical", SeverityLabel(9))
}

func TestMergeActive(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	since := now.Add(-24 * time.Hour)

	oldTilt := models.DetectedPattern{ID: uuid.New(), Type: models.PatternTilt, Severity: 8, DetectedAt: now.Add(-2 * time.Hour)}
	newTilt := models.DetectedPattern{ID: uuid.New(), Type: models.PatternTilt, Severity: 8, DetectedAt: now}
	expired := models.DetectedPattern{ID: uuid.New(), Type: models.PatternFOMO, Severity: 9, DetectedAt: now.Add(-48 * time.Hour)}
	monday := models.DetectedPattern{ID: uuid.New(), Type: models.PatternMondaySyndrome, Severity: 6, DetectedAt: now.Add(-time.Hour)}

	merged := mergeActive([]models.DetectedPattern{oldTilt, expired, monday}, []models.DetectedPattern{newTilt}, since)

	assert.Len(t, merged, 2)
	assert.Equal(t, newTilt.ID, merged[0].ID)
	assert.Equal(t, monday.ID, merged[1].ID)
}

func TestSeedCooldowns(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	state := patterns.CooldownState{models.PatternTilt: now}
	history := []models.DetectedPattern{
		{Type: models.PatternTilt, DetectedAt: now.Add(-time.Hour)},
		{Type: models.PatternOvertrading, DetectedAt: now.Add(-2 * time.Hour)},
	}

	seeded := seedCooldowns(state, history)

	assert.Equal(t, now, seeded[models.PatternTilt])
	assert.Equal(t, now.Add(-2*time.Hour), seeded[models.PatternOvertrading])
	assert.Len(t, state, 1, "input must not be mutated")
}
