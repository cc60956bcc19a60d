package engine

import (
	"sort"
	"time"

	"github.com/yourusername/trade-journal/internal/models"
)

// ContextRiskScore folds drawdown, consistency and the active patterns into a
// 0-100 score:
//
//	clamp((50 + maxDrawdownPercent*100 - consistency*0.2 + 2*sum(severity)) * maxMultiplier, 0, 100)
//
// maxMultiplier is the largest interaction multiplier, 1 when none apply.
func ContextRiskScore(m *models.Metrics, active []models.DetectedPattern, interactions []models.PatternInteraction) float64 {
	base := 50.0
	if m != nil {
		base += m.MaxDrawdownPercent*100 - m.ConsistencyScore*0.2
	}
	for i := range active {
		base += 2 * float64(active[i].Severity)
	}

	multiplier := 1.0
	for i := range interactions {
		if interactions[i].RiskMultiplier > multiplier {
			multiplier = interactions[i].RiskMultiplier
		}
	}

	return models.Clamp(base*multiplier, 0, 100)
}

// RiskLevel buckets a risk score for display
func RiskLevel(score float64) string {
	switch {
	case score >= 80:
		return "critical"
	case score >= 60:
		return "high"
	case score >= 30:
		return "moderate"
	default:
		return "low"
	}
}

// SeverityLabel buckets a 1-10 pattern severity
func SeverityLabel(severity int) string {
	switch {
	case severity >= 8:
		return "critical"
	case severity >= 6:
		return "high"
	case severity >= 4:
		return "medium"
	default:
		return "low"
	}
}

// mergeActive keeps the newest detection per type among carried and found,
// dropping detections older than since. Output is ordered by severity, then
// detection time, newest first.
func mergeActive(carried, found []models.DetectedPattern, since time.Time) []models.DetectedPattern {
	newest := make(map[models.PatternType]models.DetectedPattern)
	consider := func(p models.DetectedPattern) {
		if p.DetectedAt.Before(since) {
			return
		}
		if cur, ok := newest[p.Type]; !ok || p.DetectedAt.After(cur.DetectedAt) {
			newest[p.Type] = p
		}
	}
	for _, p := range carried {
		consider(p)
	}
	for _, p := range found {
		consider(p)
	}

	out := make([]models.DetectedPattern, 0, len(newest))
	for _, p := range newest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return out[i].Type < out[j].Type
	})
	return out
}
