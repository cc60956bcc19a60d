// Package insights turns detected patterns and feature statistics into
// user-facing insights.
package insights

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/models"
)

const urgentPatternSeverity = 9

// Context carries the history a pattern insight is rendered against
type Context struct {
	// History holds earlier detections; their costs accumulate per type.
	History []models.DetectedPattern
}

// HistoricalCost sums the estimated cost of earlier detections of t,
// skipping the detection identified by exclude
func (c Context) HistoricalCost(t models.PatternType, exclude uuid.UUID) float64 {
	total := 0.0
	for i := range c.History {
		if c.History[i].Type == t && c.History[i].ID != exclude {
			total += c.History[i].EstimatedCost
		}
	}
	return total
}

// Generator builds insights. All output is a deterministic function of the
// input apart from ids and timestamps.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator. A nil clock means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// FromPattern renders the template of the pattern's type
func (g *Generator) FromPattern(p models.DetectedPattern, ctx Context) models.Insight {
	tmpl, ok := templates[p.Type]
	if !ok {
		tmpl = fallbackTemplate
	}

	values := make(map[string]interface{}, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		values[k] = v
	}
	values["historical_cost"] = ctx.HistoricalCost(p.Type, p.ID) + p.EstimatedCost
	values["pattern_type"] = string(p.Type)

	severity := escalate(tmpl.severity, p.Severity)
	priority := models.PriorityForSeverity(severity)
	if p.Severity >= urgentPatternSeverity {
		priority = models.PriorityUrgent
	}

	patternID := p.ID
	actions := append([]models.SuggestedAction(nil), tmpl.actions...)

	return models.Insight{
		ID:          uuid.New(),
		UserID:      p.UserID,
		ProfileID:   p.ProfileID,
		Category:    tmpl.category,
		Severity:    severity,
		Priority:    priority,
		Title:       Interpolate(tmpl.title, values),
		Message:     Interpolate(tmpl.message, values),
		Confidence:  p.Confidence,
		ImpactScore: float64(p.Severity),
		Actions:     actions,
		PatternID:   &patternID,
		PatternType: p.Type,
		TradeIDs:    append([]uuid.UUID(nil), p.TradesAffected...),
		Metadata:    values,
		CreatedAt:   g.now().UTC(),
	}
}

// escalate raises a template severity by the pattern's own ordinal:
// critical from 8, at least warning from 5
func escalate(base models.InsightSeverity, patternSeverity int) models.InsightSeverity {
	switch {
	case patternSeverity >= 8:
		return models.SeverityCritical
	case patternSeverity >= 5 && base.Rank() < models.SeverityWarning.Rank():
		return models.SeverityWarning
	default:
		return base
	}
}

func (g *Generator) newInsight(userID, profileID uuid.UUID, category models.InsightCategory, severity models.InsightSeverity) models.Insight {
	return models.Insight{
		ID:        uuid.New(),
		UserID:    userID,
		ProfileID: profileID,
		Category:  category,
		Severity:  severity,
		Priority:  models.PriorityForSeverity(severity),
		CreatedAt: g.now().UTC(),
	}
}
