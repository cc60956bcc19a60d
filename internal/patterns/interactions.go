package patterns

import (
	"github.com/yourusername/trade-journal/internal/models"
)

type interactionRule struct {
	first, second    models.PatternType
	combinedSeverity int
	riskMultiplier   float64
	description      string
	recommendation   string
}

var interactionRules = []interactionRule{
	{
		models.PatternRevengeTrading, models.PatternOvertrading, 9, 1.8,
		"Revenge trades are feeding a high trade count",
		"Stop for the day after two consecutive losses",
	},
	{
		models.PatternMondaySyndrome, models.PatternFridayCarelessness, 6, 1.3,
		"Performance drops at both ends of the trading week",
		"Trade reduced size on Mondays and Friday afternoons",
	},
	{
		models.PatternNewsTrading, models.PatternPositionSizingError, 8, 1.6,
		"Oversized positions are being opened into news releases",
		"Halve position size on any trade within a news window",
	},
	{
		models.PatternTilt, models.PatternRevengeTrading, 10, 2.0,
		"A losing streak is escalating into revenge trading",
		"End the session now and review before the next one",
	},
	{
		models.PatternStrategyDegradation, models.PatternStyleDrift, 6, 1.4,
		"A fading strategy coincides with drifting away from the preferred style",
		"Return to the preferred style and re-validate the strategy",
	},
	{
		models.PatternPlanDeviation, models.PatternOvertrading, 7, 1.5,
		"Trades outside the plan are inflating the trade count",
		"Only take trades that pass the written checklist",
	},
}

// DetectInteractions reports every rule whose two pattern types are both
// present. Pairs without a rule produce nothing.
func (d *Detector) DetectInteractions(found []models.DetectedPattern) []models.PatternInteraction {
	present := make(map[models.PatternType]bool, len(found))
	for i := range found {
		present[found[i].Type] = true
	}

	now := d.now().UTC()
	var out []models.PatternInteraction
	for _, rule := range interactionRules {
		if !present[rule.first] || !present[rule.second] {
			continue
		}
		out = append(out, models.PatternInteraction{
			Patterns:         []models.PatternType{rule.first, rule.second},
			CombinedSeverity: rule.combinedSeverity,
			RiskMultiplier:   rule.riskMultiplier,
			Description:      rule.description,
			Recommendation:   rule.recommendation,
			DetectedAt:       now,
		})
	}
	return out
}
