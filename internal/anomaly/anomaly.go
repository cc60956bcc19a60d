// Package anomaly flags trades whose P&L is a statistical outlier against the
// trader's own history.
package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/models"
)

// Threshold is the absolute z-score at which a trade is reported
const Threshold = 3.0

// Detector produces one insight per outlier trade
type Detector struct {
	now func() time.Time
}

// NewDetector creates a detector. A nil clock means time.Now.
func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{now: now}
}

// Baseline is the P&L distribution outliers are measured against
type Baseline struct {
	Mean   float64
	StdDev float64
}

// NewBaseline computes the mean and a standard deviation floored at 1
func NewBaseline(trades []models.Trade) Baseline {
	mean, sd := analytics.MeanStdDev(analytics.PnLValues(trades))
	return Baseline{Mean: mean, StdDev: math.Max(sd, 1)}
}

// ZScore measures pnl against the baseline
func (b Baseline) ZScore(pnl float64) float64 {
	return (pnl - b.Mean) / b.StdDev
}

// Detect scans every trade independently. The metrics argument is accepted
// for symmetry with the other detectors and may be nil.
func (d *Detector) Detect(trades []models.Trade, _ *models.Metrics) []models.Insight {
	if len(trades) == 0 {
		return nil
	}
	base := NewBaseline(trades)

	var out []models.Insight
	for i := range trades {
		if insight, ok := d.Check(trades[i], base); ok {
			out = append(out, insight)
		}
	}
	return out
}

// Check evaluates a single trade against a precomputed baseline
func (d *Detector) Check(t models.Trade, base Baseline) (models.Insight, bool) {
	z := base.ZScore(t.PnL)
	if math.Abs(z) < Threshold {
		return models.Insight{}, false
	}

	severity := models.SeverityInfo
	title := fmt.Sprintf("Unusually large win on %s", t.Symbol)
	message := fmt.Sprintf(
		"This %s trade made %.2f, %.1f standard deviations above your average of %.2f. Review what went right so it can be repeated.",
		t.Symbol, t.PnL, z, base.Mean)
	if t.PnL < 0 {
		severity = models.SeverityCritical
		title = fmt.Sprintf("Unusually large loss on %s", t.Symbol)
		message = fmt.Sprintf(
			"This %s trade lost %.2f, %.1f standard deviations below your average of %.2f. Check whether the stop-loss was honored.",
			t.Symbol, math.Abs(t.PnL), math.Abs(z), base.Mean)
	}

	return models.Insight{
		ID:          uuid.New(),
		UserID:      t.UserID,
		ProfileID:   t.ProfileID,
		Category:    models.CategoryAnomaly,
		Severity:    severity,
		Priority:    models.PriorityForSeverity(severity),
		Title:       title,
		Message:     message,
		Confidence:  math.Min(0.99, 0.5+math.Abs(z)/10),
		ImpactScore: math.Min(10, math.Abs(z)*2),
		Actions: []models.SuggestedAction{
			{Label: "Review trade", Action: "review_trade"},
		},
		TradeIDs: []uuid.UUID{t.ID},
		Metadata: map[string]interface{}{
			"z_score": math.Round(z*100) / 100,
			"pnl":     t.PnL,
			"mean":    math.Round(base.Mean*100) / 100,
			"std_dev": math.Round(base.StdDev*100) / 100,
		},
		CreatedAt: d.now().UTC(),
	}, true
}
