// Package patterns detects behavioral and statistical trading patterns over a
// window of trades.
//
// Each detector is a pure function of an anchor trade (normally the newest
// trade) and the window it belongs to. Repeated detections of the same type are
// throttled by a cooldown whose state the caller owns: it is passed in, never
// mutated, and an updated copy is returned.
package patterns

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/models"
)

// CooldownState records when each pattern type was last emitted
type CooldownState map[models.PatternType]time.Time

// Copy returns an independent copy of the state. A nil state copies to an
// empty, non-nil map.
func (s CooldownState) Copy() CooldownState {
	out := make(CooldownState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// result is what a single detector reports about the anchor/window pair
type result struct {
	detected    bool
	affected    []models.Trade
	metadata    map[string]interface{}
	suggestions []string
}

type detectFunc func(d *Detector, anchor *models.Trade, window []models.Trade) result

// detectorRule binds a pattern type to its detector and its fixed
// severity/confidence
type detectorRule struct {
	patternType models.PatternType
	severity    int
	confidence  float64
	detect      detectFunc
}

var detectors = []detectorRule{
	{models.PatternRevengeTrading, 8, 0.75, detectRevengeTrading},
	{models.PatternOvertrading, 6, 0.70, detectOvertrading},
	{models.PatternMondaySyndrome, 6, 0.75, detectMondaySyndrome},
	{models.PatternFridayCarelessness, 5, 0.70, detectFridayCarelessness},
	{models.PatternNewsTrading, 7, 0.65, detectNewsTrading},
	{models.PatternStrategyDegradation, 7, 0.80, detectStrategyDegradation},
	{models.PatternStyleDrift, 4, 0.70, detectStyleDrift},
	{models.PatternTilt, 8, 0.70, detectTilt},
	{models.PatternLossAversion, 5, 0.65, detectLossAversion},
	{models.PatternPositionSizingError, 7, 0.75, detectPositionSizingError},
	{models.PatternPlanDeviation, 6, 0.80, detectPlanDeviation},
}

// Detector runs every registered detector against a trade window
type Detector struct {
	cfg   Config
	prefs models.Preferences
	now   func() time.Time
}

// NewDetector creates a detector. A nil clock means time.Now.
func NewDetector(cfg Config, prefs models.Preferences, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{cfg: cfg, prefs: prefs, now: now}
}

// DetectAll evaluates the whole history with the newest trade as anchor
func (d *Detector) DetectAll(trades []models.Trade, state CooldownState) ([]models.DetectedPattern, CooldownState) {
	window := analytics.SortChronological(trades)
	if len(window) == 0 {
		return nil, state.Copy()
	}
	anchor := window[len(window)-1]
	return d.run(&anchor, window, state)
}

// DetectIncremental evaluates newTrade as anchor against the recent window.
// The new trade is appended when the window does not already contain it.
func (d *Detector) DetectIncremental(newTrade models.Trade, window []models.Trade, state CooldownState) ([]models.DetectedPattern, CooldownState) {
	combined := make([]models.Trade, 0, len(window)+1)
	found := false
	for i := range window {
		if window[i].ID == newTrade.ID {
			found = true
		}
		combined = append(combined, window[i])
	}
	if !found {
		combined = append(combined, newTrade)
	}

	sorted := analytics.SortChronological(combined)
	return d.run(&newTrade, sorted, state)
}

func (d *Detector) run(anchor *models.Trade, window []models.Trade, state CooldownState) ([]models.DetectedPattern, CooldownState) {
	next := state.Copy()
	now := d.now().UTC()

	var found []models.DetectedPattern
	for _, rule := range detectors {
		res := rule.detect(d, anchor, window)
		if !res.detected {
			continue
		}
		if last, ok := next[rule.patternType]; ok && now.Sub(last) < d.cfg.Cooldown {
			continue
		}
		next[rule.patternType] = now
		found = append(found, newPattern(anchor.UserID, anchor.ProfileID, rule, res, now))
	}
	return found, next
}

func newPattern(userID, profileID uuid.UUID, rule detectorRule, res result, now time.Time) models.DetectedPattern {
	ids := make([]uuid.UUID, len(res.affected))
	cost := 0.0
	for i := range res.affected {
		ids[i] = res.affected[i].ID
		if res.affected[i].IsLoss() {
			cost += math.Abs(res.affected[i].PnL)
		}
	}

	metadata := res.metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return models.DetectedPattern{
		ID:             uuid.New(),
		UserID:         userID,
		ProfileID:      profileID,
		Type:           rule.patternType,
		Severity:       rule.severity,
		Confidence:     rule.confidence,
		EstimatedCost:  round2(cost),
		TradesAffected: ids,
		Metadata:       metadata,
		Suggestions:    res.suggestions,
		DetectedAt:     now,
	}
}

// Severity returns the fixed severity of a detected pattern type, 0 for types
// without a detector
func Severity(t models.PatternType) int {
	for _, rule := range detectors {
		if rule.patternType == t {
			return rule.severity
		}
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent converts a fraction to percentage points rounded to one decimal
func percent(fraction float64) float64 {
	return math.Round(fraction*1000) / 10
}

// reaches reports whether a win-rate gap meets threshold once both are
// rounded to percentage points
func reaches(gap, threshold float64) bool {
	return percent(gap) >= percent(threshold)
}

func winRate(trades []models.Trade) float64 {
	return analytics.WinRate(trades)
}

func avgPnL(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := 0.0
	for i := range trades {
		sum += trades[i].PnL
	}
	return sum / float64(len(trades))
}

// lastN returns the trailing n trades of an ascending window
func lastN(window []models.Trade, n int) []models.Trade {
	if n <= 0 || len(window) <= n {
		return window
	}
	return window[len(window)-n:]
}

// anchorIndex locates the anchor inside the window, -1 when absent
func anchorIndex(anchor *models.Trade, window []models.Trade) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].ID == anchor.ID {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
