package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// EngineLogger provides dedicated logging for the intelligence engine.
type EngineLogger struct {
	*logrus.Entry
}

// NewEngineLogger creates a new engine logger.
func NewEngineLogger(baseLogger *logrus.Logger) *EngineLogger {
	return &EngineLogger{
		Entry: baseLogger.WithField("component", "engine"),
	}
}

// LogContextBuilt logs a full context rebuild.
func (el *EngineLogger) LogContextBuilt(userID string, trades, patterns, insights int, duration time.Duration) {
	el.WithFields(logrus.Fields{
		"user_id":     userID,
		"trades":      trades,
		"patterns":    patterns,
		"insights":    insights,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}).Info("User context built")
}

// LogIncrementalUpdate logs a context update driven by a single new trade.
func (el *EngineLogger) LogIncrementalUpdate(userID, tradeID string, newPatterns int, duration time.Duration) {
	el.WithFields(logrus.Fields{
		"user_id":      userID,
		"trade_id":     tradeID,
		"new_patterns": newPatterns,
		"duration_ms":  float64(duration.Microseconds()) / 1000,
	}).Info("User context updated incrementally")
}

// LogPatternDetected logs a newly detected behavioral pattern.
func (el *EngineLogger) LogPatternDetected(userID, patternType string, severity string, confidence, cost float64) {
	el.WithFields(logrus.Fields{
		"user_id":      userID,
		"pattern_type": patternType,
		"severity":     severity,
		"confidence":   confidence,
		"cost":         cost,
	}).Info("Pattern detected")
}

// LogPrediction logs a trade outcome prediction.
func (el *EngineLogger) LogPrediction(userID, symbol, recommendation string, winProbability, riskScore float64) {
	el.WithFields(logrus.Fields{
		"user_id":         userID,
		"symbol":          symbol,
		"recommendation":  recommendation,
		"win_probability": winProbability,
		"risk_score":      riskScore,
	}).Debug("Trade prediction generated")
}

// LogCoachFallback logs the coach answering from rules after the LLM failed.
func (el *EngineLogger) LogCoachFallback(userID, topic string, err error) {
	el.WithFields(logrus.Fields{
		"user_id": userID,
		"topic":   topic,
	}).WithError(err).Warn("Coach fell back to rule-based answer")
}

// LogContextInvalidated logs removal of a cached context.
func (el *EngineLogger) LogContextInvalidated(userID, reason string) {
	el.WithFields(logrus.Fields{
		"user_id": userID,
		"reason":  reason,
	}).Debug("User context invalidated")
}
