package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTradeRecorded logs a trade entering the journal.
func (al *AuditLogger) LogTradeRecorded(tradeID, userID, symbol, side string, pnl float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"trade_id":  tradeID,
		"user_id":   userID,
		"symbol":    symbol,
		"side":      side,
		"pnl":       pnl,
		"timestamp": timestamp.Unix(),
	}).Info("Trade recorded")
}

// LogPreferencesChanged logs a change to a user's trading preferences.
func (al *AuditLogger) LogPreferencesChanged(userID, field string, oldValue, newValue interface{}) {
	al.WithFields(logrus.Fields{
		"user_id":   userID,
		"field":     field,
		"old_value": oldValue,
		"new_value": newValue,
	}).Info("Preferences changed")
}

// LogCriticalPattern logs a critical pattern surfaced to a user.
func (al *AuditLogger) LogCriticalPattern(userID, patternType string, affectedTrades int, cost float64) {
	al.WithFields(logrus.Fields{
		"user_id":         userID,
		"pattern_type":    patternType,
		"affected_trades": affectedTrades,
		"cost":            cost,
	}).Warn("Critical pattern surfaced")
}

// LogPersistenceFailure logs a pattern or insight write the sink rejected.
// The engine keeps serving from memory.
func (al *AuditLogger) LogPersistenceFailure(userID, kind string, records int, err error) {
	al.WithError(err).WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    kind,
		"records": records,
	}).Error("Failed to persist")
}
