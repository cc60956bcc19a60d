package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TradeSide represents the direction of a position
type TradeSide string

const (
	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
)

// Trade represents a single closed journal entry. Trades are read-only to the
// analytics packages; every computation works on copies or derived values.
type Trade struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required"`
	UserID    uuid.UUID `db:"user_id" json:"user_id" validate:"required"`
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`

	Symbol string    `db:"symbol" json:"symbol" validate:"required"`
	Side   TradeSide `db:"side" json:"side" validate:"omitempty,oneof=long short"`

	EntryPrice      float64    `db:"entry_price" json:"entry_price"`
	ExitPrice       float64    `db:"exit_price" json:"exit_price"`
	Quantity        float64    `db:"quantity" json:"quantity"`
	EntryTime       time.Time  `db:"entry_time" json:"entry_time"`
	ExitTime        *time.Time `db:"exit_time" json:"exit_time,omitempty"`
	DurationMinutes *float64   `db:"duration_minutes" json:"duration_minutes,omitempty"`

	PnL           float64 `db:"pnl" json:"pnl"`
	PnLPercentage float64 `db:"pnl_percentage" json:"pnl_percentage"`
	GrossPnL      float64 `db:"gross_pnl" json:"gross_pnl"`
	Commission    float64 `db:"commission" json:"commission"`

	StopLoss        *float64 `db:"stop_loss" json:"stop_loss,omitempty"`
	Target          *float64 `db:"target" json:"target,omitempty"`
	InitialRisk     *float64 `db:"initial_risk" json:"initial_risk,omitempty"`
	RiskRewardRatio *float64 `db:"risk_reward_ratio" json:"risk_reward_ratio,omitempty"`

	Slippage  *float64 `db:"slippage" json:"slippage,omitempty"`
	EntryType string   `db:"entry_type" json:"entry_type,omitempty"`
	ExitType  string   `db:"exit_type" json:"exit_type,omitempty"`

	EmotionBefore string   `db:"emotion_before" json:"emotion_before,omitempty"`
	EmotionAfter  string   `db:"emotion_after" json:"emotion_after,omitempty"`
	RuleFollowed  *bool    `db:"rule_followed" json:"rule_followed,omitempty"`
	Notes         string   `db:"notes" json:"notes,omitempty"`
	Tags          []string `db:"tags" json:"tags,omitempty"`

	Strategy  string `db:"strategy" json:"strategy,omitempty"`
	Setup     string `db:"setup" json:"setup,omitempty"`
	Timeframe string `db:"timeframe" json:"timeframe,omitempty"`
	Grade     string `db:"grade" json:"grade,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsWin reports whether the trade closed with a profit
func (t *Trade) IsWin() bool {
	return t.PnL > 0
}

// IsLoss reports whether the trade closed with a loss
func (t *Trade) IsLoss() bool {
	return t.PnL < 0
}

// IsBreakEven reports whether the trade closed flat
func (t *Trade) IsBreakEven() bool {
	return t.PnL == 0
}

// ClosedAt returns the exit time when known, otherwise the entry time.
// The zero time means the trade carries no usable timestamp.
func (t *Trade) ClosedAt() time.Time {
	if t.ExitTime != nil && !t.ExitTime.IsZero() {
		return *t.ExitTime
	}
	return t.EntryTime
}

// HasTimestamp reports whether the trade can take part in time-bucketed analysis
func (t *Trade) HasTimestamp() bool {
	return !t.EntryTime.IsZero()
}

// HoldMinutes returns the holding time in minutes and whether it is known
func (t *Trade) HoldMinutes() (float64, bool) {
	if t.DurationMinutes != nil && *t.DurationMinutes >= 0 {
		return *t.DurationMinutes, true
	}
	if t.ExitTime != nil && !t.ExitTime.IsZero() && !t.EntryTime.IsZero() {
		d := t.ExitTime.Sub(t.EntryTime).Minutes()
		if d >= 0 {
			return d, true
		}
	}
	return 0, false
}

// Notional returns the absolute position value at entry
func (t *Trade) Notional() float64 {
	return math.Abs(t.EntryPrice * t.Quantity)
}

// HasStopLoss reports whether a protective stop was recorded
func (t *Trade) HasStopLoss() bool {
	return t.StopLoss != nil && *t.StopLoss > 0
}

// HasTag reports whether the trade carries the given tag
func (t *Trade) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
