package patterns

import (
	"time"

	"github.com/yourusername/trade-journal/internal/config"
)

// Config holds every detector threshold. Win-rate gaps are fractions, so
// 0.15 means fifteen percentage points.
type Config struct {
	Cooldown time.Duration

	MondayMinTrades     int
	OtherDayMinTrades   int
	MondayWinRateGap    float64
	FridayMinTrades     int
	FridayMinAfternoon  int
	FridayAfternoonHour int
	FridayWinRateGap    float64

	NewsMaxDuration time.Duration

	DegradationMinTrades   int
	DegradationWinRateDrop float64

	StyleDriftWindow      int
	StyleDriftMinOffStyle int

	RevengeWindow         time.Duration
	RevengeSizeMultiplier float64

	OvertradingMultiplier float64
	OvertradingMinDaily   int
	OvertradingMinDays    int

	TiltMinLosses int
	TiltMaxGap    time.Duration

	LossAversionMinTrades int
	LossAversionHoldRatio float64

	SizingMinTrades  int
	SizingMultiplier float64

	PlanWindow     int
	PlanMinTracked int
	PlanBrokenRate float64
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() Config {
	return Config{
		Cooldown: 24 * time.Hour,

		MondayMinTrades:     10,
		OtherDayMinTrades:   30,
		MondayWinRateGap:    0.15,
		FridayMinTrades:     10,
		FridayMinAfternoon:  5,
		FridayAfternoonHour: 14,
		FridayWinRateGap:    0.20,

		NewsMaxDuration: 10 * time.Minute,

		DegradationMinTrades:   20,
		DegradationWinRateDrop: 0.15,

		StyleDriftWindow:      10,
		StyleDriftMinOffStyle: 3,

		RevengeWindow:         30 * time.Minute,
		RevengeSizeMultiplier: 1.5,

		OvertradingMultiplier: 2,
		OvertradingMinDaily:   10,
		OvertradingMinDays:    5,

		TiltMinLosses: 3,
		TiltMaxGap:    60 * time.Minute,

		LossAversionMinTrades: 20,
		LossAversionHoldRatio: 1.5,

		SizingMinTrades:  10,
		SizingMultiplier: 2,

		PlanWindow:     20,
		PlanMinTracked: 10,
		PlanBrokenRate: 0.30,
	}
}

// FromConfig overlays the configured thresholds on the defaults.
// Zero values keep the default.
func FromConfig(pc config.PatternConfig) Config {
	c := DefaultConfig()

	setDuration(&c.Cooldown, pc.CooldownHours, time.Hour)
	setInt(&c.MondayMinTrades, pc.MondayMinTrades)
	setInt(&c.OtherDayMinTrades, pc.OtherDayMinTrades)
	setFloat(&c.MondayWinRateGap, pc.MondayWinRateGap)
	setInt(&c.FridayMinTrades, pc.FridayMinTrades)
	setInt(&c.FridayMinAfternoon, pc.FridayAfternoonMinTrades)
	setInt(&c.FridayAfternoonHour, pc.FridayAfternoonHour)
	setFloat(&c.FridayWinRateGap, pc.FridayWinRateGap)
	setDuration(&c.NewsMaxDuration, pc.NewsMaxDurationMinutes, time.Minute)
	setInt(&c.DegradationMinTrades, pc.DegradationMinTrades)
	setFloat(&c.DegradationWinRateDrop, pc.DegradationWinRateDrop)
	setInt(&c.StyleDriftWindow, pc.StyleDriftWindow)
	setInt(&c.StyleDriftMinOffStyle, pc.StyleDriftMinOffStyle)
	setDuration(&c.RevengeWindow, pc.RevengeWindowMinutes, time.Minute)
	setFloat(&c.RevengeSizeMultiplier, pc.RevengeSizeMultiplier)
	setFloat(&c.OvertradingMultiplier, pc.OvertradingMultiplier)
	setInt(&c.OvertradingMinDaily, pc.OvertradingMinDaily)
	setInt(&c.OvertradingMinDays, pc.OvertradingMinDays)
	setInt(&c.TiltMinLosses, pc.TiltMinLosses)
	setDuration(&c.TiltMaxGap, pc.TiltMaxGapMinutes, time.Minute)
	setInt(&c.LossAversionMinTrades, pc.LossAversionMinTrades)
	setFloat(&c.LossAversionHoldRatio, pc.LossAversionHoldRatio)
	setInt(&c.SizingMinTrades, pc.SizingMinTrades)
	setFloat(&c.SizingMultiplier, pc.SizingMultiplier)
	setInt(&c.PlanWindow, pc.PlanWindow)
	setInt(&c.PlanMinTracked, pc.PlanMinTracked)
	setFloat(&c.PlanBrokenRate, pc.PlanBrokenRate)

	return c
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v int, unit time.Duration) {
	if v > 0 {
		*dst = time.Duration(v) * unit
	}
}
