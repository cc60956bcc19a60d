package patterns

import (
	"time"

	"github.com/yourusername/trade-journal/internal/models"
)

// newsWindow is a daily clock range in minutes since midnight, [start, end)
type newsWindow struct {
	label      string
	start, end int
}

// News windows are read on the trade's own clock, not normalized to a zone
var newsWindows = []newsWindow{
	{"14:00-14:30", 14 * 60, 14*60 + 30},
	{"18:00-19:00", 18 * 60, 19 * 60},
	{"20:00-21:00", 20 * 60, 21 * 60},
}

func isWeekday(day time.Weekday) bool {
	return day >= time.Monday && day <= time.Friday
}

func detectMondaySyndrome(d *Detector, _ *models.Trade, window []models.Trade) result {
	var monday, others []models.Trade
	for i := range window {
		t := window[i]
		if !t.HasTimestamp() {
			continue
		}
		switch day := t.EntryTime.Weekday(); {
		case day == time.Monday:
			monday = append(monday, t)
		case isWeekday(day):
			others = append(others, t)
		}
	}

	if len(monday) < d.cfg.MondayMinTrades || len(others) < d.cfg.OtherDayMinTrades {
		return result{}
	}

	mondayRate := winRate(monday)
	otherRate := winRate(others)
	gap := otherRate - mondayRate
	if !reaches(gap, d.cfg.MondayWinRateGap) {
		return result{}
	}

	return result{
		detected: true,
		affected: monday,
		metadata: map[string]interface{}{
			"monday_win_rate": percent(mondayRate),
			"other_win_rate":  percent(otherRate),
			"difference":      percent(gap),
			"monday_trades":   len(monday),
		},
		suggestions: []string{
			"Reduce position size on Mondays until the win rate recovers",
			"Spend Monday morning reviewing the weekly plan before the first entry",
			"Consider skipping the first hour of the week",
		},
	}
}

func detectFridayCarelessness(d *Detector, _ *models.Trade, window []models.Trade) result {
	var friday, afternoon, others []models.Trade
	for i := range window {
		t := window[i]
		if !t.HasTimestamp() {
			continue
		}
		switch day := t.EntryTime.Weekday(); {
		case day == time.Friday:
			friday = append(friday, t)
			if t.EntryTime.Hour() >= d.cfg.FridayAfternoonHour {
				afternoon = append(afternoon, t)
			}
		case isWeekday(day):
			others = append(others, t)
		}
	}

	if len(friday) < d.cfg.FridayMinTrades ||
		len(afternoon) < d.cfg.FridayMinAfternoon ||
		len(others) < d.cfg.OtherDayMinTrades {
		return result{}
	}

	afternoonRate := winRate(afternoon)
	otherRate := winRate(others)
	gap := otherRate - afternoonRate
	if !reaches(gap, d.cfg.FridayWinRateGap) {
		return result{}
	}

	return result{
		detected: true,
		affected: afternoon,
		metadata: map[string]interface{}{
			"friday_afternoon_win_rate": percent(afternoonRate),
			"other_win_rate":            percent(otherRate),
			"difference":                percent(gap),
			"friday_trades":             len(friday),
			"afternoon_trades":          len(afternoon),
		},
		suggestions: []string{
			"Stop opening new positions on Friday afternoons",
			"Set a hard weekly stop time and log off when it is reached",
		},
	}
}

func detectNewsTrading(d *Detector, anchor *models.Trade, _ []models.Trade) result {
	if !anchor.HasTimestamp() {
		return result{}
	}

	minute := anchor.EntryTime.Hour()*60 + anchor.EntryTime.Minute()
	var hit *newsWindow
	for i := range newsWindows {
		if minute >= newsWindows[i].start && minute < newsWindows[i].end {
			hit = &newsWindows[i]
			break
		}
	}
	if hit == nil {
		return result{}
	}

	hold, known := anchor.HoldMinutes()
	short := known && hold < d.cfg.NewsMaxDuration.Minutes()
	noStop := !anchor.HasStopLoss()
	if !short && !noStop {
		return result{}
	}

	metadata := map[string]interface{}{
		"window":        hit.label,
		"entry_time":    anchor.EntryTime.Format("15:04"),
		"has_stop_loss": !noStop,
	}
	if known {
		metadata["duration_minutes"] = round2(hold)
	}

	return result{
		detected: true,
		affected: []models.Trade{*anchor},
		metadata: metadata,
		suggestions: []string{
			"Check the economic calendar before entering around scheduled releases",
			"Always place a stop-loss when trading through news",
			"Wait for the first volatility spike to settle before entering",
		},
	}
}
