// Package analytics computes performance metrics and derived features from
// trade history. Every function here is pure and total: nil or empty input
// yields a zeroed result.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/yourusername/trade-journal/internal/models"
)

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// MeanStdDev returns the mean and population standard deviation of values
func MeanStdDev(values []float64) (float64, float64) {
	return average(values), stddev(values)
}

func downsideStddev(values []float64) float64 {
	sumSq := 0.0
	n := 0
	for _, v := range values {
		if v < 0 {
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// SortChronological returns a copy of trades ordered by close time, oldest
// first. Trades without timestamps keep their relative order at the front.
func SortChronological(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClosedAt().Before(sorted[j].ClosedAt())
	})
	return sorted
}

// PnLValues extracts the P&L of each trade in order
func PnLValues(trades []models.Trade) []float64 {
	values := make([]float64, len(trades))
	for i := range trades {
		values[i] = trades[i].PnL
	}
	return values
}

// DayBucket is the summed P&L of one calendar day
type DayBucket struct {
	Day    time.Time
	PnL    float64
	Trades int
}

// DailyPnL buckets trades by UTC calendar day of their close time.
// Trades without a usable timestamp are skipped.
func DailyPnL(trades []models.Trade) []DayBucket {
	index := make(map[time.Time]*DayBucket)
	for i := range trades {
		closed := trades[i].ClosedAt()
		if closed.IsZero() {
			continue
		}
		day := DayOf(closed)
		bucket, ok := index[day]
		if !ok {
			bucket = &DayBucket{Day: day}
			index[day] = bucket
		}
		bucket.PnL += trades[i].PnL
		bucket.Trades++
	}

	buckets := make([]DayBucket, 0, len(index))
	for _, b := range index {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	return buckets
}

func dailyValues(buckets []DayBucket) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.PnL
	}
	return values
}

// DayOf returns midnight UTC of the calendar day containing t
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func winRateOf(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for i := range trades {
		if trades[i].IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// WinRate returns the fraction of winning trades, 0 for an empty slice
func WinRate(trades []models.Trade) float64 {
	return winRateOf(trades)
}
