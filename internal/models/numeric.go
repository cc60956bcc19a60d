package models

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseNumber converts a numeric-looking string to float64.
// Empty, malformed and non-finite input yields 0 so that NaN never leaks into
// aggregates.
func ParseNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseOptionalNumber is ParseNumber for nullable columns: blank input is nil
func ParseOptionalNumber(raw *string) *float64 {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	v := ParseNumber(*raw)
	return &v
}

// ParseTimestamp parses ISO-8601 and common database layouts.
// Unparseable input returns the zero time.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SafeDiv divides a by b and returns 0 when b is 0
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
