package models

import (
	"encoding/json"
	"fmt"
)

// MaxRatio is the finite value carried by an unbounded ratio
const MaxRatio = 999.0

// Ratio is a quotient that may be unbounded (positive numerator over a zero
// denominator). It never holds NaN or Inf so it stays JSON-safe.
type Ratio struct {
	Value     float64 `json:"value"`
	Unbounded bool    `json:"unbounded,omitempty"`
}

// NewRatio computes numerator/denominator with the usual guards:
// 0/0 is 0 and x/0 with x>0 is unbounded.
func NewRatio(numerator, denominator float64) Ratio {
	if denominator == 0 {
		if numerator > 0 {
			return UnboundedRatio()
		}
		return Ratio{}
	}
	return Ratio{Value: numerator / denominator}
}

// UnboundedRatio returns the unbounded variant
func UnboundedRatio() Ratio {
	return Ratio{Value: MaxRatio, Unbounded: true}
}

// Float returns the numeric value, MaxRatio when unbounded
func (r Ratio) Float() float64 {
	return r.Value
}

// String renders the ratio for human-facing text
func (r Ratio) String() string {
	if r.Unbounded {
		return "∞"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// UnmarshalJSON accepts both the tagged object and a bare number
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*r = Ratio{Value: num, Unbounded: num >= MaxRatio}
		return nil
	}
	type plain Ratio
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ratio(p)
	return nil
}
