// Package market holds the value types the simulator and sandbox share:
// a single OHLCV observation and a read-only view over a prefix of them.
package market

import (
	"math"
	"time"
)

// Bar is a single time-indexed OHLCV record. Timestamps are strictly
// increasing within one instrument's series; low <= open,close <= high.
type Bar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar's timestamp as a UTC time value.
func (b Bar) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// Valid reports whether the bar's fields respect the OHLC invariants.
func (b Bar) Valid() bool {
	if !isFinitePositive(b.Open) || !isFinitePositive(b.High) || !isFinitePositive(b.Low) || !isFinitePositive(b.Close) {
		return false
	}
	if b.Volume < 0 {
		return false
	}
	if b.Low > b.Open || b.Low > b.Close || b.Low > b.High {
		return false
	}
	if b.High < b.Open || b.High < b.Close {
		return false
	}
	return true
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
