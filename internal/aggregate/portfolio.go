package aggregate

import (
	"sort"

	"backtestlab/internal/simulate"
)

// PortfolioEquityCurve forms the union of all successful instruments'
// bar timestamps and, at each one, takes the mean across instruments of
// each instrument's last-known equity at or before that timestamp (a
// step function), then rebases the series so its first point equals
// initialCapital.
//
// Each instrument owns the full initial_capital allotment rather than a
// fractional share of it, but the portfolio curve aggregates those
// per-instrument curves by mean rather than by sum, so it stays on the
// same scale as a single instrument's equity curve. Not a true shared-cash
// portfolio simulation; flagged as a candidate for a future fractional
// capital allotment redesign.
func PortfolioEquityCurve(results []simulate.TickerResult, initialCapital float64) []simulate.EquityPoint {
	timestamps := unionTimestamps(results)
	if len(timestamps) == 0 {
		return nil
	}

	type cursor struct {
		curve []simulate.EquityPoint
		idx   int
	}
	cursors := make([]cursor, 0, len(results))
	for _, r := range results {
		if r.Success && len(r.EquityCurve) > 0 {
			cursors = append(cursors, cursor{curve: r.EquityCurve})
		}
	}
	if len(cursors) == 0 {
		return nil
	}

	curve := make([]simulate.EquityPoint, 0, len(timestamps))
	for _, ts := range timestamps {
		var sum float64
		for i := range cursors {
			c := &cursors[i]
			for c.idx+1 < len(c.curve) && c.curve[c.idx+1].Timestamp <= ts {
				c.idx++
			}
			if c.curve[c.idx].Timestamp <= ts {
				sum += c.curve[c.idx].Equity
			} else {
				sum += initialCapital
			}
		}
		curve = append(curve, simulate.EquityPoint{Timestamp: ts, Equity: sum / float64(len(cursors))})
	}

	if len(curve) > 0 && curve[0].Equity != 0 {
		scale := initialCapital / curve[0].Equity
		for i := range curve {
			curve[i].Equity *= scale
		}
	}
	return curve
}

func unionTimestamps(results []simulate.TickerResult) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, p := range r.EquityCurve {
			if !seen[p.Timestamp] {
				seen[p.Timestamp] = true
				out = append(out, p.Timestamp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
