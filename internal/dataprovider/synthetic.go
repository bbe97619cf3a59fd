package dataprovider

import (
	"context"
	"fmt"
	"math"
	"time"

	"backtestlab/internal/market"
)

// SyntheticFetcher generates a deterministic pseudo-random-walk bar series
// for a symbol, seeded from the symbol name so repeated runs are stable.
// It stands in for the external market-data vendor this core treats as
// out of scope, letting the rest of the pipeline run end to end without one.
func SyntheticFetcher(intervalSeconds int64) Fetcher {
	return func(_ context.Context, symbol string, start, end time.Time, _ string) ([]market.Bar, error) {
		if !end.After(start) {
			return nil, fmt.Errorf("dataprovider: end must be after start")
		}
		if intervalSeconds <= 0 {
			intervalSeconds = 86400
		}
		seed := hashSeed(symbol)
		price := 50.0 + float64(seed%500)
		var bars []market.Bar
		for t := start.Unix(); t < end.Unix(); t += intervalSeconds {
			seed = seed*1103515245 + 12345
			// seed overflows into negative values; take the remainders on its
			// unsigned bit pattern so they stay non-negative.
			u := uint64(seed)
			drift := (float64(u%2001)-1000)/1000*0.02*price + 0.0

			open := price
			price += drift
			if price < 1 {
				price = 1
			}
			closeP := price
			high := math.Max(open, closeP) * 1.003
			low := math.Min(open, closeP) * 0.997
			volume := 1000 + float64(u%9000)

			bars = append(bars, market.Bar{
				Timestamp: t,
				Open:      round2(open),
				High:      round2(high),
				Low:       round2(low),
				Close:     round2(closeP),
				Volume:    round2(volume),
			})
		}
		return bars, nil
	}
}

func hashSeed(s string) int64 {
	var h int64 = 5381
	for _, c := range s {
		h = h*33 + int64(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
