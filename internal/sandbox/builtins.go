package sandbox

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"backtestlab/internal/market"
)

// callBuiltin evaluates one of the fixed numeric utilities against the
// current window. Rolling indicators (sma/ema/rsi/atr/bbupper/bblower)
// are computed with go-talib over the window's close/high/low series,
// and the last value of the resulting series is returned.
func callBuiltin(name string, args []float64, w market.Window) (float64, error) {
	switch name {
	case "close":
		return barField(w, args[0], func(b market.Bar) float64 { return b.Close })
	case "open":
		return barField(w, args[0], func(b market.Bar) float64 { return b.Open })
	case "high":
		return barField(w, args[0], func(b market.Bar) float64 { return b.High })
	case "low":
		return barField(w, args[0], func(b market.Bar) float64 { return b.Low })
	case "volume":
		return barField(w, args[0], func(b market.Bar) float64 { return b.Volume })
	case "sma":
		period := int(args[0])
		series := talib.Sma(w.Closes(0), period)
		return lastValid(series), nil
	case "ema":
		period := int(args[0])
		series := talib.Ema(w.Closes(0), period)
		return lastValid(series), nil
	case "rsi":
		period := int(args[0])
		series := talib.Rsi(w.Closes(0), period)
		return lastValid(series), nil
	case "atr":
		period := int(args[0])
		series := talib.Atr(w.Highs(0), w.Lows(0), w.Closes(0), period)
		return lastValid(series), nil
	case "bbupper":
		period := int(args[0])
		upper, _, _ := talib.BBands(w.Closes(0), period, 2, 2, talib.SMA)
		return lastValid(upper), nil
	case "bblower":
		period := int(args[0])
		_, _, lower := talib.BBands(w.Closes(0), period, 2, 2, talib.SMA)
		return lastValid(lower), nil
	case "vwap":
		return vwap(w), nil
	case "abs":
		return math.Abs(args[0]), nil
	case "min":
		return math.Min(args[0], args[1]), nil
	case "max":
		return math.Max(args[0], args[1]), nil
	default:
		return 0, fmt.Errorf("unknown builtin %q", name)
	}
}

func barField(w market.Window, indexBack float64, pick func(market.Bar) float64) (float64, error) {
	i := int(indexBack)
	bar, ok := w.At(i)
	if !ok {
		return 0, fmt.Errorf("bar index %d out of range", i)
	}
	return pick(bar), nil
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}

func vwap(w market.Window) float64 {
	closes := w.Closes(0)
	volumes := w.Volumes(0)
	var pv, v float64
	for i := range closes {
		pv += closes[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return 0
	}
	return pv / v
}
