package simulate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Fill pricing and commission are computed in decimal to avoid float
// drift on money.

func decFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func decToFloat(v decimal.Decimal) float64 {
	f, _ := v.Float64()
	return f
}

// buyFillPrice applies slippage against the buyer (raises the price by the
// slippage rate).
func buyFillPrice(reference, slippage float64) float64 {
	ref := decFromFloat(reference)
	factor := decimal.NewFromInt(1).Add(decFromFloat(slippage))
	return decToFloat(ref.Mul(factor))
}

// sellFillPrice applies slippage against the seller (lowers the price by the
// slippage rate).
func sellFillPrice(reference, slippage float64) float64 {
	ref := decFromFloat(reference)
	factor := decimal.NewFromInt(1).Sub(decFromFloat(slippage))
	return decToFloat(ref.Mul(factor))
}

func commissionFor(fillPrice, size, rate float64) float64 {
	return decToFloat(decFromFloat(fillPrice).Mul(decFromFloat(size)).Mul(decFromFloat(rate)))
}

// shareCount floors cash*fraction/fillPrice to a whole share count.
func shareCount(cash, fraction, fillPrice float64) float64 {
	if fillPrice <= 0 {
		return 0
	}
	raw := decFromFloat(cash).Mul(decFromFloat(fraction)).Div(decFromFloat(fillPrice))
	return math.Floor(decToFloat(raw))
}

// interpretStopTarget resolves a Decision's stop_loss/take_profit value
// into an absolute price. A value in the plausible multiplier band —
// strictly between 0 and multiplierBandUpper, and within
// multiplierBandTolerance of 1 — is treated as a multiplier of the entry
// reference price; otherwise it is treated as an already-absolute price.
// The band is a documented heuristic, not a precise rule.
const (
	multiplierBandUpper     = 3.0
	multiplierBandTolerance = 0.5
)

func interpretStopTarget(entryReference, value float64) float64 {
	if value <= 0 {
		return 0
	}
	if value < multiplierBandUpper && math.Abs(value-1) < multiplierBandTolerance {
		return decToFloat(decFromFloat(entryReference).Mul(decFromFloat(value)))
	}
	return value
}
