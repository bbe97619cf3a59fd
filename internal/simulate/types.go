// Package simulate drives one strategy callable over one instrument's bar
// sequence, honoring intra-bar bracket exits, commission and slippage, and
// produces a TickerResult.
package simulate

import (
	"context"

	"backtestlab/internal/market"
)

// Signal is the strategy's directive for a given bar.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalFlat Signal = "FLAT"
	SignalHold Signal = "HOLD"
	SignalNone Signal = "NONE"
)

// ExitReason categorizes why a position was closed.
type ExitReason string

const (
	ExitSignal      ExitReason = "SIGNAL"
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitTakeProfit  ExitReason = "TAKE_PROFIT"
	ExitEndOfData   ExitReason = "END_OF_DATA"
)

// Decision is the value a strategy callable returns for one bar. StopLoss
// and TakeProfit are zero when unset; a nonzero value is interpreted as
// either a multiplier of the entry reference price or an absolute price,
// per interpretStopTarget.
type Decision struct {
	Signal     Signal
	Size       float64
	StopLoss   float64
	TakeProfit float64
}

// State is the mutable per-instrument bag a strategy carries across calls.
// It is reset (empty) at the start of each instrument's simulation.
type State map[string]float64

// Position is the single open long an instrument may hold at a time.
type Position struct {
	EntryTime       int64
	EntryBarIndex   int
	EntryPrice      float64
	Size            float64
	StopPrice       float64
	TargetPrice     float64
	EntryCommission float64
}

// Trade is a closed round trip on one instrument.
type Trade struct {
	Symbol     string     `json:"symbol"`
	EntryTime  int64      `json:"entry_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitTime   int64      `json:"exit_time"`
	ExitPrice  float64    `json:"exit_price"`
	Size       float64    `json:"size"`
	PnL        float64    `json:"pnl"`
	PnLPercent float64    `json:"pnl_percent"`
	ExitReason ExitReason `json:"exit_reason"`
	BarsHeld   int        `json:"bars_held"`
}

// EquityPoint is one sample of an instrument's mark-to-close equity.
type EquityPoint struct {
	Timestamp int64   `json:"timestamp"`
	Equity    float64 `json:"equity"`
}

// TickerResult is what one instrument's simulation produces.
type TickerResult struct {
	Symbol           string        `json:"symbol"`
	Trades           []Trade       `json:"trades"`
	EquityCurve      []EquityPoint `json:"equity_curve"`
	SandboxFailures  int           `json:"sandbox_failures"`
	Success          bool          `json:"success"`
	Cancelled        bool          `json:"cancelled"`
	Error            string        `json:"error,omitempty"`
}

// FinalEquity returns the equity of the last point on the curve, or the
// initial capital if the curve is empty.
func (r TickerResult) FinalEquity(initialCapital float64) float64 {
	if len(r.EquityCurve) == 0 {
		return initialCapital
	}
	return r.EquityCurve[len(r.EquityCurve)-1].Equity
}

// Config parameterizes one instrument's simulation.
type Config struct {
	Symbol         string
	InitialCapital float64
	PositionSize   float64 // fraction f in (0,1]
	Commission     float64 // rate gamma in [0,1)
	Slippage       float64 // rate sigma in [0,1)
}

// Decider is the sandbox-bound strategy callable a Simulator drives. It is
// invoked once per bar with the window up to and including that bar and
// the instrument's mutable state.
type Decider interface {
	Invoke(ctx context.Context, window market.Window, state State) (Decision, error)
}
