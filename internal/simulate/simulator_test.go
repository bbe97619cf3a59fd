package simulate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtestlab/internal/market"
)

type funcDecider func(ctx context.Context, w market.Window, state State) (Decision, error)

func (f funcDecider) Invoke(ctx context.Context, w market.Window, state State) (Decision, error) {
	return f(ctx, w, state)
}

func bar(ts int64, o, h, l, c, v float64) market.Bar {
	return market.Bar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestSimulatorBuyAndHold(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 106, 100, 105, 1000),
		bar(3, 105, 111, 104, 110, 1000),
	}
	buyOnce := false
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		if !buyOnce {
			buyOnce = true
			return Decision{Signal: SignalBuy}, nil
		}
		return Decision{Signal: SignalHold}, nil
	})

	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1, Commission: 0, Slippage: 0}
	result := New().Run(context.Background(), cfg, bars, decider)

	require.True(t, result.Success)
	require.Len(t, result.EquityCurve, 3)
	// Forced close at end of data at bar 3's close (110).
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, ExitEndOfData, trade.ExitReason)
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 110.0, trade.ExitPrice)
	assert.InDelta(t, (110.0-100.0)*trade.Size, trade.PnL, 0.01)
}

func TestSimulatorStopLossTriggersBeforeStrategy(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 100, 90, 95, 1000), // low breaches stop
		bar(3, 95, 96, 94, 95, 1000),
	}
	calls := 0
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		calls++
		if calls == 1 {
			return Decision{Signal: SignalBuy, StopLoss: 98}, nil // absolute price, outside multiplier band
		}
		return Decision{Signal: SignalHold}, nil
	})

	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1, Commission: 0, Slippage: 0}
	result := New().Run(context.Background(), cfg, bars, decider)

	require.True(t, result.Success)
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, ExitStopLoss, trade.ExitReason)
	assert.Equal(t, 98.0, trade.ExitPrice)
	// Strategy is never asked on the exit bar because the bracket fires first.
	assert.Equal(t, 2, calls)
}

func TestSimulatorTakeProfitPrecedesSellSignal(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 115, 99, 105, 1000), // high breaches target
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		if w.Len() == 1 {
			return Decision{Signal: SignalBuy, TakeProfit: 110}, nil
		}
		// Would sell if consulted; the target should already have closed the position.
		t.Fatal("strategy should not be consulted on a bar where the bracket already fired")
		return Decision{Signal: SignalSell}, nil
	})

	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1, Commission: 0, Slippage: 0}
	result := New().Run(context.Background(), cfg, bars, decider)

	require.True(t, result.Success)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, ExitTakeProfit, result.Trades[0].ExitReason)
	assert.Equal(t, 110.0, result.Trades[0].ExitPrice)
}

func TestSimulatorStopLossPrecedesTakeProfitOnSameBar(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 120, 80, 100, 1000), // both stop (<=90) and target (>=110) breached
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		if w.Len() == 1 {
			return Decision{Signal: SignalBuy, StopLoss: 90, TakeProfit: 110}, nil
		}
		return Decision{Signal: SignalHold}, nil
	})

	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1, Commission: 0, Slippage: 0}
	result := New().Run(context.Background(), cfg, bars, decider)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, ExitStopLoss, result.Trades[0].ExitReason, "stop loss must take precedence when both brackets fire on the same bar")
}

func TestSimulatorCommissionAndSlippageAppliedOnBothLegs(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 101, 99, 100, 1000),
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		if w.Len() == 1 {
			return Decision{Signal: SignalBuy}, nil
		}
		return Decision{Signal: SignalSell}, nil
	})

	// A fractional position size leaves enough cash headroom to cover the
	// commission on top of the floored share count.
	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 0.5, Commission: 0.01, Slippage: 0.01}
	result := New().Run(context.Background(), cfg, bars, decider)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	// Entry fill price is bumped up by slippage against the buyer.
	assert.InDelta(t, 101.0, trade.EntryPrice, 0.001)
	// Exit fill price is knocked down by slippage against the seller.
	assert.InDelta(t, 99.0, trade.ExitPrice, 0.001)
	assert.Less(t, trade.PnL, 0.0, "round-trip commission and slippage on a flat market should produce a loss")
}

func TestSimulatorAtMostOnePositionOpenAtOnce(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 101, 99, 100, 1000),
		bar(3, 100, 101, 99, 100, 1000),
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		// Always signals buy, including while a position is already open.
		return Decision{Signal: SignalBuy}, nil
	})
	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1, Commission: 0, Slippage: 0}
	result := New().Run(context.Background(), cfg, bars, decider)
	require.True(t, result.Success)
	// Only one entry across the whole run despite repeated BUY signals: while
	// a position is open the simulator acts only on SELL/FLAT from the
	// strategy and ignores BUY, so no second entry can occur.
	assert.LessOrEqual(t, len(result.Trades), 1)
}

func TestSimulatorEquityCurveLengthMatchesBarCount(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 101, 99, 101, 1000),
		bar(3, 101, 102, 100, 100, 1000),
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		return Decision{Signal: SignalNone}, nil
	})
	cfg := Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1}
	result := New().Run(context.Background(), cfg, bars, decider)
	assert.Len(t, result.EquityCurve, len(bars))
}

func TestSimulatorEmptyBarsSucceedsTrivially(t *testing.T) {
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		t.Fatal("decider should never be invoked with zero bars")
		return Decision{}, nil
	})
	result := New().Run(context.Background(), Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1}, nil, decider)
	assert.True(t, result.Success)
	assert.Empty(t, result.EquityCurve)
}

func TestSimulatorInvalidBarFailsFast(t *testing.T) {
	bars := []market.Bar{bar(1, 10, 5, 20, 8, 100)} // high < low, invalid
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		return Decision{Signal: SignalNone}, nil
	})
	result := New().Run(context.Background(), Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1}, bars, decider)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestSimulatorDeciderErrorCountsAsSandboxFailure(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 101, 99, 100, 1000),
	}
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		return Decision{}, assert.AnError
	})
	result := New().Run(context.Background(), Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1}, bars, decider)
	require.True(t, result.Success)
	assert.Equal(t, len(bars), result.SandboxFailures)
	assert.Empty(t, result.Trades)
}

func TestSimulatorCancellation(t *testing.T) {
	bars := []market.Bar{
		bar(1, 100, 101, 99, 100, 1000),
		bar(2, 100, 101, 99, 100, 1000),
		bar(3, 100, 101, 99, 100, 1000),
	}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	decider := funcDecider(func(_ context.Context, w market.Window, _ State) (Decision, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return Decision{Signal: SignalNone}, nil
	})
	result := New().Run(ctx, Config{Symbol: "TEST", InitialCapital: 10000, PositionSize: 1}, bars, decider)
	assert.True(t, result.Cancelled)
	assert.False(t, result.Success)
}
