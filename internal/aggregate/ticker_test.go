package aggregate

import (
	"testing"

	"backtestlab/internal/simulate"
)

func TestTickerAggregateFromComputesWinRate(t *testing.T) {
	trades := []simulate.Trade{
		{PnL: 100, EntryPrice: 10, Size: 10},
		{PnL: -50, EntryPrice: 10, Size: 10},
		{PnL: 25, EntryPrice: 10, Size: 10},
	}
	agg := TickerAggregateFrom("AAPL", trades)
	if agg.TotalTrades != 3 {
		t.Fatalf("TotalTrades = %d, want 3", agg.TotalTrades)
	}
	if agg.WinningTrades != 2 || agg.LosingTrades != 1 {
		t.Errorf("win/loss = %d/%d, want 2/1", agg.WinningTrades, agg.LosingTrades)
	}
	wantWinRate := 2.0 / 3.0
	if agg.WinRate != wantWinRate {
		t.Errorf("WinRate = %v, want %v", agg.WinRate, wantWinRate)
	}
	if agg.TotalPnL != 75 {
		t.Errorf("TotalPnL = %v, want 75", agg.TotalPnL)
	}
}

func TestTickerAggregateFromNoTrades(t *testing.T) {
	agg := TickerAggregateFrom("AAPL", nil)
	if agg.TotalTrades != 0 || agg.WinRate != 0 {
		t.Errorf("expected zero-value aggregate for no trades, got %+v", agg)
	}
}

func TestAggregateSeparatesFailuresFromSuccesses(t *testing.T) {
	results := []simulate.TickerResult{
		{Symbol: "GOOD", Success: true, EquityCurve: []simulate.EquityPoint{{Timestamp: 0, Equity: 1000}}},
		{Symbol: "BAD", Success: false, Error: "no bars available"},
	}
	out := Aggregate(results, 1000, 5)
	if len(out.Failures) != 1 || out.Failures[0].Symbol != "BAD" {
		t.Errorf("Failures = %+v, want one entry for BAD", out.Failures)
	}
	if len(out.TickerPerformance) != 1 || out.TickerPerformance[0].Symbol != "GOOD" {
		t.Errorf("TickerPerformance = %+v, want one entry for GOOD", out.TickerPerformance)
	}
	if !out.Success {
		t.Error("Aggregate should report Success=true when at least one instrument succeeded")
	}
}

func TestAggregateSampleTradesRespectsK(t *testing.T) {
	var trades []simulate.Trade
	for i := int64(0); i < 30; i++ {
		trades = append(trades, simulate.Trade{ExitTime: i, PnL: 1})
	}
	results := []simulate.TickerResult{
		{
			Symbol:  "A",
			Success: true,
			Trades:  trades,
			EquityCurve: []simulate.EquityPoint{
				{Timestamp: 0, Equity: 1000},
				{Timestamp: 29, Equity: 1030},
			},
		},
	}
	out := Aggregate(results, 1000, 5)
	if len(out.SampleTrades) != 5 {
		t.Errorf("SampleTrades len = %d, want 5", len(out.SampleTrades))
	}
}

func TestAggregateTopAndWorstPerformersSortedByPnL(t *testing.T) {
	results := []simulate.TickerResult{
		{Symbol: "WINNER", Success: true, Trades: []simulate.Trade{{PnL: 500, EntryPrice: 10, Size: 1}}, EquityCurve: []simulate.EquityPoint{{Timestamp: 0, Equity: 1000}}},
		{Symbol: "LOSER", Success: true, Trades: []simulate.Trade{{PnL: -300, EntryPrice: 10, Size: 1}}, EquityCurve: []simulate.EquityPoint{{Timestamp: 0, Equity: 1000}}},
	}
	out := Aggregate(results, 1000, 5)
	if out.TopPerformers[0].Symbol != "WINNER" {
		t.Errorf("TopPerformers[0] = %s, want WINNER", out.TopPerformers[0].Symbol)
	}
	if out.WorstPerformers[0].Symbol != "LOSER" {
		t.Errorf("WorstPerformers[0] = %s, want LOSER", out.WorstPerformers[0].Symbol)
	}
}
