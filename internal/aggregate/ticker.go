package aggregate

import (
	"math"
	"sort"

	"backtestlab/internal/simulate"
)

const (
	defaultTopPerformers = 10
	defaultSampleTrades  = 20
)

// TickerAggregateFrom summarizes one instrument's closed trades.
func TickerAggregateFrom(symbol string, trades []simulate.Trade) TickerAggregate {
	agg := TickerAggregate{Symbol: symbol, TotalTrades: len(trades)}
	if len(trades) == 0 {
		return agg
	}
	var sumWins, sumLosses float64
	runningMax, peak := math.Inf(-1), 0.0
	cumulative := 0.0
	for _, t := range trades {
		agg.TotalPnL += t.PnL
		cumulative += t.PnL
		if cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := runningMax - cumulative; dd > peak {
			peak = dd
		}
		switch {
		case t.PnL > 0:
			agg.WinningTrades++
			sumWins += t.PnL
		case t.PnL < 0:
			agg.LosingTrades++
			sumLosses += -t.PnL
		}
	}
	agg.MaxDrawdown = peak
	agg.AvgPnLPerTrade = agg.TotalPnL / float64(agg.TotalTrades)
	agg.WinRate = float64(agg.WinningTrades) / float64(agg.TotalTrades)
	if agg.WinningTrades > 0 {
		agg.AvgWin = sumWins / float64(agg.WinningTrades)
	}
	if agg.LosingTrades > 0 {
		agg.AvgLoss = sumLosses / float64(agg.LosingTrades)
	}
	switch {
	case sumLosses > 0:
		agg.ProfitFactor = sumWins / sumLosses
	case sumWins > 0:
		agg.ProfitFactor = math.Inf(1)
	}
	notional := 0.0
	for _, t := range trades {
		notional += t.EntryPrice * t.Size
	}
	if notional != 0 {
		agg.TotalPnLPercent = agg.TotalPnL / notional * 100
	}
	sample := trades
	if len(sample) > 10 {
		sample = sample[len(sample)-10:]
	}
	agg.SampleTrades = sample
	return agg
}

// Aggregate assembles the terminal BacktestResult from every instrument's
// TickerResult: the portfolio equity curve, the metric vector, top/worst
// performers, and a cross-instrument sample of recent trades.
func Aggregate(results []simulate.TickerResult, initialCapital float64, sampleTradesK int) BacktestResult {
	if sampleTradesK <= 0 {
		sampleTradesK = defaultSampleTrades
	}

	var allTrades []simulate.Trade
	var perTicker []TickerAggregate
	var failures []Failure
	for _, r := range results {
		if !r.Success {
			failures = append(failures, Failure{Symbol: r.Symbol, Reason: r.Error})
			continue
		}
		allTrades = append(allTrades, r.Trades...)
		perTicker = append(perTicker, TickerAggregateFrom(r.Symbol, r.Trades))
	}

	equity := PortfolioEquityCurve(results, initialCapital)
	metrics := ComputeMetrics(equity, allTrades, initialCapital)

	top := make([]TickerAggregate, len(perTicker))
	copy(top, perTicker)
	sort.Slice(top, func(i, j int) bool { return top[i].TotalPnL > top[j].TotalPnL })
	worst := make([]TickerAggregate, len(top))
	copy(worst, top)
	sort.Slice(worst, func(i, j int) bool { return worst[i].TotalPnL < worst[j].TotalPnL })
	if len(top) > defaultTopPerformers {
		top = top[:defaultTopPerformers]
	}
	if len(worst) > defaultTopPerformers {
		worst = worst[:defaultTopPerformers]
	}

	sort.Slice(allTrades, func(i, j int) bool { return allTrades[i].ExitTime > allTrades[j].ExitTime })
	sampleTrades := allTrades
	if len(sampleTrades) > sampleTradesK {
		sampleTrades = sampleTrades[:sampleTradesK]
	}

	return BacktestResult{
		Success:           true,
		Metrics:           metrics,
		EquityCurve:       equity,
		TickerPerformance: perTicker,
		TopPerformers:     top,
		WorstPerformers:   worst,
		SampleTrades:      sampleTrades,
		Failures:          failures,
	}
}
