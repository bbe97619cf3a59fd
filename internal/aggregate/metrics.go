package aggregate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"backtestlab/internal/simulate"
)

const tradingDaysPerYear = 252

// ComputeMetrics derives the canonical performance vector from a
// portfolio equity curve and the full set of closed trades across all
// instruments. Every division guards its denominator with an explicit
// zero fallback.
func ComputeMetrics(equity []simulate.EquityPoint, trades []simulate.Trade, initialCapital float64) Metrics {
	m := Metrics{InitialCapital: initialCapital}
	if len(equity) == 0 {
		return m
	}
	m.StartDate = equity[0].Timestamp
	m.EndDate = equity[len(equity)-1].Timestamp
	m.FinalEquity = equity[len(equity)-1].Equity
	m.TotalReturn = m.FinalEquity - initialCapital
	if initialCapital != 0 {
		m.TotalReturnPercent = m.TotalReturn / initialCapital * 100
	}

	years := yearsBetween(m.StartDate, m.EndDate)
	if years > 0 && initialCapital > 0 && m.FinalEquity > 0 {
		m.CAGR = math.Pow(m.FinalEquity/initialCapital, 1/years) - 1
	}

	returns := dailyReturns(equity)
	mean, sd := meanStddev(returns)
	m.Volatility = sd * math.Sqrt(tradingDaysPerYear) * 100
	if sd != 0 {
		m.SharpeRatio = mean / sd * math.Sqrt(tradingDaysPerYear)
	}
	negReturns := negativeOnly(returns)
	_, negSd := meanStddev(negReturns)
	if negSd != 0 {
		m.SortinoRatio = mean / negSd * math.Sqrt(tradingDaysPerYear)
	}

	m.MaxDrawdown, m.MaxDrawdownPercent = maxDrawdown(equity)

	fillTradeMetrics(&m, trades)
	return m
}

func yearsBetween(start, end int64) float64 {
	seconds := float64(end - start)
	if seconds <= 0 {
		return 0
	}
	return seconds / (365.25 * 24 * 3600)
}

func dailyReturns(equity []simulate.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (equity[i].Equity-prev)/prev)
	}
	return out
}

func negativeOnly(returns []float64) []float64 {
	out := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			out = append(out, r)
		}
	}
	return out
}

func meanStddev(values []float64) (mean, sd float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, _ = stats.Mean(values)
	sd, _ = stats.StandardDeviation(values)
	return mean, sd
}

func maxDrawdown(equity []simulate.EquityPoint) (absolute, percent float64) {
	runningMax := equity[0].Equity
	for _, p := range equity {
		if p.Equity > runningMax {
			runningMax = p.Equity
		}
		dd := runningMax - p.Equity
		if dd > absolute {
			absolute = dd
			if runningMax != 0 {
				percent = dd / runningMax * 100
			}
		}
	}
	return absolute, percent
}

func fillTradeMetrics(m *Metrics, trades []simulate.Trade) {
	m.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}
	var sumPnL, sumWins, sumLosses, sumBars float64
	var curWinStreak, curLossStreak int
	sorted := make([]simulate.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ExitTime < sorted[j].ExitTime })
	m.BestTrade, m.WorstTrade = sorted[0].PnL, sorted[0].PnL

	for _, t := range sorted {
		sumPnL += t.PnL
		sumBars += float64(t.BarsHeld)
		if t.PnL > m.BestTrade {
			m.BestTrade = t.PnL
		}
		if t.PnL < m.WorstTrade {
			m.WorstTrade = t.PnL
		}
		switch {
		case t.PnL > 0:
			m.WinningTrades++
			sumWins += t.PnL
			curWinStreak++
			curLossStreak = 0
		case t.PnL < 0:
			m.LosingTrades++
			sumLosses += -t.PnL
			curLossStreak++
			curWinStreak = 0
		default:
			curWinStreak = 0
			curLossStreak = 0
		}
		if curWinStreak > m.ConsecutiveWins {
			m.ConsecutiveWins = curWinStreak
		}
		if curLossStreak > m.ConsecutiveLosses {
			m.ConsecutiveLosses = curLossStreak
		}
	}

	m.AvgTradePnL = sumPnL / float64(m.TotalTrades)
	m.AvgBarsHeld = sumBars / float64(m.TotalTrades)
	if m.WinningTrades > 0 {
		m.AvgWin = sumWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = sumLosses / float64(m.LosingTrades)
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	switch {
	case sumLosses > 0:
		m.ProfitFactor = sumWins / sumLosses
	case sumWins > 0:
		m.ProfitFactor = math.Inf(1)
	default:
		m.ProfitFactor = 0
	}
}
