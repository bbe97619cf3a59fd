package simulate

import (
	"context"
	"fmt"

	"backtestlab/internal/logger"
	"backtestlab/internal/market"
)

// Simulator drives one Decider over one instrument's bar sequence.
type Simulator struct{}

// New returns a ready Simulator. It carries no state of its own; every
// call to Run owns an independent cash/position/ledger.
func New() *Simulator {
	return &Simulator{}
}

// Run executes the bar loop described by the per-instrument contract:
// intra-bar bracket exits are tested before the strategy is consulted,
// commission and slippage are realized on every fill, and any position
// still open after the last bar is force-closed at that bar's close.
func (s *Simulator) Run(ctx context.Context, cfg Config, bars []market.Bar, decider Decider) TickerResult {
	result := TickerResult{Symbol: cfg.Symbol}
	if len(bars) == 0 {
		result.Success = true
		return result
	}

	cash := cfg.InitialCapital
	var pos *Position
	state := make(State)
	var trades []Trade
	equity := make([]EquityPoint, 0, len(bars))

	closePosition := func(barIndex int, bar market.Bar, refPrice float64, reason ExitReason) {
		fillPrice := sellFillPrice(refPrice, cfg.Slippage)
		commission := commissionFor(fillPrice, pos.Size, cfg.Commission)
		cash += fillPrice*pos.Size - commission
		pnl := (fillPrice-pos.EntryPrice)*pos.Size - (pos.EntryCommission + commission)
		notional := pos.EntryPrice * pos.Size
		pnlPercent := 0.0
		if notional != 0 {
			pnlPercent = pnl / notional * 100
		}
		trades = append(trades, Trade{
			Symbol:     cfg.Symbol,
			EntryTime:  pos.EntryTime,
			EntryPrice: pos.EntryPrice,
			ExitTime:   bar.Timestamp,
			ExitPrice:  fillPrice,
			Size:       pos.Size,
			PnL:        pnl,
			PnLPercent: pnlPercent,
			ExitReason: reason,
			BarsHeld:   barIndex - pos.EntryBarIndex,
		})
		pos = nil
	}

	openPosition := func(barIndex int, bar market.Bar, decision Decision) {
		fraction := cfg.PositionSize
		if decision.Size > 0 && decision.Size <= 1 {
			fraction *= decision.Size
		}
		referencePrice := bar.Close
		fillPrice := buyFillPrice(referencePrice, cfg.Slippage)
		size := shareCount(cash, fraction, fillPrice)
		if size <= 0 {
			return
		}
		commission := commissionFor(fillPrice, size, cfg.Commission)
		cost := fillPrice*size + commission
		if cost > cash {
			return
		}
		cash -= cost
		pos = &Position{
			EntryTime:       bar.Timestamp,
			EntryBarIndex:   barIndex,
			EntryPrice:      fillPrice,
			Size:            size,
			EntryCommission: commission,
			StopPrice:       interpretStopTarget(referencePrice, decision.StopLoss),
			TargetPrice:     interpretStopTarget(referencePrice, decision.TakeProfit),
		}
	}

	invoke := func(window market.Window) Decision {
		decision, err := decider.Invoke(ctx, window, state)
		if err != nil {
			result.SandboxFailures++
			logger.Warnf("simulate: %s bar %d sandbox call failed: %v", cfg.Symbol, window.Current().Timestamp, err)
			return Decision{Signal: SignalNone}
		}
		return decision
	}

	for i, bar := range bars {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		if !bar.Valid() {
			result.Success = false
			result.Error = fmt.Sprintf("non-finite or inconsistent bar at index %d", i)
			return result
		}

		window := market.NewWindow(bars, i)

		if pos != nil {
			switch {
			case pos.StopPrice > 0 && bar.Low <= pos.StopPrice:
				closePosition(i, bar, pos.StopPrice, ExitStopLoss)
			case pos.TargetPrice > 0 && bar.High >= pos.TargetPrice:
				closePosition(i, bar, pos.TargetPrice, ExitTakeProfit)
			default:
				decision := invoke(window)
				if pos != nil && (decision.Signal == SignalSell || decision.Signal == SignalFlat) {
					closePosition(i, bar, bar.Close, ExitSignal)
				}
			}
		} else {
			decision := invoke(window)
			if decision.Signal == SignalBuy {
				openPosition(i, bar, decision)
			}
		}

		markToClose := cash
		if pos != nil {
			markToClose += pos.Size * bar.Close
		}
		equity = append(equity, EquityPoint{Timestamp: bar.Timestamp, Equity: markToClose})
	}

	if pos != nil && !result.Cancelled {
		last := bars[len(bars)-1]
		closePosition(len(bars)-1, last, last.Close, ExitEndOfData)
		if len(equity) > 0 {
			equity[len(equity)-1].Equity = cash
		}
	}

	result.Trades = trades
	result.EquityCurve = equity
	if !result.Cancelled {
		result.Success = true
	}
	return result
}
