// Package orchestrate fans out per-instrument simulations across a bounded
// worker pool, emits an ordered lifecycle event stream, and assembles the
// terminal aggregate. It is the concurrency spine of a backtest run.
package orchestrate

import (
	"fmt"
	"time"
)

// BacktestConfig carries every user-facing option for one backtest run.
type BacktestConfig struct {
	StrategySource string
	UniverseID     string
	CustomTickers  []string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	PositionSize   float64
	MaxPositions   int
	Commission     float64
	Slippage       float64
	Interval       string
	UniverseLimit  int
	SampleTradesK  int
}

// Validate rejects a config synchronously, before any worker starts,
// mirroring the ConfigError taxonomy.
func (c BacktestConfig) Validate() error {
	if c.StrategySource == "" {
		return fmt.Errorf("config: strategy_source is required")
	}
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("config: date range is empty or inverted")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("config: initial_capital must be positive")
	}
	if c.PositionSize <= 0 || c.PositionSize > 1 {
		return fmt.Errorf("config: position_size must be in (0,1]")
	}
	if c.Commission < 0 || c.Commission >= 1 {
		return fmt.Errorf("config: commission must be in [0,1)")
	}
	if c.Slippage < 0 || c.Slippage >= 1 {
		return fmt.Errorf("config: slippage must be in [0,1)")
	}
	if c.Interval == "" {
		return fmt.Errorf("config: interval is required")
	}
	return nil
}
