package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"backtestlab/internal/aggregate"
	"backtestlab/internal/dataprovider"
	"backtestlab/internal/logger"
	"backtestlab/internal/sandbox"
	"backtestlab/internal/simulate"
	"backtestlab/internal/universe"
)

const defaultWorkers = 10

// Recorder persists a run's lifecycle. All three methods are best-effort
// from the orchestrator's point of view: a persistence failure is logged,
// never surfaced to the event stream.
type Recorder interface {
	InsertRun(ctx context.Context, id, universeID string, start, end time.Time) error
	CompleteRun(ctx context.Context, id string, result aggregate.BacktestResult) error
	FailRun(ctx context.Context, id, message string) error
}

// LogRecorder is an optional extension of Recorder: a Store that also
// wants a copy of a run's lifecycle log lines implements it. The
// orchestrator checks for it with a type assertion rather than folding
// it into Recorder, so fakes in tests don't need to grow a no-op method
// just to satisfy the interface.
type LogRecorder interface {
	LogLine(ctx context.Context, id, level, message string) error
}

func (o *Orchestrator) logLine(ctx context.Context, jobID, level, message string) {
	if lr, ok := o.Store.(LogRecorder); ok {
		if err := lr.LogLine(ctx, jobID, level, message); err != nil {
			logger.Warnf("orchestrate: writing run log for %s failed: %v", jobID, err)
		}
	}
}

// Orchestrator fans out per-instrument simulations across a bounded
// worker pool and merges their results into an ordered event stream.
type Orchestrator struct {
	Data      *dataprovider.Provider
	Simulator *simulate.Simulator
	Workers   int
	Store     Recorder
}

// New wires an Orchestrator around a data provider, defaulting the
// worker pool to 10 concurrent instrument simulations.
func New(data *dataprovider.Provider) *Orchestrator {
	return &Orchestrator{Data: data, Simulator: simulate.New(), Workers: defaultWorkers}
}

func (o *Orchestrator) workers() int {
	if o.Workers <= 0 {
		return defaultWorkers
	}
	return o.Workers
}

// RunStreaming returns the ordered event channel for one backtest: one
// INIT, zero or more LOADING, one PROGRESS per completed instrument in
// completion order, then exactly one COMPLETE or ERROR. The channel is
// closed after the terminal event. Cancelling ctx aborts in-flight
// workers at their next bar boundary and closes the channel without a
// COMPLETE event, per the cancellation contract.
func (o *Orchestrator) RunStreaming(ctx context.Context, cfg BacktestConfig) <-chan Event {
	out := make(chan Event, 32)
	go o.run(ctx, cfg, out)
	return out
}

// Run drives RunStreaming to completion and returns only the terminal
// aggregate, discarding progress events.
func (o *Orchestrator) Run(ctx context.Context, cfg BacktestConfig) aggregate.BacktestResult {
	var final aggregate.BacktestResult
	for ev := range o.RunStreaming(ctx, cfg) {
		switch ev.Type {
		case EventComplete:
			final = *ev.Aggregate
		case EventError:
			final = aggregate.BacktestResult{Success: false, Message: ev.Message}
		}
	}
	return final
}

func (o *Orchestrator) run(ctx context.Context, cfg BacktestConfig, out chan<- Event) {
	defer close(out)
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		out <- Event{Type: EventError, Message: err.Error()}
		return
	}

	compiled, err := sandbox.Validate(cfg.StrategySource)
	if err != nil {
		out <- Event{Type: EventError, Message: fmt.Sprintf("strategy rejected: %v", err)}
		return
	}

	symbols, err := universe.Resolve(cfg.UniverseID, cfg.CustomTickers, cfg.UniverseLimit)
	if err != nil {
		out <- Event{Type: EventError, Message: err.Error()}
		return
	}
	if len(symbols) == 0 {
		out <- Event{Type: EventError, Message: "universe resolved to zero instruments"}
		return
	}

	jobID := uuid.New().String()
	if o.Store != nil {
		if err := o.Store.InsertRun(ctx, jobID, cfg.UniverseID, cfg.StartDate, cfg.EndDate); err != nil {
			logger.Warnf("orchestrate: recording run %s failed: %v", jobID, err)
		}
	}
	out <- Event{Type: EventInit, JobID: jobID, Total: len(symbols)}
	loadingMsg := fmt.Sprintf("loading %s bars for %d instruments", cfg.Interval, len(symbols))
	out <- Event{Type: EventLoading, Message: loadingMsg}
	o.logLine(ctx, jobID, "info", loadingMsg)

	bars := o.Data.LoadBars(ctx, symbols, cfg.StartDate, cfg.EndDate, cfg.Interval)
	if ctx.Err() != nil {
		return
	}
	if len(bars) == 0 {
		message := "no bar data available for any instrument in the universe"
		if o.Store != nil {
			_ = o.Store.FailRun(ctx, jobID, message)
		}
		out <- Event{Type: EventError, Message: message}
		return
	}

	completions := make(chan simulate.TickerResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			select {
			case <-gctx.Done():
				completions <- simulate.TickerResult{Symbol: symbol, Cancelled: true}
				return nil
			default:
			}
			instrumentBars, ok := bars[symbol]
			if !ok || len(instrumentBars) == 0 {
				completions <- simulate.TickerResult{Symbol: symbol, Success: false, Error: "no bars available"}
				return nil
			}
			simCfg := simulate.Config{
				Symbol:         symbol,
				InitialCapital: cfg.InitialCapital,
				PositionSize:   cfg.PositionSize,
				Commission:     cfg.Commission,
				Slippage:       cfg.Slippage,
			}
			result := o.Simulator.Run(gctx, simCfg, instrumentBars, compiled)
			if !result.Success && result.Error != "" {
				logger.Warnf("orchestrate: %s simulation failed: %s", symbol, result.Error)
			}
			completions <- result
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(completions)
	}()

	var results []simulate.TickerResult
	completed := 0
	for result := range completions {
		completed++
		results = append(results, result)
		out <- Event{
			Type:       EventProgress,
			Ticker:     result.Symbol,
			Completed:  completed,
			Total:      len(symbols),
			Percentage: float64(completed) / float64(len(symbols)) * 100,
			Result:     &result,
		}
		if ctx.Err() != nil {
			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	final := aggregate.Aggregate(results, cfg.InitialCapital, cfg.SampleTradesK)
	final.ExecutionTime = time.Since(started).Seconds()
	if o.Store != nil {
		if err := o.Store.CompleteRun(ctx, jobID, final); err != nil {
			logger.Warnf("orchestrate: persisting run %s failed: %v", jobID, err)
		}
	}
	o.logLine(ctx, jobID, "info", fmt.Sprintf("run %s completed in %.2fs", jobID, final.ExecutionTime))
	out <- Event{Type: EventComplete, Aggregate: &final}
}
