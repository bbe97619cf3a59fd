package sandbox

import (
	"context"
	"fmt"
	"time"

	"backtestlab/internal/market"
	"backtestlab/internal/simulate"
)

// DefaultCallBudget is the per-decide-call wall-clock timeout.
const DefaultCallBudget = 5 * time.Second

// CompiledStrategy is a validated, parsed strategy ready to be invoked
// once per bar per instrument. It is immutable and safely shared, by
// read-only reference, across every worker running the same backtest.
type CompiledStrategy struct {
	program    *Program
	callBudget time.Duration
}

// Validate parses source into an AST and rejects any disallowed
// construct or identifier before it is ever run, mirroring
// sandbox.py's validate_strategy_code — an AST walk against a fixed
// whitelist rather than a runtime blacklist.
func Validate(source string) (*CompiledStrategy, error) {
	prog, err := parseSource(source)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := validateProgram(prog); err != nil {
		return nil, err
	}
	return &CompiledStrategy{program: prog, callBudget: DefaultCallBudget}, nil
}

// Invoke runs the compiled strategy against one bar's window and the
// instrument's mutable state, under the call's wall-clock budget. A
// timeout or a runtime error is reported as an error; the simulator
// treats either as signal NONE for that bar.
func (c *CompiledStrategy) Invoke(ctx context.Context, w market.Window, state simulate.State) (simulate.Decision, error) {
	deadline := time.Now().Add(c.callBudget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	type outcome struct {
		decision simulate.Decision
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("strategy panicked: %v", r)}
			}
		}()
		d, err := runProgram(c.program, w, state)
		done <- outcome{decision: d, err: err}
	}()

	select {
	case o := <-done:
		return o.decision, o.err
	case <-ctx.Done():
		return simulate.Decision{Signal: simulate.SignalNone}, fmt.Errorf("strategy call exceeded %s budget", c.callBudget)
	}
}
