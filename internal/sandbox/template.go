package sandbox

// Template returns a worked example strategy, the same role
// sandbox.py:get_strategy_template() serves for the original: a starting
// point for authors and a fixture for tests.
func Template() string {
	return `if close(0) > sma(20) && close(1) <= sma(20) {
    signal = "BUY"
    stop_loss = 0.95
    take_profit = 1.10
} else if close(0) < sma(20) && close(1) >= sma(20) {
    signal = "SELL"
} else {
    signal = "HOLD"
}`
}
