package market

// Window is a read-only view over all bars of one instrument up to and
// including a given index. It does not outlive the decide call it was
// built for; the simulator constructs a fresh Window per bar.
type Window struct {
	bars []Bar
}

// NewWindow returns a Window over bars[0:i+1]. Panics if i is out of range,
// which would indicate a simulator bug rather than bad input data.
func NewWindow(bars []Bar, i int) Window {
	if i < 0 || i >= len(bars) {
		panic("market: window index out of range")
	}
	return Window{bars: bars[:i+1]}
}

// Len returns the number of bars visible in the window.
func (w Window) Len() int { return len(w.bars) }

// Current returns the most recent (last) bar in the window.
func (w Window) Current() Bar { return w.bars[len(w.bars)-1] }

// At returns the bar i positions back from the current one (0 = current).
// Returns the zero Bar and false if i is beyond the start of the window.
func (w Window) At(i int) (Bar, bool) {
	idx := len(w.bars) - 1 - i
	if idx < 0 || idx >= len(w.bars) {
		return Bar{}, false
	}
	return w.bars[idx], true
}

// Closes returns up to the last n closing prices, oldest first. If fewer
// than n bars are available, it returns all of them.
func (w Window) Closes(n int) []float64 {
	return w.column(n, func(b Bar) float64 { return b.Close })
}

// Highs returns up to the last n high prices, oldest first.
func (w Window) Highs(n int) []float64 {
	return w.column(n, func(b Bar) float64 { return b.High })
}

// Lows returns up to the last n low prices, oldest first.
func (w Window) Lows(n int) []float64 {
	return w.column(n, func(b Bar) float64 { return b.Low })
}

// Volumes returns up to the last n volumes, oldest first.
func (w Window) Volumes(n int) []float64 {
	return w.column(n, func(b Bar) float64 { return b.Volume })
}

func (w Window) column(n int, pick func(Bar) float64) []float64 {
	if n <= 0 || n > len(w.bars) {
		n = len(w.bars)
	}
	start := len(w.bars) - n
	out := make([]float64, n)
	for i, b := range w.bars[start:] {
		out[i] = pick(b)
	}
	return out
}
