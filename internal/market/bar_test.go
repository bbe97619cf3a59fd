package market

import "testing"

func TestBarValid(t *testing.T) {
	cases := []struct {
		name string
		bar  Bar
		want bool
	}{
		{"ok", Bar{Open: 10, High: 12, Low: 9, Close: 11, Volume: 100}, true},
		{"high below open", Bar{Open: 10, High: 9, Low: 8, Close: 8.5, Volume: 1}, false},
		{"low above close", Bar{Open: 10, High: 12, Low: 11, Close: 10.5, Volume: 1}, false},
		{"negative volume", Bar{Open: 10, High: 12, Low: 9, Close: 11, Volume: -1}, false},
		{"zero close", Bar{Open: 10, High: 12, Low: 9, Close: 0, Volume: 1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.bar.Valid(); got != c.want {
				t.Errorf("Valid() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBarTime(t *testing.T) {
	b := Bar{Timestamp: 1700000000}
	if b.Time().Unix() != 1700000000 {
		t.Errorf("Time() round-trip mismatch")
	}
}
