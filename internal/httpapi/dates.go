package httpapi

import (
	"fmt"
	"time"
)

// parseDate accepts an ISO calendar date string for start_date/end_date
// ("2024-01-01").
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}
