// Package dataprovider is the market-data-provider collaborator: given a
// symbol and a date range, it returns a chronological bar sequence,
// caching entries by (symbol, interval, start, end) with a configurable TTL. The
// actual historical-data source is an external concern; this package
// only owns the caching contract and a pluggable fetch function.
package dataprovider

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"backtestlab/internal/logger"
	"backtestlab/internal/market"
)

// Fetcher retrieves one instrument's bars from whatever backs it —
// a vendor API, a local file cache, a database. Implementations may
// return a shorter series than requested; an empty result is not an
// error, just a skipped instrument.
type Fetcher func(ctx context.Context, symbol string, start, end time.Time, interval string) ([]market.Bar, error)

// Provider wraps a Fetcher with a TTL cache keyed by (symbol, interval,
// start, end), the way a real deployment would avoid re-fetching the
// same window on every backtest run.
type Provider struct {
	fetch Fetcher
	cache *gocache.Cache
}

// New returns a Provider caching fetched series for ttl.
func New(fetch Fetcher, ttl time.Duration) *Provider {
	return &Provider{fetch: fetch, cache: gocache.New(ttl, ttl*2)}
}

// LoadBars fetches bars for every symbol, populating the result map only
// for symbols that returned a non-empty series. A per-symbol fetch error
// is logged and treated as a skipped instrument, not a whole-request
// failure — the caller decides whether an empty result set overall is a
// DataUnavailable terminal error.
func (p *Provider) LoadBars(ctx context.Context, symbols []string, start, end time.Time, interval string) map[string][]market.Bar {
	out := make(map[string][]market.Bar, len(symbols))
	for _, symbol := range symbols {
		key := cacheKey(symbol, interval, start, end)
		if cached, ok := p.cache.Get(key); ok {
			if bars, ok := cached.([]market.Bar); ok && len(bars) > 0 {
				out[symbol] = bars
				continue
			}
		}
		bars, err := p.fetch(ctx, symbol, start, end, interval)
		if err != nil {
			logger.Warnf("dataprovider: fetch %s failed: %v", symbol, err)
			continue
		}
		if len(bars) == 0 {
			continue
		}
		p.cache.Set(key, bars, gocache.DefaultExpiration)
		out[symbol] = bars
	}
	return out
}

func cacheKey(symbol, interval string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d", symbol, interval, start.Unix(), end.Unix())
}
