package config

import "strings"

// Config is the top-level configuration carried by the backtest daemon.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Backtest  BacktestDefaults `toml:"backtest"`
	Sandbox   SandboxConfig   `toml:"sandbox"`
	DataCache DataCacheConfig `toml:"data_cache"`
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig controls the HTTP driving adapter.
type ServerConfig struct {
	HTTPAddr string `toml:"http_addr"`
	Env      string `toml:"env"`
}

// BacktestDefaults holds backtest settings. Workers sets the orchestrator's
// worker pool size. The Default* fields are loaded and validated but not
// read by any other package: the HTTP layer fills omitted request fields
// with its own fixed values (universe "sp500", interval "1d", position
// size 1, initial capital 100000) and leaves an omitted commission,
// slippage or sample-trade count at zero.
type BacktestDefaults struct {
	Workers               int     `toml:"workers"`
	DefaultUniverse       string  `toml:"default_universe"`
	DefaultInterval       string  `toml:"default_interval"`
	DefaultCommission     float64 `toml:"default_commission"`
	DefaultSlippage       float64 `toml:"default_slippage"`
	DefaultPositionSize   float64 `toml:"default_position_size"`
	DefaultInitialCapital float64 `toml:"default_initial_capital"`
	DefaultSampleTrades   int     `toml:"default_sample_trades"`
}

// SandboxConfig holds the sandbox limits. They are loaded and validated but
// not passed to the sandbox, which applies its own fixed 5-second call
// budget and 8192-character source ceiling.
type SandboxConfig struct {
	CallTimeoutSeconds int `toml:"call_timeout_seconds"`
	MaxSourceBytes     int `toml:"max_source_bytes"`
}

// DataCacheConfig controls the market data provider's TTL cache.
type DataCacheConfig struct {
	TTLSeconds int `toml:"ttl_seconds"`
}

// StoreConfig points at the SQLite result store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// keySet tracks which config paths were explicitly set by a config file,
// so defaults are only applied to genuinely absent fields.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes one field's default-value rule.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
