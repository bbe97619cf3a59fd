package config

import "strings"

const (
	defaultHTTPAddr           = ":8080"
	defaultEnv                = "dev"
	defaultWorkerCount        = 10
	defaultUniverse           = "sp500"
	defaultInterval           = "1d"
	defaultCommission         = 0.0
	defaultSlippage           = 0.0
	defaultPositionSize       = 1.0
	defaultInitialCapital     = 100000.0
	defaultSampleTrades       = 20
	defaultSandboxCallTimeout = 5
	defaultSandboxMaxSource   = 8192
	defaultCacheTTLSeconds    = 3600
	defaultStorePath          = "data/backtestlab.db"
	defaultLogLevel           = "info"
	defaultLogPath            = "logs/backtestlab.log"
)

// applyDefaults fills every unset field with its default.
func (c *Config) applyDefaults(keys keySet) {
	c.Server.applyDefaults(keys)
	c.Backtest.applyDefaults(keys)
	c.Sandbox.applyDefaults(keys)
	c.DataCache.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Log.applyDefaults(keys)
}

func (s *ServerConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("server.http_addr", &s.HTTPAddr, defaultHTTPAddr),
		stringFieldDefault("server.env", &s.Env, defaultEnv),
	)
}

func (b *BacktestDefaults) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "backtest.workers",
			need:  func() bool { return b.Workers <= 0 },
			apply: func() { b.Workers = defaultWorkerCount },
		},
		stringFieldDefault("backtest.default_universe", &b.DefaultUniverse, defaultUniverse),
		stringFieldDefault("backtest.default_interval", &b.DefaultInterval, defaultInterval),
		fieldDefault{
			key:   "backtest.default_position_size",
			need:  func() bool { return b.DefaultPositionSize <= 0 || b.DefaultPositionSize > 1 },
			apply: func() { b.DefaultPositionSize = defaultPositionSize },
		},
		fieldDefault{
			key:   "backtest.default_initial_capital",
			need:  func() bool { return b.DefaultInitialCapital <= 0 },
			apply: func() { b.DefaultInitialCapital = defaultInitialCapital },
		},
		fieldDefault{
			key:   "backtest.default_sample_trades",
			need:  func() bool { return b.DefaultSampleTrades <= 0 },
			apply: func() { b.DefaultSampleTrades = defaultSampleTrades },
		},
	)
	if b.DefaultCommission < 0 {
		b.DefaultCommission = defaultCommission
	}
	if b.DefaultSlippage < 0 {
		b.DefaultSlippage = defaultSlippage
	}
}

func (s *SandboxConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "sandbox.call_timeout_seconds",
			need:  func() bool { return s.CallTimeoutSeconds <= 0 },
			apply: func() { s.CallTimeoutSeconds = defaultSandboxCallTimeout },
		},
		fieldDefault{
			key:   "sandbox.max_source_bytes",
			need:  func() bool { return s.MaxSourceBytes <= 0 },
			apply: func() { s.MaxSourceBytes = defaultSandboxMaxSource },
		},
	)
}

func (d *DataCacheConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "data_cache.ttl_seconds",
			need:  func() bool { return d.TTLSeconds <= 0 },
			apply: func() { d.TTLSeconds = defaultCacheTTLSeconds },
		},
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (l *LogConfig) applyDefaults(keys keySet) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("log.level", &l.Level, defaultLogLevel),
		stringFieldDefault("log.path", &l.Path, defaultLogPath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
