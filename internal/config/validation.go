package config

import "fmt"

// validate performs basic bounds checking on a loaded config, mirroring
// the ConfigError taxonomy: bad numeric bounds are rejected synchronously,
// before any worker starts.
func validate(c *Config) error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Backtest.validate(); err != nil {
		return err
	}
	if err := c.Sandbox.validate(); err != nil {
		return err
	}
	if err := c.DataCache.validate(); err != nil {
		return err
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	return nil
}

func (b BacktestDefaults) validate() error {
	if b.Workers <= 0 {
		return fmt.Errorf("backtest.workers must be positive")
	}
	if b.DefaultPositionSize <= 0 || b.DefaultPositionSize > 1 {
		return fmt.Errorf("backtest.default_position_size must be in (0,1]")
	}
	if b.DefaultCommission < 0 || b.DefaultCommission >= 1 {
		return fmt.Errorf("backtest.default_commission must be in [0,1)")
	}
	if b.DefaultSlippage < 0 || b.DefaultSlippage >= 1 {
		return fmt.Errorf("backtest.default_slippage must be in [0,1)")
	}
	if b.DefaultInitialCapital <= 0 {
		return fmt.Errorf("backtest.default_initial_capital must be positive")
	}
	return nil
}

func (s SandboxConfig) validate() error {
	if s.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("sandbox.call_timeout_seconds must be positive")
	}
	if s.MaxSourceBytes <= 0 {
		return fmt.Errorf("sandbox.max_source_bytes must be positive")
	}
	return nil
}

func (d DataCacheConfig) validate() error {
	if d.TTLSeconds <= 0 {
		return fmt.Errorf("data_cache.ttl_seconds must be positive")
	}
	return nil
}
