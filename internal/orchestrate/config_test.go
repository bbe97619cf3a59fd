package orchestrate

import (
	"testing"
	"time"
)

func validConfig() BacktestConfig {
	return BacktestConfig{
		StrategySource: `signal = "HOLD"`,
		UniverseID:     "sp500",
		StartDate:      time.Unix(0, 0),
		EndDate:        time.Unix(0, 0).Add(24 * time.Hour),
		InitialCapital: 10000,
		PositionSize:   1,
		Commission:     0,
		Slippage:       0,
		Interval:       "1d",
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate failed on a well-formed config: %v", err)
	}
}

func TestValidateRejectsMissingStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.StrategySource = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a missing strategy source")
	}
}

func TestValidateRejectsInvertedDateRange(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate, cfg.EndDate = cfg.EndDate, cfg.StartDate
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an inverted date range")
	}
}

func TestValidateRejectsPositionSizeOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.PositionSize = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for position_size > 1")
	}
	cfg.PositionSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for position_size == 0")
	}
}

func TestValidateRejectsNegativeCommissionOrSlippage(t *testing.T) {
	cfg := validConfig()
	cfg.Commission = -0.01
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for negative commission")
	}
	cfg = validConfig()
	cfg.Slippage = 1.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for slippage >= 1")
	}
}
