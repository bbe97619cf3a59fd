package wiring

import (
	"path/filepath"
	"testing"

	"backtestlab/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.HTTPAddr = ":0"
	cfg.Backtest.Workers = 4
	cfg.Store.Path = filepath.Join(t.TempDir(), "wiring.db")
	cfg.DataCache.TTLSeconds = 60
	return cfg
}

func TestInitializeWiresAllComponents(t *testing.T) {
	app, err := Initialize(testConfig(t))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer app.Close()

	if app.Server == nil {
		t.Error("expected a non-nil Server")
	}
	if app.Store == nil {
		t.Error("expected a non-nil Store")
	}
}

func TestInitializeFailsOnEmptyStorePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = ""

	if _, err := Initialize(cfg); err == nil {
		t.Fatal("expected an error for an empty store path")
	}
}
