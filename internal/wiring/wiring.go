// Package wiring assembles the components cmd/backtestd needs to serve
// traffic. The provider functions here are the wire.Build graph for
// wire.go's injector; wire_gen.go is the checked-in realization of that
// graph, regenerated by hand since the wire binary is not run in this
// environment.
package wiring

import (
	"time"

	"backtestlab/internal/config"
	"backtestlab/internal/dataprovider"
	"backtestlab/internal/httpapi"
	"backtestlab/internal/orchestrate"
	"backtestlab/internal/store"
)

// App bundles the fully wired server and its backing store. Close
// releases the store's SQLite handle.
type App struct {
	Server *httpapi.Server
	Store  *store.Store
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func provideDataProvider(cfg *config.Config) *dataprovider.Provider {
	ttl := time.Duration(cfg.DataCache.TTLSeconds) * time.Second
	return dataprovider.New(dataprovider.SyntheticFetcher(86400), ttl)
}

func provideStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Store.Path)
}

func provideOrchestrator(cfg *config.Config, data *dataprovider.Provider, s *store.Store) *orchestrate.Orchestrator {
	orch := orchestrate.New(data)
	orch.Workers = cfg.Backtest.Workers
	orch.Store = s
	return orch
}

func provideServer(cfg *config.Config, orch *orchestrate.Orchestrator) *httpapi.Server {
	return httpapi.New(cfg.Server.HTTPAddr, orch)
}
