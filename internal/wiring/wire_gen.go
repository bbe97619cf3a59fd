//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject

package wiring

import "backtestlab/internal/config"

// Initialize is the hand-written realization of wire.go's injector.
func Initialize(cfg *config.Config) (*App, error) {
	data := provideDataProvider(cfg)
	s, err := provideStore(cfg)
	if err != nil {
		return nil, err
	}
	orch := provideOrchestrator(cfg, data, s)
	server := provideServer(cfg, orch)
	return &App{Server: server, Store: s}, nil
}
