//go:build wireinject

package wiring

import (
	"github.com/google/wire"

	"backtestlab/internal/config"
)

// Initialize assembles an App from a loaded config. Run `go generate`
// against this package after changing a provider's signature in
// wiring.go to regenerate wire_gen.go.
func Initialize(cfg *config.Config) (*App, error) {
	wire.Build(
		provideDataProvider,
		provideStore,
		provideOrchestrator,
		provideServer,
		wire.Struct(new(App), "Server", "Store"),
	)
	return nil, nil
}
