// Package universe resolves a universe identifier to a concrete list of
// instrument symbols: the default "sp500" static list, a "custom" list
// supplied by the caller, or either capped by a limit for quick-test runs.
package universe

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resolve returns the symbols for id, optionally capped to limit entries
// (limit <= 0 means unlimited). "custom" requires a non-empty custom list.
func Resolve(id string, custom []string, limit int) ([]string, error) {
	var symbols []string
	switch id {
	case "", "sp500":
		symbols = defaultSP500
	case "custom":
		if len(custom) == 0 {
			return nil, fmt.Errorf("universe %q requires a non-empty custom ticker list", id)
		}
		symbols = custom
	default:
		return nil, fmt.Errorf("unknown universe %q", id)
	}
	if limit > 0 && limit < len(symbols) {
		symbols = symbols[:limit]
	}
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out, nil
}

//go:embed universes.yaml
var universesYAML []byte

type universeFile struct {
	SP500 []string `yaml:"sp500"`
}

// defaultSP500 is a representative slice of the S&P 500, not an
// exhaustive or point-in-time-accurate constituent list; a production
// deployment would source this from the external universe collaborator
// this core treats as an external collaborator's responsibility. It is
// decoded once at package init from the embedded universes.yaml file.
var defaultSP500 = mustLoadDefaultSP500()

func mustLoadDefaultSP500() []string {
	var uf universeFile
	if err := yaml.Unmarshal(universesYAML, &uf); err != nil {
		panic(fmt.Sprintf("universe: embedded universes.yaml is malformed: %v", err))
	}
	if len(uf.SP500) == 0 {
		panic("universe: embedded universes.yaml has no sp500 entries")
	}
	return uf.SP500
}
