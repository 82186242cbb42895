// Package scenario holds the conformance checks the harness can run
// against a guest module. Each scenario pairs a host import table with a
// driver that invokes guest exports and validates what comes back.
package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snowmelt/abicheck/core"
)

// Namespace is the import namespace guests link their host callbacks from.
const Namespace = "imports"

var factories = map[string]core.ScenarioFactory{
	"many-arguments": NewManyArguments,
	"smoke":          NewSmoke,
	"numbers":        NewNumbers,
	"trap":           NewTrap,
}

// Names lists every registered scenario, sorted.
func Names() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns a factory for every registered scenario, ordered by name.
func All() []core.ScenarioFactory {
	names := Names()
	out := make([]core.ScenarioFactory, len(names))
	for i, name := range names {
		out[i] = factories[name]
	}
	return out
}

// Find resolves scenario names to factories. Unknown names are an error
// so a suite with a typo fails loudly instead of silently passing.
func Find(names []string) ([]core.ScenarioFactory, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]core.ScenarioFactory, 0, len(names))
	for _, name := range names {
		f, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (have: %s)", name, strings.Join(Names(), ", "))
		}
		out = append(out, f)
	}
	return out, nil
}
