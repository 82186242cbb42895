package core

import "context"

// Caller invokes exported guest functions by name.
type Caller interface {
	Call(ctx context.Context, name string, args ...uint64) ([]uint64, error)
}

// Instance is a module bound to a concrete import set, ready for invocation.
type Instance interface {
	Caller
	Close(ctx context.Context) error
}

// Module is a compiled, immutable representation of a wasm binary.
type Module interface {
	WASI() WASIVersion
	Instantiate(ctx context.Context, imports *ImportTable) (Instance, error)
	Close(ctx context.Context) error
}

// Engine loads and compiles wasm binaries.
type Engine interface {
	Load(path string) (*ModuleBlob, error)
	Compile(ctx context.Context, blob *ModuleBlob) (Module, error)
	Close(ctx context.Context) error
}

// Scenario drives one conformance check against a guest module. A scenario
// carries per-run host state, so a fresh value is needed for every run.
type Scenario interface {
	Name() string
	Imports() *ImportTable
	Drive(ctx context.Context, guest Caller) error
}

// ScenarioFactory builds a fresh Scenario for a single run.
type ScenarioFactory func() Scenario
