package core

import (
	"context"
	"time"
)

// Budget bounds a single scenario run.
type Budget struct {
	Timeout  time.Duration // wall-clock limit for the whole run
	MemPages uint32        // guest memory limit in 64KiB pages
}

// ValueType identifies a core wasm value type in a host function signature.
type ValueType byte

const (
	I32 ValueType = iota
	I64
	F32
	F64
)

func (v ValueType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	return "unknown"
}

// HostFunc is a host callback operating on the raw value stack.
// Parameters arrive in stack[0:len(Params)] in positional order; results
// are written back starting at stack[0]. A non-nil error aborts guest
// execution immediately.
type HostFunc func(ctx context.Context, stack []uint64) error

// Import is a single host function registration.
type Import struct {
	Name    string
	Params  []ValueType
	Results []ValueType
	Func    HostFunc
}

// ImportTable maps (namespace, name) pairs to host callables. It is built
// once per scenario and must be complete before instantiation.
type ImportTable struct {
	Namespace string
	Funcs     []Import
}

// ModuleBlob is a loaded wasm binary plus its identity.
type ModuleBlob struct {
	Path   string
	SHA256 string
	Bytes  []byte
}

// WASIVersion names the system-interface import set a module depends on.
type WASIVersion string

const (
	WASINone     WASIVersion = ""
	WASIPreview1 WASIVersion = "wasi_snapshot_preview1"
	WASIUnstable WASIVersion = "wasi_unstable"
)

// Phase labels one step of a scenario run for timing and tracing.
type Phase string

const (
	PhaseLoad    Phase = "load"
	PhaseCompile Phase = "compile"
	PhaseLink    Phase = "link"
	PhaseCall    Phase = "call"
)

// Report is the outcome of one scenario run against one module.
type Report struct {
	Scenario  string
	Module    string
	WASI      WASIVersion
	Pass      bool
	Err       error
	Durations map[Phase]time.Duration
	StartedAt time.Time
}
