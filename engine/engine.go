// Package engine embeds the wazero runtime behind the core ports.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/snowmelt/abicheck/core"
)

// Config controls engine-wide limits.
type Config struct {
	MemLimitPages uint32 // guest memory limit, 64KiB pages
	CacheSize     int    // loaded-module LRU entries
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{MemLimitPages: 64, CacheSize: 16}
}

// Engine implements core.Engine over wazero. Each compiled module owns a
// private runtime so scenarios can bind the same import namespace
// independently; a shared compilation cache keeps recompiling the same
// binary cheap, and a content-addressed LRU avoids re-reading module
// files when a suite runs several scenarios against one path.
type Engine struct {
	cfg   Config
	comp  wazero.CompilationCache
	blobs *lru.Cache[string, *core.ModuleBlob]

	// CacheObserver, when set, is told about blob cache hits and misses.
	CacheObserver func(hit bool)
}

// New creates an engine with the given limits.
func New(cfg Config) (*Engine, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	// 65536 pages is the wasm 32-bit memory ceiling; wazero panics past it.
	if cfg.MemLimitPages == 0 || cfg.MemLimitPages > 65536 {
		cfg.MemLimitPages = DefaultConfig().MemLimitPages
	}
	blobs, err := lru.New[string, *core.ModuleBlob](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, comp: wazero.NewCompilationCache(), blobs: blobs}, nil
}

// Load reads a wasm binary from disk, caching by path.
func (e *Engine) Load(path string) (*core.ModuleBlob, error) {
	if blob, ok := e.blobs.Get(path); ok {
		e.observe(true)
		return blob, nil
	}
	e.observe(false)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.KindLoad, "read", err)
	}
	sum := sha256.Sum256(data)
	blob := &core.ModuleBlob{Path: path, SHA256: hex.EncodeToString(sum[:]), Bytes: data}
	e.blobs.Add(path, blob)
	return blob, nil
}

// Compile validates the binary and prepares it for instantiation.
func (e *Engine) Compile(ctx context.Context, blob *core.ModuleBlob) (core.Module, error) {
	rcfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(e.cfg.MemLimitPages).
		WithCloseOnContextDone(true).
		WithCompilationCache(e.comp)

	r := wazero.NewRuntimeWithConfig(ctx, rcfg)
	compiled, err := r.CompileModule(ctx, blob.Bytes)
	if err != nil {
		_ = r.Close(ctx)
		return nil, core.WrapError(core.KindLoad, "compile", err)
	}

	name := blob.SHA256
	if len(name) > 12 {
		name = name[:12]
	}
	return &module{runtime: r, compiled: compiled, name: name, wasi: detectWASI(compiled)}, nil
}

// Close releases the shared compilation cache.
func (e *Engine) Close(ctx context.Context) error {
	return e.comp.Close(ctx)
}

func (e *Engine) observe(hit bool) {
	if e.CacheObserver != nil {
		e.CacheObserver(hit)
	}
}

func detectWASI(compiled wazero.CompiledModule) core.WASIVersion {
	for _, f := range compiled.ImportedFunctions() {
		mod, _, ok := f.Import()
		if !ok {
			continue
		}
		switch mod {
		case string(core.WASIPreview1):
			return core.WASIPreview1
		case string(core.WASIUnstable):
			return core.WASIUnstable
		}
	}
	return core.WASINone
}

type module struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	name     string
	wasi     core.WASIVersion
}

func (m *module) WASI() core.WASIVersion { return m.wasi }

// Instantiate registers the host import table, instantiates WASI when the
// module depends on it, then binds the guest. Registration must complete
// before the guest is instantiated; wazero enforces this ordering because
// imports resolve at instantiation time.
func (m *module) Instantiate(ctx context.Context, imports *core.ImportTable) (core.Instance, error) {
	if imports != nil && len(imports.Funcs) > 0 {
		b := m.runtime.NewHostModuleBuilder(imports.Namespace)
		for _, im := range imports.Funcs {
			b = b.NewFunctionBuilder().
				WithGoModuleFunction(hostAdapter(im.Func), valueTypes(im.Params), valueTypes(im.Results)).
				Export(im.Name)
		}
		if _, err := b.Instantiate(ctx); err != nil {
			return nil, core.WrapError(core.KindLink, "host module", err)
		}
	}

	switch m.wasi {
	case core.WASIPreview1:
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, m.runtime); err != nil {
			return nil, core.WrapError(core.KindLink, "wasi", err)
		}
	case core.WASIUnstable:
		// No snapshot0 host module is shipped; fail with the reason
		// instead of a bare unresolved-import error.
		return nil, core.Errorf(core.KindLink, "wasi", "module imports wasi_unstable, which is not supported; rebuild against wasi_snapshot_preview1")
	}

	mod, err := m.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(m.name))
	if err != nil {
		return nil, core.WrapError(core.KindLink, "instantiate", err)
	}
	return &instance{mod: mod}, nil
}

func (m *module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// hostAdapter bridges a core.HostFunc onto wazero's raw stack calling
// convention. A host error aborts guest execution via panic; wazero
// recovers it and surfaces it from the export call, wrapped.
func hostAdapter(fn core.HostFunc) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		if err := fn(ctx, stack); err != nil {
			panic(err)
		}
	}
}

func valueTypes(vs []core.ValueType) []api.ValueType {
	if len(vs) == 0 {
		return nil
	}
	out := make([]api.ValueType, len(vs))
	for i, v := range vs {
		switch v {
		case core.I32:
			out[i] = api.ValueTypeI32
		case core.I64:
			out[i] = api.ValueTypeI64
		case core.F32:
			out[i] = api.ValueTypeF32
		case core.F64:
			out[i] = api.ValueTypeF64
		}
	}
	return out
}

type instance struct {
	mod api.Module
}

func (i *instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, core.Errorf(core.KindLink, "call", "export %q not found", name)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		var ae *core.AssertionError
		if errors.As(err, &ae) {
			return nil, core.WrapError(core.KindAssertion, name, err)
		}
		return nil, core.WrapError(core.KindTrap, name, err)
	}
	return results, nil
}

func (i *instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
