package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowmelt/abicheck/core"
	"github.com/snowmelt/abicheck/engine"
	"github.com/snowmelt/abicheck/internal/wasmgen"
	"github.com/snowmelt/abicheck/scenario"
)

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close(context.Background()) })
	return NewRunner(eng, nil, nil, nil, opts)
}

func writeModule(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// corruptedManyArgsGuest forwards constants instead of its parameters,
// with 999 in the last position.
func corruptedManyArgsGuest() []byte {
	params := make([]wasmgen.ValType, 20)
	for i := range params {
		params[i] = wasmgen.I64
	}
	body := wasmgen.NewBody()
	for i := int64(1); i <= 19; i++ {
		body.I64Const(i)
	}
	body.I64Const(999)
	m := &wasmgen.Module{
		Types: []wasmgen.FuncType{{Params: params}},
		Imports: []wasmgen.Import{
			{Module: wasmgen.HostNamespace, Name: "many-arguments", Type: 0},
		},
		Funcs: []wasmgen.Func{
			{Type: 0, Body: body.Call(0).End()},
		},
		Exports: []wasmgen.Export{
			{Name: "many-arguments", Func: 1},
		},
	}
	return m.Encode()
}

func TestRunModule(t *testing.T) {
	ctx := context.Background()

	t.Run("passing scenario", func(t *testing.T) {
		r := newTestRunner(t, Options{})
		path := writeModule(t, "guest.wasm", wasmgen.ManyArgumentsGuest())

		factories, err := scenario.Find([]string{"many-arguments"})
		require.NoError(t, err)

		reports := r.RunModule(ctx, path, factories)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Pass)
		assert.NoError(t, reports[0].Err)
		assert.Equal(t, core.WASINone, reports[0].WASI)
		for _, phase := range []core.Phase{core.PhaseLoad, core.PhaseCompile, core.PhaseLink, core.PhaseCall} {
			_, ok := reports[0].Durations[phase]
			assert.True(t, ok, "missing duration for phase %s", phase)
		}
		assert.True(t, AllPassed(reports))
	})

	t.Run("guest corrupts one position", func(t *testing.T) {
		r := newTestRunner(t, Options{})
		path := writeModule(t, "corrupt.wasm", corruptedManyArgsGuest())

		factories, err := scenario.Find([]string{"many-arguments"})
		require.NoError(t, err)

		reports := r.RunModule(ctx, path, factories)
		require.Len(t, reports, 1)
		assert.False(t, reports[0].Pass)
		assert.True(t, core.IsKind(reports[0].Err, core.KindAssertion))
		assert.False(t, AllPassed(reports))
	})

	t.Run("unreadable path", func(t *testing.T) {
		r := newTestRunner(t, Options{})
		factories, err := scenario.Find([]string{"smoke"})
		require.NoError(t, err)

		reports := r.RunModule(ctx, filepath.Join(t.TempDir(), "missing.wasm"), factories)
		require.Len(t, reports, 1)
		assert.True(t, core.IsKind(reports[0].Err, core.KindLoad))
	})

	t.Run("non-wasm file", func(t *testing.T) {
		r := newTestRunner(t, Options{})
		path := writeModule(t, "not-wasm.txt", []byte("definitely not wasm"))

		factories, err := scenario.Find([]string{"smoke"})
		require.NoError(t, err)

		reports := r.RunModule(ctx, path, factories)
		require.Len(t, reports, 1)
		assert.True(t, core.IsKind(reports[0].Err, core.KindLoad))
	})

	t.Run("import not registered", func(t *testing.T) {
		// The trap scenario registers no imports, so a guest that needs
		// the host namespace cannot link.
		r := newTestRunner(t, Options{})
		path := writeModule(t, "smoke.wasm", wasmgen.SmokeGuest())

		factories, err := scenario.Find([]string{"trap"})
		require.NoError(t, err)

		reports := r.RunModule(ctx, path, factories)
		require.Len(t, reports, 1)
		assert.True(t, core.IsKind(reports[0].Err, core.KindLink))
	})

	t.Run("parallel runs share the module cache", func(t *testing.T) {
		r := newTestRunner(t, Options{Parallelism: 4})
		path := writeModule(t, "smoke.wasm", wasmgen.SmokeGuest())

		factories := make([]core.ScenarioFactory, 4)
		for i := range factories {
			factories[i] = scenario.NewSmoke
		}

		reports := r.RunModule(ctx, path, factories)
		require.Len(t, reports, 4)
		assert.True(t, AllPassed(reports))
	})
}

func TestWithTimeout(t *testing.T) {
	base := newTestRunner(t, Options{Timeout: time.Minute})
	derived := base.WithTimeout(time.Second)

	assert.Equal(t, time.Second, derived.opts.Timeout)
	assert.Equal(t, time.Minute, base.opts.Timeout)

	// The derived runner still works end to end.
	path := writeModule(t, "smoke.wasm", wasmgen.SmokeGuest())
	factories, err := scenario.Find([]string{"smoke"})
	require.NoError(t, err)
	assert.True(t, AllPassed(derived.RunModule(context.Background(), path, factories)))
}

func TestAllPassed(t *testing.T) {
	assert.False(t, AllPassed(nil))
	assert.False(t, AllPassed([]core.Report{{Pass: true}, {Pass: false}}))
	assert.True(t, AllPassed([]core.Report{{Pass: true}}))
}
