package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowmelt/abicheck/core"
	"github.com/snowmelt/abicheck/engine"
	"github.com/snowmelt/abicheck/internal/wasmgen"
)

func driveAgainst(t *testing.T, factory core.ScenarioFactory, guest []byte) error {
	t.Helper()
	ctx := context.Background()

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close(ctx) })

	mod, err := eng.Compile(ctx, &core.ModuleBlob{Bytes: guest})
	require.NoError(t, err)
	t.Cleanup(func() { mod.Close(ctx) })

	s := factory()
	inst, err := mod.Instantiate(ctx, s.Imports())
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(ctx) })

	return s.Drive(ctx, inst)
}

func TestScenariosAgainstFixtures(t *testing.T) {
	cases := []struct {
		name    string
		factory core.ScenarioFactory
		guest   []byte
	}{
		{"many-arguments", NewManyArguments, wasmgen.ManyArgumentsGuest()},
		{"smoke", NewSmoke, wasmgen.SmokeGuest()},
		{"numbers", NewNumbers, wasmgen.NumbersGuest()},
		{"trap", NewTrap, wasmgen.TrapGuest()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, driveAgainst(t, tc.factory, tc.guest))
		})
	}
}

func TestSmokeDetectsSilentGuest(t *testing.T) {
	// Imports thunk but never calls it; the hit flag must stay unset.
	silent := (&wasmgen.Module{
		Types: []wasmgen.FuncType{{}},
		Imports: []wasmgen.Import{
			{Module: wasmgen.HostNamespace, Name: "thunk", Type: 0},
		},
		Funcs: []wasmgen.Func{
			{Type: 0, Body: wasmgen.NewBody().End()},
		},
		Exports: []wasmgen.Export{
			{Name: "thunk", Func: 1},
		},
	}).Encode()

	err := driveAgainst(t, NewSmoke, silent)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindAssertion))
}

func TestScenarioStateIsPerRun(t *testing.T) {
	// Two runs from the same factory must not share the hit flag.
	require.NoError(t, driveAgainst(t, NewSmoke, wasmgen.SmokeGuest()))
	require.NoError(t, driveAgainst(t, NewSmoke, wasmgen.SmokeGuest()))
}

func TestFind(t *testing.T) {
	t.Run("empty selects all", func(t *testing.T) {
		fs, err := Find(nil)
		require.NoError(t, err)
		assert.Len(t, fs, len(Names()))
	})

	t.Run("known names", func(t *testing.T) {
		fs, err := Find([]string{"smoke", "trap"})
		require.NoError(t, err)
		require.Len(t, fs, 2)
		assert.Equal(t, "smoke", fs[0]().Name())
		assert.Equal(t, "trap", fs[1]().Name())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Find([]string{"flavorful"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown scenario")
	})
}
