package wasmgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func TestFixturesCompile(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	fixtures := map[string][]byte{
		"many_arguments": ManyArgumentsGuest(),
		"smoke":          SmokeGuest(),
		"numbers":        NumbersGuest(),
		"trap":           TrapGuest(),
		"wasi_marked":    WASIMarkedGuest(),
	}

	for name, bin := range fixtures {
		t.Run(name, func(t *testing.T) {
			compiled, err := r.CompileModule(ctx, bin)
			require.NoError(t, err)
			require.NoError(t, compiled.Close(ctx))
		})
	}
}

func TestManyArgumentsGuestShape(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, ManyArgumentsGuest())
	require.NoError(t, err)
	defer compiled.Close(ctx)

	imports := compiled.ImportedFunctions()
	require.Len(t, imports, 1)

	mod, name, ok := imports[0].Import()
	require.True(t, ok)
	assert.Equal(t, HostNamespace, mod)
	assert.Equal(t, "many-arguments", name)
	assert.Len(t, imports[0].ParamTypes(), 20)
	for _, p := range imports[0].ParamTypes() {
		assert.Equal(t, api.ValueTypeI64, p)
	}
	assert.Empty(t, imports[0].ResultTypes())

	exports := compiled.ExportedFunctions()
	def, ok := exports["many-arguments"]
	require.True(t, ok)
	assert.Len(t, def.ParamTypes(), 20)
}

func TestNumbersGuestShape(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, NumbersGuest())
	require.NoError(t, err)
	defer compiled.Close(ctx)

	want := []string{
		"roundtrip-u64", "roundtrip-s64", "roundtrip-u32", "roundtrip-s32",
		"roundtrip-f32", "roundtrip-f64", "set-scalar", "get-scalar",
	}
	exports := compiled.ExportedFunctions()
	for _, name := range want {
		_, ok := exports[name]
		assert.True(t, ok, "missing export %q", name)
	}
}

func TestLEB128(t *testing.T) {
	assert.Equal(t, []byte{0x00}, appendUleb128(nil, 0))
	assert.Equal(t, []byte{0x7f}, appendUleb128(nil, 127))
	assert.Equal(t, []byte{0x80, 0x01}, appendUleb128(nil, 128))

	assert.Equal(t, []byte{0x14}, appendSleb128(nil, 20))
	assert.Equal(t, []byte{0x7f}, appendSleb128(nil, -1))
	assert.Equal(t, []byte{0xc0, 0x00}, appendSleb128(nil, 64))
}
