package wasmgen

// HostNamespace is the import namespace every scenario guest links against.
const HostNamespace = "imports"

func nvals(n int, v ValType) []ValType {
	out := make([]ValType, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ManyArgumentsGuest imports imports/many-arguments (20 i64 params, no
// results) and exports a function of the same name and signature that
// forwards all twenty arguments to the import.
func ManyArgumentsGuest() []byte {
	m := &Module{
		Types: []FuncType{
			{Params: nvals(20, I64)},
		},
		Imports: []Import{
			{Module: HostNamespace, Name: "many-arguments", Type: 0},
		},
		Funcs: []Func{
			{Type: 0, Body: forward(20, 0)},
		},
		Exports: []Export{
			{Name: "many-arguments", Func: 1},
		},
	}
	return m.Encode()
}

// SmokeGuest imports imports/thunk and exports a forwarding thunk.
func SmokeGuest() []byte {
	m := &Module{
		Types: []FuncType{
			{},
		},
		Imports: []Import{
			{Module: HostNamespace, Name: "thunk", Type: 0},
		},
		Funcs: []Func{
			{Type: 0, Body: forward(0, 0)},
		},
		Exports: []Export{
			{Name: "thunk", Func: 1},
		},
	}
	return m.Encode()
}

// NumbersGuest imports the scalar roundtrip and scalar-state functions and
// exports forwarders for each.
func NumbersGuest() []byte {
	m := &Module{
		Types: []FuncType{
			{Params: []ValType{I64}, Results: []ValType{I64}}, // 0
			{Params: []ValType{I32}, Results: []ValType{I32}}, // 1
			{Params: []ValType{F32}, Results: []ValType{F32}}, // 2
			{Params: []ValType{F64}, Results: []ValType{F64}}, // 3
			{Params: []ValType{I32}},                          // 4 set-scalar
			{Results: []ValType{I32}},                         // 5 get-scalar
		},
		Imports: []Import{
			{Module: HostNamespace, Name: "roundtrip-u64", Type: 0}, // func 0
			{Module: HostNamespace, Name: "roundtrip-s64", Type: 0}, // func 1
			{Module: HostNamespace, Name: "roundtrip-u32", Type: 1}, // func 2
			{Module: HostNamespace, Name: "roundtrip-s32", Type: 1}, // func 3
			{Module: HostNamespace, Name: "roundtrip-f32", Type: 2}, // func 4
			{Module: HostNamespace, Name: "roundtrip-f64", Type: 3}, // func 5
			{Module: HostNamespace, Name: "set-scalar", Type: 4},    // func 6
			{Module: HostNamespace, Name: "get-scalar", Type: 5},    // func 7
		},
		Funcs: []Func{
			{Type: 0, Body: forward(1, 0)}, // func 8
			{Type: 0, Body: forward(1, 1)}, // func 9
			{Type: 1, Body: forward(1, 2)}, // func 10
			{Type: 1, Body: forward(1, 3)}, // func 11
			{Type: 2, Body: forward(1, 4)}, // func 12
			{Type: 3, Body: forward(1, 5)}, // func 13
			{Type: 4, Body: forward(1, 6)}, // func 14
			{Type: 5, Body: forward(0, 7)}, // func 15
		},
		Exports: []Export{
			{Name: "roundtrip-u64", Func: 8},
			{Name: "roundtrip-s64", Func: 9},
			{Name: "roundtrip-u32", Func: 10},
			{Name: "roundtrip-s32", Func: 11},
			{Name: "roundtrip-f32", Func: 12},
			{Name: "roundtrip-f64", Func: 13},
			{Name: "set-scalar", Func: 14},
			{Name: "get-scalar", Func: 15},
		},
	}
	return m.Encode()
}

// TrapGuest exports an unreachable function and imports nothing.
func TrapGuest() []byte {
	m := &Module{
		Types: []FuncType{
			{},
		},
		Funcs: []Func{
			{Type: 0, Body: NewBody().Unreachable().End()},
		},
		Exports: []Export{
			{Name: "unreachable", Func: 0},
		},
	}
	return m.Encode()
}

// WASIMarkedGuest depends on wasi_snapshot_preview1 without ever calling
// it, so WASI detection and linking can be exercised in isolation.
func WASIMarkedGuest() []byte {
	m := &Module{
		Types: []FuncType{
			{Params: []ValType{I32}}, // 0 proc_exit
			{},                       // 1 thunk
		},
		Imports: []Import{
			{Module: "wasi_snapshot_preview1", Name: "proc_exit", Type: 0},
		},
		Funcs: []Func{
			{Type: 1, Body: NewBody().End()},
		},
		Exports: []Export{
			{Name: "thunk", Func: 1},
		},
	}
	return m.Encode()
}
