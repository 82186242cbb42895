// Package wasmgen synthesizes the small guest modules the harness and its
// tests need, so no binary fixtures are checked in. It emits only the
// subset of the binary format those guests use: function types over the
// four core value types, function imports, forwarding bodies, and exports.
package wasmgen

// ValType is a core wasm value type byte as it appears in the binary format.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// FuncType is a function signature entry for the type section.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import; Type indexes the module's type section.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a locally defined function with an already-encoded body.
// The body must end with the end opcode.
type Func struct {
	Type uint32
	Body []byte
}

// Export names a function in the combined (imports first) index space.
type Export struct {
	Name string
	Func uint32
}

// Module is a minimal wasm module description.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []Func
	Exports []Export
}

const (
	secType     = 0x01
	secImport   = 0x02
	secFunction = 0x03
	secExport   = 0x07
	secCode     = 0x0a

	importKindFunc = 0x00
	exportKindFunc = 0x00
	funcTypeTag    = 0x60
)

// Encode renders the module in the binary format.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.Types) > 0 {
		var p []byte
		p = appendUleb128(p, uint64(len(m.Types)))
		for _, t := range m.Types {
			p = append(p, funcTypeTag)
			p = appendUleb128(p, uint64(len(t.Params)))
			for _, v := range t.Params {
				p = append(p, byte(v))
			}
			p = appendUleb128(p, uint64(len(t.Results)))
			for _, v := range t.Results {
				p = append(p, byte(v))
			}
		}
		out = appendSection(out, secType, p)
	}

	if len(m.Imports) > 0 {
		var p []byte
		p = appendUleb128(p, uint64(len(m.Imports)))
		for _, im := range m.Imports {
			p = appendName(p, im.Module)
			p = appendName(p, im.Name)
			p = append(p, importKindFunc)
			p = appendUleb128(p, uint64(im.Type))
		}
		out = appendSection(out, secImport, p)
	}

	if len(m.Funcs) > 0 {
		var p []byte
		p = appendUleb128(p, uint64(len(m.Funcs)))
		for _, f := range m.Funcs {
			p = appendUleb128(p, uint64(f.Type))
		}
		out = appendSection(out, secFunction, p)
	}

	if len(m.Exports) > 0 {
		var p []byte
		p = appendUleb128(p, uint64(len(m.Exports)))
		for _, e := range m.Exports {
			p = appendName(p, e.Name)
			p = append(p, exportKindFunc)
			p = appendUleb128(p, uint64(e.Func))
		}
		out = appendSection(out, secExport, p)
	}

	if len(m.Funcs) > 0 {
		var p []byte
		p = appendUleb128(p, uint64(len(m.Funcs)))
		for _, f := range m.Funcs {
			var entry []byte
			entry = appendUleb128(entry, 0) // no local declarations
			entry = append(entry, f.Body...)
			p = appendUleb128(p, uint64(len(entry)))
			p = append(p, entry...)
		}
		out = appendSection(out, secCode, p)
	}

	return out
}

func appendSection(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = appendUleb128(dst, uint64(len(payload)))
	return append(dst, payload...)
}

func appendName(dst []byte, s string) []byte {
	dst = appendUleb128(dst, uint64(len(s)))
	return append(dst, s...)
}

const (
	opUnreachable = 0x00
	opEnd         = 0x0b
	opCall        = 0x10
	opLocalGet    = 0x20
	opI32Const    = 0x41
	opI64Const    = 0x42
)

// Body builds a function body instruction by instruction.
type Body struct {
	buf []byte
}

func NewBody() *Body { return &Body{} }

func (b *Body) LocalGet(i uint32) *Body {
	b.buf = append(b.buf, opLocalGet)
	b.buf = appendUleb128(b.buf, uint64(i))
	return b
}

func (b *Body) Call(i uint32) *Body {
	b.buf = append(b.buf, opCall)
	b.buf = appendUleb128(b.buf, uint64(i))
	return b
}

func (b *Body) I32Const(v int32) *Body {
	b.buf = append(b.buf, opI32Const)
	b.buf = appendSleb128(b.buf, int64(v))
	return b
}

func (b *Body) I64Const(v int64) *Body {
	b.buf = append(b.buf, opI64Const)
	b.buf = appendSleb128(b.buf, v)
	return b
}

func (b *Body) Unreachable() *Body {
	b.buf = append(b.buf, opUnreachable)
	return b
}

func (b *Body) End() []byte {
	return append(b.buf, opEnd)
}

// forward builds a body that pushes the function's own parameters and
// tail-calls (by plain call) the function at index callee.
func forward(nparams int, callee uint32) []byte {
	b := NewBody()
	for i := 0; i < nparams; i++ {
		b.LocalGet(uint32(i))
	}
	return b.Call(callee).End()
}
