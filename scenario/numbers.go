package scenario

import (
	"context"
	"math"

	"github.com/snowmelt/abicheck/core"
)

// Numbers verifies scalar identity across the boundary: the guest exports
// roundtrip functions that forward to identity host imports, plus a
// set/get pair over a host-side scalar cell. Integer and infinity values
// are compared bit for bit; NaN is checked for NaN-ness only.
type Numbers struct {
	scalar uint32
}

func NewNumbers() core.Scenario { return &Numbers{} }

func (s *Numbers) Name() string { return "numbers" }

func (s *Numbers) Imports() *core.ImportTable {
	identity := func(context.Context, []uint64) error { return nil }
	return &core.ImportTable{
		Namespace: Namespace,
		Funcs: []core.Import{
			{Name: "roundtrip-u64", Params: []core.ValueType{core.I64}, Results: []core.ValueType{core.I64}, Func: identity},
			{Name: "roundtrip-s64", Params: []core.ValueType{core.I64}, Results: []core.ValueType{core.I64}, Func: identity},
			{Name: "roundtrip-u32", Params: []core.ValueType{core.I32}, Results: []core.ValueType{core.I32}, Func: identity},
			{Name: "roundtrip-s32", Params: []core.ValueType{core.I32}, Results: []core.ValueType{core.I32}, Func: identity},
			{Name: "roundtrip-f32", Params: []core.ValueType{core.F32}, Results: []core.ValueType{core.F32}, Func: identity},
			{Name: "roundtrip-f64", Params: []core.ValueType{core.F64}, Results: []core.ValueType{core.F64}, Func: identity},
			{
				Name:   "set-scalar",
				Params: []core.ValueType{core.I32},
				Func: func(_ context.Context, stack []uint64) error {
					s.scalar = uint32(stack[0])
					return nil
				},
			},
			{
				Name:    "get-scalar",
				Results: []core.ValueType{core.I32},
				Func: func(_ context.Context, stack []uint64) error {
					stack[0] = uint64(s.scalar)
					return nil
				},
			},
		},
	}
}

func (s *Numbers) Drive(ctx context.Context, guest core.Caller) error {
	u64Cases := []uint64{1, 0, math.MaxUint64}
	for _, v := range u64Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-u64", v); err != nil {
			return err
		}
	}

	s64Cases := []int64{1, math.MinInt64, math.MaxInt64}
	for _, v := range s64Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-s64", uint64(v)); err != nil {
			return err
		}
	}

	// 32-bit values travel in the low half of the stack slot.
	u32Cases := []uint32{1, 0, math.MaxUint32}
	for _, v := range u32Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-u32", uint64(v)); err != nil {
			return err
		}
	}

	s32Cases := []int32{1, math.MinInt32, math.MaxInt32}
	for _, v := range s32Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-s32", uint64(uint32(v))); err != nil {
			return err
		}
	}

	f32Cases := []float32{1.0, float32(math.Inf(1)), float32(math.Inf(-1))}
	for _, v := range f32Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-f32", uint64(math.Float32bits(v))); err != nil {
			return err
		}
	}
	if err := s.roundtripNaN32(ctx, guest); err != nil {
		return err
	}

	f64Cases := []float64{1.0, math.Inf(1), math.Inf(-1)}
	for _, v := range f64Cases {
		if err := s.roundtrip(ctx, guest, "roundtrip-f64", math.Float64bits(v)); err != nil {
			return err
		}
	}
	if err := s.roundtripNaN64(ctx, guest); err != nil {
		return err
	}

	for _, v := range []uint64{2, 4} {
		if _, err := guest.Call(ctx, "set-scalar", v); err != nil {
			return err
		}
		results, err := guest.Call(ctx, "get-scalar")
		if err != nil {
			return err
		}
		if len(results) != 1 || results[0] != v {
			return core.Errorf(core.KindAssertion, "get-scalar", "got %v, want [%d]", results, v)
		}
	}

	return nil
}

func (s *Numbers) roundtrip(ctx context.Context, guest core.Caller, name string, arg uint64) error {
	results, err := guest.Call(ctx, name, arg)
	if err != nil {
		return err
	}
	if len(results) != 1 || results[0] != arg {
		return core.Errorf(core.KindAssertion, name, "got %v, want [%#x]", results, arg)
	}
	return nil
}

// NaN payloads may be canonicalized by the engine, so only NaN-ness is
// required to survive the roundtrip.
func (s *Numbers) roundtripNaN32(ctx context.Context, guest core.Caller) error {
	results, err := guest.Call(ctx, "roundtrip-f32", uint64(math.Float32bits(float32(math.NaN()))))
	if err != nil {
		return err
	}
	if len(results) != 1 || !math.IsNaN(float64(math.Float32frombits(uint32(results[0])))) {
		return core.Errorf(core.KindAssertion, "roundtrip-f32", "got %v, want NaN", results)
	}
	return nil
}

func (s *Numbers) roundtripNaN64(ctx context.Context, guest core.Caller) error {
	results, err := guest.Call(ctx, "roundtrip-f64", math.Float64bits(math.NaN()))
	if err != nil {
		return err
	}
	if len(results) != 1 || !math.IsNaN(math.Float64frombits(results[0])) {
		return core.Errorf(core.KindAssertion, "roundtrip-f64", "got %v, want NaN", results)
	}
	return nil
}
