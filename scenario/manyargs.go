package scenario

import (
	"context"

	"github.com/snowmelt/abicheck/core"
)

const manyArgumentsArity = 20

// ManyArguments verifies that twenty integer arguments cross the
// host/guest boundary positionally intact. The driver invokes the guest
// export with literals 1..20; the guest forwards them to the host import,
// which must observe value i at position i with no reordering, truncation
// or sign corruption.
type ManyArguments struct {
	called bool
}

func NewManyArguments() core.Scenario { return &ManyArguments{} }

func (s *ManyArguments) Name() string { return "many-arguments" }

func (s *ManyArguments) Imports() *core.ImportTable {
	params := make([]core.ValueType, manyArgumentsArity)
	for i := range params {
		params[i] = core.I64
	}
	return &core.ImportTable{
		Namespace: Namespace,
		Funcs: []core.Import{{
			Name:   "many-arguments",
			Params: params,
			Func:   s.observe,
		}},
	}
}

func (s *ManyArguments) observe(_ context.Context, stack []uint64) error {
	for i := 0; i < manyArgumentsArity; i++ {
		if got, want := stack[i], uint64(i+1); got != want {
			return &core.AssertionError{Func: "many-arguments", Position: i + 1, Got: got, Want: want}
		}
	}
	s.called = true
	return nil
}

func (s *ManyArguments) Drive(ctx context.Context, guest core.Caller) error {
	args := make([]uint64, manyArgumentsArity)
	for i := range args {
		args[i] = uint64(i + 1)
	}
	if _, err := guest.Call(ctx, "many-arguments", args...); err != nil {
		return err
	}
	if !s.called {
		return core.Errorf(core.KindAssertion, "many-arguments", "host import was never invoked")
	}
	return nil
}
