package scenario

import (
	"context"

	"github.com/snowmelt/abicheck/core"
)

// Smoke verifies the minimal synchronous call chain: the guest's thunk
// export must call back into the host's thunk import on the same call
// stack before returning.
type Smoke struct {
	hit bool
}

func NewSmoke() core.Scenario { return &Smoke{} }

func (s *Smoke) Name() string { return "smoke" }

func (s *Smoke) Imports() *core.ImportTable {
	return &core.ImportTable{
		Namespace: Namespace,
		Funcs: []core.Import{{
			Name: "thunk",
			Func: func(context.Context, []uint64) error {
				s.hit = true
				return nil
			},
		}},
	}
}

func (s *Smoke) Drive(ctx context.Context, guest core.Caller) error {
	if _, err := guest.Call(ctx, "thunk"); err != nil {
		return err
	}
	if !s.hit {
		return core.Errorf(core.KindAssertion, "thunk", "guest returned without calling the host")
	}
	return nil
}
