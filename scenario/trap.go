package scenario

import (
	"context"
	"strings"

	"github.com/snowmelt/abicheck/core"
)

// Trap verifies that an abnormal guest termination surfaces as a trap
// with a recognizable reason instead of a clean return.
type Trap struct{}

func NewTrap() core.Scenario { return &Trap{} }

func (s *Trap) Name() string { return "trap" }

func (s *Trap) Imports() *core.ImportTable {
	return &core.ImportTable{Namespace: Namespace}
}

func (s *Trap) Drive(ctx context.Context, guest core.Caller) error {
	_, err := guest.Call(ctx, "unreachable")
	if err == nil {
		return core.Errorf(core.KindAssertion, "unreachable", "export returned instead of trapping")
	}
	if !core.IsKind(err, core.KindTrap) {
		return err
	}
	if !strings.Contains(err.Error(), "unreachable") {
		return core.Errorf(core.KindAssertion, "unreachable", "trap reason not reported: %v", err)
	}
	return nil
}
