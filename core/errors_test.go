package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("tagged error", func(t *testing.T) {
		err := Errorf(KindLoad, "read", "no such file: %s", "missing.wasm")
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindLoad, kind)
		assert.Contains(t, err.Error(), "load: read:")
	})

	t.Run("wrapped tagged error", func(t *testing.T) {
		inner := WrapError(KindLink, "instantiate", errors.New("module[imports] not instantiated"))
		outer := fmt.Errorf("scenario many-arguments: %w", inner)
		assert.True(t, IsKind(outer, KindLink))
		assert.False(t, IsKind(outer, KindTrap))
	})

	t.Run("untagged error", func(t *testing.T) {
		_, ok := KindOf(errors.New("plain"))
		assert.False(t, ok)
	})
}

func TestAssertionError(t *testing.T) {
	ae := &AssertionError{Func: "many-arguments", Position: 20, Got: 999, Want: 20}
	err := WrapError(KindAssertion, "call", ae)

	assert.True(t, IsKind(err, KindAssertion))

	var got *AssertionError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 20, got.Position)
	assert.Equal(t, "many-arguments: argument 20: got 999, want 20", got.Error())
}
