package prepare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortesi/monty/internal/compiler"
	"github.com/cortesi/monty/internal/runtime"
)

func TestPrepareResolvesInputSlots(t *testing.T) {
	mod, perr := compiler.Parse("a+b")
	require.Nil(t, perr)

	prepared, err := Prepare(mod, []string{"a", "b"}, runtime.NewRegistry())
	require.Nil(t, err)
	assert.Equal(t, 2, prepared.InputCount)
	assert.GreaterOrEqual(t, prepared.NumSlots, 2)
}

func TestPrepareBindsKnownBuiltinCallSite(t *testing.T) {
	mod, perr := compiler.Parse("len([1,2,3])")
	require.Nil(t, perr)

	_, err := Prepare(mod, nil, runtime.NewRegistry())
	assert.Nil(t, err)
}

func TestPrepareRejectsUnknownCallTarget(t *testing.T) {
	mod, perr := compiler.Parse("totally_not_a_builtin(1)")
	require.Nil(t, perr)

	_, err := Prepare(mod, nil, runtime.NewRegistry())
	require.NotNil(t, err)
	assert.Equal(t, ErrUnknownCall, err.Kind)
}

func TestPrepareAssignsDistinctSlotsPerName(t *testing.T) {
	mod, perr := compiler.Parse("x=1\ny=2\nx+y")
	require.Nil(t, perr)

	prepared, err := Prepare(mod, nil, runtime.NewRegistry())
	require.Nil(t, err)
	assert.GreaterOrEqual(t, prepared.NumSlots, 2)
}

func TestPrepareReusesSlotForRepeatedName(t *testing.T) {
	mod, perr := compiler.Parse("x=1\nx=2\nx")
	require.Nil(t, perr)

	prepared, err := Prepare(mod, nil, runtime.NewRegistry())
	require.Nil(t, err)
	assert.Equal(t, 1, prepared.NumSlots)
}
