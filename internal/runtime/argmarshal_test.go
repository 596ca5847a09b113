package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgValuesShapesCollapse(t *testing.T) {
	assert.Equal(t, 0, NewArgs(nil, nil).Len())
	assert.Equal(t, 1, NewArgs([]Value{Int(1)}, nil).Len())
	assert.Equal(t, 2, NewArgs([]Value{Int(1), Int(2)}, nil).Len())
	assert.Equal(t, 3, NewArgs([]Value{Int(1), Int(2), Int(3)}, nil).Len())
}

func TestArgValuesPositionalAccess(t *testing.T) {
	a := TwoArgs(Int(1), Int(2))
	assert.Equal(t, Int(1), a.Positional(0))
	assert.Equal(t, Int(2), a.Positional(1))
}

func TestArgValuesKwargLookup(t *testing.T) {
	interns := NewInterner()
	n := interns.Intern("default")
	a := NewArgs([]Value{Int(1)}, []KwValue{{Name: n, Val: Int(9)}})
	v, ok := a.Kwarg(n)
	require.True(t, ok)
	assert.Equal(t, Int(9), v)

	_, ok = a.Kwarg(interns.Intern("missing"))
	assert.False(t, ok)
}

// TestArgValuesDropReleasesEveryShape checks the dispatch function must
// release every still-held element on any error path, for every bundle
// shape.
func TestArgValuesDropReleasesEveryShape(t *testing.T) {
	h := NewHeap(nil)

	one, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	OneArg(Ref(one)).Drop(h)
	assert.Equal(t, 0, h.LiveObjects())

	two1, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	two2, err := h.Allocate(&HeapString{Text: "b"})
	require.NoError(t, err)
	TwoArgs(Ref(two1), Ref(two2)).Drop(h)
	assert.Equal(t, 0, h.LiveObjects())

	p1, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	p2, err := h.Allocate(&HeapString{Text: "b"})
	require.NoError(t, err)
	p3, err := h.Allocate(&HeapString{Text: "c"})
	require.NoError(t, err)
	kwVal, err := h.Allocate(&HeapString{Text: "kw"})
	require.NoError(t, err)
	interns := NewInterner()
	bundle := NewArgs([]Value{Ref(p1), Ref(p2), Ref(p3)}, []KwValue{{Name: interns.Intern("k"), Val: Ref(kwVal)}})
	bundle.Drop(h)
	assert.Equal(t, 0, h.LiveObjects())
}
