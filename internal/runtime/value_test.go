package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPyEqNumericCrossType checks that 1 == 1.0 == True, and that
// nothing compares equal across incompatible tags.
func TestPyEqNumericCrossType(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	assert.True(t, pyEq(Int(1), Float(1.0), h, interns))
	assert.True(t, pyEq(Int(1), True, h, interns))
	assert.True(t, pyEq(Float(1.0), True, h, interns))
	assert.True(t, pyEq(Int(0), False, h, interns))
	assert.False(t, pyEq(Int(1), Bool(false), h, interns))
}

func TestPyEqIncompatibleTagsNeverEqual(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	strID, err := h.Allocate(&HeapString{Text: "1"})
	require.NoError(t, err)
	assert.False(t, pyEq(Int(1), Ref(strID), h, interns))
	assert.False(t, pyEq(None, Int(0), h, interns))
	assert.False(t, pyEq(None, False, h, interns))
}

// TestPyEqHashConsistency checks that py_eq(a,b) implies
// py_hash(a) == py_hash(b) for every hashable pair.
func TestPyEqHashConsistency(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	pairs := [][2]Value{
		{Int(1), Float(1.0)},
		{Int(1), True},
		{Int(0), False},
		{Float(2.5), Float(2.5)},
	}
	for _, p := range pairs {
		require.True(t, pyEq(p[0], p[1], h, interns))
		assert.Equal(t, pyHash(p[0], h, interns), pyHash(p[1], h, interns))
	}
}

func TestPyHashStringContent(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	a, err := h.Allocate(&HeapString{Text: "hello"})
	require.NoError(t, err)
	b, err := h.Allocate(&HeapString{Text: "hello"})
	require.NoError(t, err)
	assert.True(t, pyEq(Ref(a), Ref(b), h, interns))
	assert.Equal(t, pyHash(Ref(a), h, interns), pyHash(Ref(b), h, interns))
}

func TestListsAndDictsAreUnhashable(t *testing.T) {
	h := NewHeap(nil)
	listID, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	assert.False(t, isHashable(Ref(listID), h))

	dictID, err := h.Allocate(NewDict())
	require.NoError(t, err)
	assert.False(t, isHashable(Ref(dictID), h))

	tupleID, err := h.Allocate(&HeapTuple{})
	require.NoError(t, err)
	assert.True(t, isHashable(Ref(tupleID), h))
}

// TestPyIDSingletons checks that singleton Values share one fixed
// identity across the whole execution.
func TestPyIDSingletons(t *testing.T) {
	h := NewHeap(nil)
	assert.Equal(t, pyID(None, h), pyID(None, h))
	assert.Equal(t, pyID(True, h), pyID(True, h))
	assert.Equal(t, pyID(False, h), pyID(False, h))
	assert.NotEqual(t, pyID(True, h), pyID(False, h))
	assert.NotEqual(t, pyID(True, h), pyID(Int(1), h))
}

// TestPyIDDistinctRefs checks that distinct heap allocations get
// distinct ids even with identical content.
func TestPyIDDistinctRefs(t *testing.T) {
	h := NewHeap(nil)
	a, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	b, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	assert.NotEqual(t, pyID(Ref(a), h), pyID(Ref(b), h))
}

func TestIsTruthy(t *testing.T) {
	h := NewHeap(nil)
	assert.False(t, None.IsTruthy(h))
	assert.False(t, False.IsTruthy(h))
	assert.False(t, Int(0).IsTruthy(h))
	assert.False(t, Float(0).IsTruthy(h))
	assert.True(t, Int(1).IsTruthy(h))
	assert.True(t, Ellipsis.IsTruthy(h))

	emptyList, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	assert.False(t, Ref(emptyList).IsTruthy(h))

	fullList, err := h.Allocate(&HeapList{Items: []Value{Int(1)}})
	require.NoError(t, err)
	assert.True(t, Ref(fullList).IsTruthy(h))
}

func TestTypeName(t *testing.T) {
	h := NewHeap(nil)
	assert.Equal(t, "int", Int(1).TypeName(h))
	assert.Equal(t, "float", Float(1).TypeName(h))
	assert.Equal(t, "bool", True.TypeName(h))
	assert.Equal(t, "NoneType", None.TypeName(h))

	listID, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	assert.Equal(t, "list", Ref(listID).TypeName(h))
}

func TestDropReleasesHeapRef(t *testing.T) {
	h := NewHeap(nil)
	id, err := h.Allocate(&HeapString{Text: "x"})
	require.NoError(t, err)
	v := Ref(id)
	v.Drop(h)
	assert.Equal(t, 0, h.LiveObjects())
}

func TestIncRefIfHeapIsNoOpForImmediates(t *testing.T) {
	h := NewHeap(nil)
	// Should not panic on an immediate value with no heap slot.
	v := Int(5).IncRefIfHeap(h)
	assert.Equal(t, Int(5), v)
}
