package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocateAndRefcount(t *testing.T) {
	h := NewHeap(nil)
	id, err := h.Allocate(&HeapString{Text: "hi"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.RefCount(id))

	h.IncRef(id)
	assert.EqualValues(t, 2, h.RefCount(id))

	h.DecRef(id)
	assert.EqualValues(t, 1, h.RefCount(id))
	assert.Equal(t, 1, h.LiveObjects())

	h.DecRef(id)
	assert.Equal(t, 0, h.LiveObjects())
}

// TestHeapTeardownDeepList checks dropping a deeply nested composite
// releases every descendant via the explicit work stack without
// overflowing the native call stack.
func TestHeapTeardownDeepList(t *testing.T) {
	h := NewHeap(nil)

	inner, err := h.Allocate(&HeapList{})
	require.NoError(t, err)
	cur := inner
	const depth = 20000
	for i := 0; i < depth; i++ {
		next, err := h.Allocate(&HeapList{Items: []Value{Ref(cur)}})
		require.NoError(t, err)
		cur = next
	}

	assert.Equal(t, depth+1, h.LiveObjects())
	h.DecRef(cur)
	assert.Equal(t, 0, h.LiveObjects())
}

func TestHeapSlotRecycledWithBumpedGeneration(t *testing.T) {
	h := NewHeap(nil)
	id1, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	h.DecRef(id1)

	id2, err := h.Allocate(&HeapString{Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, id1.index, id2.index)
	assert.NotEqual(t, id1.gen, id2.gen)
}

func TestHeapGenerationMismatchPanics(t *testing.T) {
	h := NewHeap(nil)
	id, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	h.DecRef(id)

	assert.Panics(t, func() {
		h.Get(id)
	})
}

func TestBudgetTrackerRefusesAfterExhaustion(t *testing.T) {
	h := NewHeap(&BudgetTracker{Remaining: 2})
	_, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	_, err = h.Allocate(&HeapString{Text: "b"})
	require.NoError(t, err)
	_, err = h.Allocate(&HeapString{Text: "c"})
	require.Error(t, err)
	var allocErr *AllocError
	assert.ErrorAs(t, err, &allocErr)
}

func TestAddressOfIsStablePerObject(t *testing.T) {
	h := NewHeap(nil)
	id, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	a1 := h.AddressOf(id)
	a2 := h.AddressOf(id)
	assert.Equal(t, a1, a2)
}

func TestFreshIDMonotonicAndDistinct(t *testing.T) {
	h := NewHeap(nil)
	a := h.FreshID()
	b := h.FreshID()
	assert.NotEqual(t, a, b)
}

func TestDictChildrenSkipDeletedEntries(t *testing.T) {
	h := NewHeap(nil)
	keyID, err := h.Allocate(&HeapString{Text: "k"})
	require.NoError(t, err)
	valID, err := h.Allocate(&HeapString{Text: "v"})
	require.NoError(t, err)

	interns := NewInterner()
	d := NewDict()
	d.Set(Ref(keyID), Ref(valID), h, interns)
	d.Delete(Ref(keyID), h, interns)
	// A deleted entry's key/val Refs are no longer walked by teardown;
	// the caller is responsible for having already dropped them via
	// Delete's own bookkeeping (dict.go), so this just checks the
	// children walk doesn't resurrect a tombstoned entry.
	stack := d.children(nil)
	assert.Empty(t, stack)
}
