package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, it *Iterator, heap *Heap) []Value {
	t.Helper()
	var out []Value
	for {
		v, ok, exc := it.Next(heap)
		require.Nil(t, exc)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func TestRangeIteratorPositiveStep(t *testing.T) {
	h := NewHeap(nil)
	it := NewRangeIterator(0, 5, 1)
	got := drain(t, it, h)
	want := []Value{Int(0), Int(1), Int(2), Int(3), Int(4)}
	assert.Equal(t, want, got)
}

func TestRangeIteratorNegativeStep(t *testing.T) {
	h := NewHeap(nil)
	it := NewRangeIterator(5, 0, -2)
	got := drain(t, it, h)
	want := []Value{Int(5), Int(3), Int(1)}
	assert.Equal(t, want, got)
}

func TestRangeIteratorEmptyWhenStartPastStop(t *testing.T) {
	h := NewHeap(nil)
	it := NewRangeIterator(5, 0, 1)
	got := drain(t, it, h)
	assert.Empty(t, got)
}

// TestIteratorOwnsContainerRef checks that an Iterator holds an extra
// inc-ref on its backing container for its whole lifetime and releases
// it exactly once, on Close.
func TestIteratorOwnsContainerRef(t *testing.T) {
	h := NewHeap(nil)
	listID, err := h.Allocate(&HeapList{Items: []Value{Int(1), Int(2)}})
	require.NoError(t, err)

	it, exc := NewIterator(Ref(listID), h)
	require.Nil(t, exc)
	assert.EqualValues(t, 2, h.RefCount(listID))

	_ = drain(t, it, h)
	it.Close(h)
	assert.EqualValues(t, 1, h.RefCount(listID))

	h.DecRef(listID)
	assert.Equal(t, 0, h.LiveObjects())
}

func TestIteratorOverStringYieldsRunes(t *testing.T) {
	h := NewHeap(nil)
	strID, err := h.Allocate(&HeapString{Text: "ab"})
	require.NoError(t, err)

	it, exc := NewIterator(Ref(strID), h)
	require.Nil(t, exc)
	got := drain(t, it, h)
	it.Close(h)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, TagRef, v.Tag)
		v.Drop(h)
	}
	h.DecRef(strID)
}

func TestIteratorOverNonIterableRaisesTypeError(t *testing.T) {
	h := NewHeap(nil)
	_, exc := NewIterator(Int(5), h)
	require.NotNil(t, exc)
	assert.Equal(t, TypeError, exc.Kind)
}

func TestIteratorOverDictYieldsKeysInInsertionOrder(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	d := NewDict()
	k1, err := h.Allocate(&HeapString{Text: "a"})
	require.NoError(t, err)
	k2, err := h.Allocate(&HeapString{Text: "b"})
	require.NoError(t, err)
	d.Set(Ref(k1), Int(1), h, interns)
	d.Set(Ref(k2), Int(2), h, interns)

	dictID, err := h.Allocate(d)
	require.NoError(t, err)

	it, exc := NewIterator(Ref(dictID), h)
	require.Nil(t, exc)
	got := drain(t, it, h)
	it.Close(h)
	require.Len(t, got, 2)
	s0 := h.Get(got[0].Obj).(*HeapString)
	s1 := h.Get(got[1].Obj).(*HeapString)
	assert.Equal(t, "a", s0.Text)
	assert.Equal(t, "b", s1.Text)
	for _, v := range got {
		v.Drop(h)
	}
	h.DecRef(dictID)
}
