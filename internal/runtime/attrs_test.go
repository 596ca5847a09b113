package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetAttrSetAttrOnException exercises py_get_attr/
// py_set_attr against the core's only attribute-bearing heap type
// (DESIGN.md Open Question 2).
func TestGetAttrSetAttrOnException(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	messageName := interns.Intern("message")
	unknownName := interns.Intern("nope")

	excID, err := h.Allocate(&HeapException{Kind: ValueError, Message: "boom", HasMsg: true})
	require.NoError(t, err)
	exc := Ref(excID)

	v, excRaise := GetAttr(exc, messageName, h, interns)
	require.Nil(t, excRaise)
	require.Equal(t, TagRef, v.Tag)
	s, ok := h.Get(v.Obj).(*HeapString)
	require.True(t, ok)
	assert.Equal(t, "boom", s.Text)
	v.Drop(h)

	_, excRaise = GetAttr(exc, unknownName, h, interns)
	require.NotNil(t, excRaise)
	assert.Equal(t, AttributeError, excRaise.Kind)

	newVal, err := h.Allocate(&HeapString{Text: "changed"})
	require.NoError(t, err)
	excRaise = SetAttr(exc, messageName, Ref(newVal), h, interns)
	assert.Nil(t, excRaise)

	updated := h.Get(excID).(*HeapException)
	assert.Equal(t, "changed", updated.Message)
}

// TestSetAttrOnNonAttributeTypeReleasesValue checks the setattr
// contract: on error, the value argument is released.
func TestSetAttrOnNonAttributeTypeReleasesValue(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	name := interns.Intern("x")

	valID, err := h.Allocate(&HeapString{Text: "v"})
	require.NoError(t, err)

	excRaise := SetAttr(Int(1), name, Ref(valID), h, interns)
	require.NotNil(t, excRaise)
	assert.Equal(t, AttributeError, excRaise.Kind)
	assert.Equal(t, 0, h.LiveObjects())
}

// TestSetAttrWrongTypeReleasesValue checks the message-must-be-str
// branch also releases the rejected value.
func TestSetAttrWrongTypeReleasesValue(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	messageName := interns.Intern("message")

	excID, err := h.Allocate(&HeapException{Kind: ValueError})
	require.NoError(t, err)

	valID, err := h.Allocate(&HeapList{})
	require.NoError(t, err)

	excRaise := SetAttr(Ref(excID), messageName, Ref(valID), h, interns)
	require.NotNil(t, excRaise)
	assert.Equal(t, TypeError, excRaise.Kind)
	assert.Equal(t, 1, h.LiveObjects())
}

// TestSubscriptNegativeIndex checks Python-style negative indexing.
func TestSubscriptNegativeIndex(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	listID, err := h.Allocate(&HeapList{Items: []Value{Int(1), Int(2), Int(3)}})
	require.NoError(t, err)

	v, excRaise := Subscript(Ref(listID).IncRefIfHeap(h), Int(-1), h, interns)
	require.Nil(t, excRaise)
	assert.Equal(t, Int(3), v)
}

func TestSubscriptOutOfRange(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	listID, err := h.Allocate(&HeapList{Items: []Value{Int(1)}})
	require.NoError(t, err)

	_, excRaise := Subscript(Ref(listID).IncRefIfHeap(h), Int(5), h, interns)
	require.NotNil(t, excRaise)
	assert.Equal(t, IndexError, excRaise.Kind)
}

func TestSubscriptDictKeyError(t *testing.T) {
	h := NewHeap(nil)
	interns := NewInterner()
	d := NewDict()
	dictID, err := h.Allocate(d)
	require.NoError(t, err)

	_, excRaise := Subscript(Ref(dictID).IncRefIfHeap(h), Int(1), h, interns)
	require.NotNil(t, excRaise)
	assert.Equal(t, KeyError, excRaise.Kind)
}
