package runtime

import "unicode/utf8"

// iterKind discriminates the containers the evaluator can open an
// iterator over. There is no user-visible iterator type in the core —
// iterators only ever live inside the evaluator's for-statement state
// machine and the builtins that drain an iterable.
type iterKind uint8

const (
	iterList iterKind = iota
	iterTuple
	iterString
	iterBytes
	iterDictKeys
	iterRange
)

// Iterator holds the state for a single open iteration. It owns an
// IncRef on its backing container (when Ref-backed) for its whole
// lifetime and releases it exactly once, on Close.
type Iterator struct {
	kind    iterKind
	obj     ObjectID
	hasObj  bool
	idx     int
	runes   []rune // snapshot for string iteration (index by rune, not byte)
	start   int64
	stop    int64
	step    int64
	rangePos int64
	rangeN   int64
}

// NewIterator opens an iterator over v, taking a fresh reference on any
// heap container. The caller retains ownership of v itself (iteration
// never consumes the original binding); Close releases the internal
// reference this call took.
func NewIterator(v Value, heap *Heap) (*Iterator, *ExceptionRaise) {
	if v.Tag == TagRef {
		switch d := heap.Get(v.Obj).(type) {
		case *HeapList:
			heap.IncRef(v.Obj)
			return &Iterator{kind: iterList, obj: v.Obj, hasObj: true}, nil
		case *HeapTuple:
			heap.IncRef(v.Obj)
			return &Iterator{kind: iterTuple, obj: v.Obj, hasObj: true}, nil
		case *HeapString:
			heap.IncRef(v.Obj)
			return &Iterator{kind: iterString, obj: v.Obj, hasObj: true, runes: []rune(d.Text)}, nil
		case *HeapBytes:
			heap.IncRef(v.Obj)
			return &Iterator{kind: iterBytes, obj: v.Obj, hasObj: true}, nil
		case *HeapDict:
			heap.IncRef(v.Obj)
			return &Iterator{kind: iterDictKeys, obj: v.Obj, hasObj: true}, nil
		}
		return nil, &ExceptionRaise{Kind: TypeError, Message: "'" + v.TypeName(heap) + "' object is not iterable"}
	}
	return nil, &ExceptionRaise{Kind: TypeError, Message: "'" + v.TypeName(heap) + "' object is not iterable"}
}

// NewRangeIterator builds an iterator over the arithmetic sequence of
// range(a[,b[,c]]) without any heap allocation. The range builtin
// itself does not use it: range() materialises a list.
func NewRangeIterator(start, stop, step int64) *Iterator {
	n := rangeLen(start, stop, step)
	return &Iterator{kind: iterRange, start: start, stop: stop, step: step, rangeN: n}
}

func rangeLen(start, stop, step int64) int64 {
	if step > 0 {
		if start >= stop {
			return 0
		}
		return (stop-start+step-1) / step
	}
	if step < 0 {
		if start <= stop {
			return 0
		}
		return (start - stop - step - 1) / (-step)
	}
	return 0
}

// Next advances the iterator, returning (value, true, nil) on a step,
// (zero, false, nil) on normal exhaustion, or a non-nil exception on
// failure. The returned Value is owned by the caller (IncRef'd off the
// container where applicable).
func (it *Iterator) Next(heap *Heap) (Value, bool, *ExceptionRaise) {
	switch it.kind {
	case iterList:
		items := heap.Get(it.obj).(*HeapList).Items
		if it.idx >= len(items) {
			return Value{}, false, nil
		}
		v := items[it.idx].IncRefIfHeap(heap)
		it.idx++
		return v, true, nil
	case iterTuple:
		items := heap.Get(it.obj).(*HeapTuple).Items
		if it.idx >= len(items) {
			return Value{}, false, nil
		}
		v := items[it.idx].IncRefIfHeap(heap)
		it.idx++
		return v, true, nil
	case iterString:
		if it.idx >= len(it.runes) {
			return Value{}, false, nil
		}
		r := it.runes[it.idx]
		it.idx++
		buf := make([]byte, utf8.RuneLen(r))
		utf8.EncodeRune(buf, r)
		id, err := heap.Allocate(&HeapString{Text: string(buf)})
		if err != nil {
			return Value{}, false, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), true, nil
	case iterBytes:
		data := heap.Get(it.obj).(*HeapBytes).Data
		if it.idx >= len(data) {
			return Value{}, false, nil
		}
		b := data[it.idx]
		it.idx++
		return Int(int64(b)), true, nil
	case iterDictKeys:
		d := heap.Get(it.obj).(*HeapDict)
		keys := d.Keys()
		if it.idx >= len(keys) {
			return Value{}, false, nil
		}
		v := keys[it.idx].IncRefIfHeap(heap)
		it.idx++
		return v, true, nil
	case iterRange:
		if it.rangePos >= it.rangeN {
			return Value{}, false, nil
		}
		v := it.start + it.rangePos*it.step
		it.rangePos++
		return Int(v), true, nil
	}
	return Value{}, false, nil
}

// Close releases the iterator's internal reference on its container, if
// any. Safe to call more than once.
func (it *Iterator) Close(heap *Heap) {
	if it.hasObj {
		heap.DecRef(it.obj)
		it.hasObj = false
	}
}
