package runtime

// GetAttr implements py_get_attr. name is an interned
// NameID (the Prepare pass interns every attribute name it sees, the
// same table getattr's string argument is resolved through). obj is
// borrowed, not consumed — callers that own obj keep owning it.
//
// The only attribute-bearing heap type in this core is Exception
// (Open Question 2: setattr/getattr stay scoped to
// exception objects rather than growing a dataclass-like heap type).
func GetAttr(obj Value, name NameID, heap *Heap, interns *Interner) (Value, *ExceptionRaise) {
	if obj.Tag == TagRef {
		if exc, ok := heap.Get(obj.Obj).(*HeapException); ok {
			switch interns.Resolve(name) {
			case "args":
				items, err := messageArgs(exc, heap)
				if err != nil {
					return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
				}
				id, err := heap.Allocate(&HeapTuple{Items: items})
				if err != nil {
					return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
				}
				return Ref(id), nil
			case "message":
				if !exc.HasMsg {
					id, err := heap.Allocate(&HeapString{Text: ""})
					if err != nil {
						return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
					}
					return Ref(id), nil
				}
				id, err := heap.Allocate(&HeapString{Text: exc.Message})
				if err != nil {
					return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
				}
				return Ref(id), nil
			}
		}
	}
	return Value{}, &ExceptionRaise{Kind: AttributeError, Message: "'" + obj.TypeName(heap) + "' object has no attribute '" + interns.Resolve(name) + "'"}
}

func messageArgs(exc *HeapException, heap *Heap) ([]Value, error) {
	if !exc.HasMsg {
		return nil, nil
	}
	id, err := heap.Allocate(&HeapString{Text: exc.Message})
	if err != nil {
		return nil, err
	}
	return []Value{Ref(id)}, nil
}

// SetAttr implements py_set_attr. It takes ownership of
// newVal: on success the value is stored (consuming it); on error it is
// released before the exception is returned, so callers never need to
// drop newVal themselves.
func SetAttr(obj Value, name NameID, newVal Value, heap *Heap, interns *Interner) *ExceptionRaise {
	if obj.Tag == TagRef {
		if exc, ok := heap.GetMut(obj.Obj).(*HeapException); ok && interns.Resolve(name) == "message" {
			s, isStr := stringOf(newVal, heap, interns)
			if !isStr {
				newVal.Drop(heap)
				return &ExceptionRaise{Kind: TypeError, Message: "exception message must be a str"}
			}
			exc.Message = s
			exc.HasMsg = true
			newVal.Drop(heap)
			return nil
		}
	}
	newVal.Drop(heap)
	return &ExceptionRaise{Kind: AttributeError, Message: "'" + obj.TypeName(heap) + "' object has no attribute '" + interns.Resolve(name) + "'"}
}

// Subscript implements `container[index]` surface syntax, lowering to
// the same sequence/dict indexing the evaluator already needs for
// iteration. Both operands are consumed.
func Subscript(container, index Value, heap *Heap, interns *Interner) (Value, *ExceptionRaise) {
	defer func() { container.Drop(heap); index.Drop(heap) }()
	if container.Tag != TagRef {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "'" + container.TypeName(heap) + "' object is not subscriptable"}
	}
	switch d := heap.Get(container.Obj).(type) {
	case *HeapList:
		i, ok := sequenceIndex(index, len(d.Items))
		if !ok {
			return Value{}, &ExceptionRaise{Kind: IndexError, Message: "list index out of range"}
		}
		return d.Items[i].IncRefIfHeap(heap), nil
	case *HeapTuple:
		i, ok := sequenceIndex(index, len(d.Items))
		if !ok {
			return Value{}, &ExceptionRaise{Kind: IndexError, Message: "tuple index out of range"}
		}
		return d.Items[i].IncRefIfHeap(heap), nil
	case *HeapString:
		runes := []rune(d.Text)
		i, ok := sequenceIndex(index, len(runes))
		if !ok {
			return Value{}, &ExceptionRaise{Kind: IndexError, Message: "string index out of range"}
		}
		id, err := heap.Allocate(&HeapString{Text: string(runes[i])})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case *HeapBytes:
		i, ok := sequenceIndex(index, len(d.Data))
		if !ok {
			return Value{}, &ExceptionRaise{Kind: IndexError, Message: "bytes index out of range"}
		}
		return Int(int64(d.Data[i])), nil
	case *HeapDict:
		v, ok := d.Get(index, heap, interns)
		if !ok {
			return Value{}, &ExceptionRaise{Kind: KeyError, Message: pyRepr(index, heap, interns)}
		}
		return v.IncRefIfHeap(heap), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "'" + container.TypeName(heap) + "' object is not subscriptable"}
}

// sequenceIndex resolves a (possibly negative, Python-style) integer
// index against a sequence of length n.
func sequenceIndex(index Value, n int) (int, bool) {
	if index.Tag != TagInt {
		return 0, false
	}
	i := index.I
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}
