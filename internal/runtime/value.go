package runtime

// Tag discriminates the variants of Value.
type Tag uint8

const (
	TagNone Tag = iota
	TagBool
	TagInt
	TagFloat
	TagEllipsis
	TagInternString
	TagRef
	TagBuiltin
)

// Value is the compact tagged union every expression evaluates to.
// Immediate variants (None, Bool, Int, Float, Ellipsis, InternString,
// Builtin) are plain data — copying them is always safe. Ref is an
// owning handle into the Heap: copying a Ref value without IncRef is
// forbidden everywhere in this codebase.
type Value struct {
	Tag Tag
	B   bool
	I   int64
	F   float64
	N   NameID
	Obj ObjectID
	Fn  BuiltinID
}

var (
	None     = Value{Tag: TagNone}
	True     = Value{Tag: TagBool, B: true}
	False    = Value{Tag: TagBool, B: false}
	Ellipsis = Value{Tag: TagEllipsis}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(i int64) Value               { return Value{Tag: TagInt, I: i} }
func Float(f float64) Value           { return Value{Tag: TagFloat, F: f} }
func InternStr(n NameID) Value        { return Value{Tag: TagInternString, N: n} }
func Ref(id ObjectID) Value           { return Value{Tag: TagRef, Obj: id} }
func BuiltinValue(id BuiltinID) Value { return Value{Tag: TagBuiltin, Fn: id} }

// IsTruthy implements truth semantics: False, None, numeric
// zero, and empty string/bytes/list/tuple/dict are falsy.
func (v Value) IsTruthy(heap *Heap) bool {
	switch v.Tag {
	case TagNone:
		return false
	case TagBool:
		return v.B
	case TagInt:
		return v.I != 0
	case TagFloat:
		return v.F != 0
	case TagEllipsis:
		return true
	case TagInternString:
		return true
	case TagBuiltin:
		return true
	case TagRef:
		switch d := heap.Get(v.Obj).(type) {
		case *HeapString:
			return len(d.Text) > 0
		case *HeapBytes:
			return len(d.Data) > 0
		case *HeapList:
			return len(d.Items) > 0
		case *HeapTuple:
			return len(d.Items) > 0
		case *HeapDict:
			return d.len() > 0
		case *HeapException:
			return true
		}
	}
	return true
}

// IncRefIfHeap bumps the heap refcount when v is a Ref, a no-op
// otherwise. Use this whenever a Value is duplicated into a second
// owning location (namespace slot, container element, argument bundle).
func (v Value) IncRefIfHeap(heap *Heap) Value {
	if v.Tag == TagRef {
		heap.IncRef(v.Obj)
	}
	return v
}

// Drop releases any heap reference v owns. Every code path that
// discards a Value — a dropped statement result, an old slot occupant,
// an argument on an error path — must route through Drop.
func (v Value) Drop(heap *Heap) {
	if v.Tag == TagRef {
		heap.DecRef(v.Obj)
	}
}

// TypeName returns the canonical Python type name for v.
func (v Value) TypeName(heap *Heap) string {
	switch v.Tag {
	case TagNone:
		return "NoneType"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagEllipsis:
		return "ellipsis"
	case TagInternString:
		return "str"
	case TagBuiltin:
		return "builtin_function_or_method"
	case TagRef:
		switch heap.Get(v.Obj).(type) {
		case *HeapString:
			return "str"
		case *HeapBytes:
			return "bytes"
		case *HeapList:
			return "list"
		case *HeapTuple:
			return "tuple"
		case *HeapDict:
			return "dict"
		case *HeapException:
			return "exception"
		}
	}
	return "object"
}
