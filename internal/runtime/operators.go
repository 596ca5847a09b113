package runtime

import (
	"math"
	"strings"

	"github.com/cortesi/monty/internal/model"
)

// BinOpEval evaluates a + b (etc.), consuming both operands (the caller
// must not use a/b again). On success the result is a freshly owned
// Value; on failure both operands have already been dropped.
func BinOpEval(op model.BinOp, a, b Value, heap *Heap, interns *Interner) (Value, *ExceptionRaise) {
	defer func() { a.Drop(heap); b.Drop(heap) }()

	if op == model.Add && (a.Tag == TagRef || b.Tag == TagRef || a.Tag == TagInternString || b.Tag == TagInternString) {
		if v, ok, exc := tryConcat(a, b, heap, interns); ok || exc != nil {
			return v, exc
		}
	}
	if op == model.Mul {
		if v, ok, exc := trySequenceRepeat(a, b, heap, interns); ok || exc != nil {
			return v, exc
		}
	}

	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for " + op.String() + ": '" + a.TypeName(heap) + "' and '" + b.TypeName(heap) + "'"}
	}

	useFloat := a.Tag == TagFloat || b.Tag == TagFloat
	switch op {
	case model.Add:
		if useFloat {
			return Float(asFloat(a) + asFloat(b)), nil
		}
		return Int(asInt(a) + asInt(b)), nil
	case model.Sub:
		if useFloat {
			return Float(asFloat(a) - asFloat(b)), nil
		}
		return Int(asInt(a) - asInt(b)), nil
	case model.Mul:
		if useFloat {
			return Float(asFloat(a) * asFloat(b)), nil
		}
		return Int(asInt(a) * asInt(b)), nil
	case model.Div:
		if asFloat(b) == 0 {
			return Value{}, &ExceptionRaise{Kind: ZeroDivisionError, Message: "division by zero"}
		}
		return Float(asFloat(a) / asFloat(b)), nil
	case model.FloorDiv:
		if useFloat {
			if asFloat(b) == 0 {
				return Value{}, &ExceptionRaise{Kind: ZeroDivisionError, Message: "float floor division by zero"}
			}
			return Float(math.Floor(asFloat(a) / asFloat(b))), nil
		}
		ib := asInt(b)
		if ib == 0 {
			return Value{}, &ExceptionRaise{Kind: ZeroDivisionError, Message: "integer division or modulo by zero"}
		}
		return Int(floorDivInt(asInt(a), ib)), nil
	case model.Mod:
		if useFloat {
			fb := asFloat(b)
			if fb == 0 {
				return Value{}, &ExceptionRaise{Kind: ZeroDivisionError, Message: "float modulo"}
			}
			return Float(math.Mod(math.Mod(asFloat(a), fb)+fb, fb)), nil
		}
		ib := asInt(b)
		if ib == 0 {
			return Value{}, &ExceptionRaise{Kind: ZeroDivisionError, Message: "integer division or modulo by zero"}
		}
		return Int(floorModInt(asInt(a), ib)), nil
	case model.Pow:
		return powValue(a, b, useFloat)
	case model.BitAnd:
		if useFloat {
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for &: 'float'"}
		}
		return Int(asInt(a) & asInt(b)), nil
	case model.BitOr:
		if useFloat {
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for |: 'float'"}
		}
		return Int(asInt(a) | asInt(b)), nil
	case model.BitXor:
		if useFloat {
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for ^: 'float'"}
		}
		return Int(asInt(a) ^ asInt(b)), nil
	case model.LShift:
		if useFloat {
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for <<: 'float'"}
		}
		return Int(asInt(a) << uint(asInt(b))), nil
	case model.RShift:
		if useFloat {
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unsupported operand type(s) for >>: 'float'"}
		}
		return Int(asInt(a) >> uint(asInt(b))), nil
	}
	return Value{}, &ExceptionRaise{Kind: NotImplementedError, Message: "operator not implemented"}
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func powValue(a, b Value, useFloat bool) (Value, *ExceptionRaise) {
	if !useFloat && asInt(b) >= 0 {
		result := int64(1)
		base := asInt(a)
		exp := asInt(b)
		for i := int64(0); i < exp; i++ {
			result *= base
		}
		return Int(result), nil
	}
	return Float(math.Pow(asFloat(a), asFloat(b))), nil
}

// tryConcat implements `+` for str/bytes/list/tuple — BinOp lumps these
// in with the other arithmetic operators, but they operate on heap
// containers rather than numerics.
func tryConcat(a, b Value, heap *Heap, interns *Interner) (Value, bool, *ExceptionRaise) {
	as, aIsStr := stringOf(a, heap, interns)
	bs, bIsStr := stringOf(b, heap, interns)
	if aIsStr && bIsStr {
		id, err := heap.Allocate(&HeapString{Text: as + bs})
		if err != nil {
			return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), true, nil
	}
	if ab, aIsBytes := bytesOf(a, heap); aIsBytes {
		if bb, bIsBytes := bytesOf(b, heap); bIsBytes {
			out := make([]byte, 0, len(ab)+len(bb))
			out = append(out, ab...)
			out = append(out, bb...)
			id, err := heap.Allocate(&HeapBytes{Data: out})
			if err != nil {
				return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
			}
			return Ref(id), true, nil
		}
	}
	if al, aIsList := listOf(a, heap); aIsList {
		if bl, bIsList := listOf(b, heap); bIsList {
			out := make([]Value, 0, len(al)+len(bl))
			for _, v := range al {
				out = append(out, v.IncRefIfHeap(heap))
			}
			for _, v := range bl {
				out = append(out, v.IncRefIfHeap(heap))
			}
			id, err := heap.Allocate(&HeapList{Items: out})
			if err != nil {
				return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
			}
			return Ref(id), true, nil
		}
	}
	if at, aIsTuple := tupleOf(a, heap); aIsTuple {
		if bt, bIsTuple := tupleOf(b, heap); bIsTuple {
			out := make([]Value, 0, len(at)+len(bt))
			for _, v := range at {
				out = append(out, v.IncRefIfHeap(heap))
			}
			for _, v := range bt {
				out = append(out, v.IncRefIfHeap(heap))
			}
			id, err := heap.Allocate(&HeapTuple{Items: out})
			if err != nil {
				return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
			}
			return Ref(id), true, nil
		}
	}
	if a.Tag == TagRef || b.Tag == TagRef {
		return Value{}, false, nil
	}
	return Value{}, false, nil
}

// trySequenceRepeat implements `seq * n` / `n * seq`.
func trySequenceRepeat(a, b Value, heap *Heap, interns *Interner) (Value, bool, *ExceptionRaise) {
	seq, n, ok := pickSeqAndCount(a, b, heap)
	if !ok {
		return Value{}, false, nil
	}
	if n < 0 {
		n = 0
	}
	if s, isStr := stringOf(seq, heap, interns); isStr {
		id, err := heap.Allocate(&HeapString{Text: strings.Repeat(s, int(n))})
		if err != nil {
			return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), true, nil
	}
	if items, isList := listOf(seq, heap); isList {
		out := make([]Value, 0, len(items)*int(n))
		for i := int64(0); i < n; i++ {
			for _, v := range items {
				out = append(out, v.IncRefIfHeap(heap))
			}
		}
		id, err := heap.Allocate(&HeapList{Items: out})
		if err != nil {
			return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), true, nil
	}
	if items, isTuple := tupleOf(seq, heap); isTuple {
		out := make([]Value, 0, len(items)*int(n))
		for i := int64(0); i < n; i++ {
			for _, v := range items {
				out = append(out, v.IncRefIfHeap(heap))
			}
		}
		id, err := heap.Allocate(&HeapTuple{Items: out})
		if err != nil {
			return Value{}, true, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), true, nil
	}
	return Value{}, false, nil
}

func pickSeqAndCount(a, b Value, heap *Heap) (Value, int64, bool) {
	isSeq := func(v Value) bool {
		if v.Tag != TagRef {
			return false
		}
		switch heap.Get(v.Obj).(type) {
		case *HeapString, *HeapList, *HeapTuple:
			return true
		}
		return false
	}
	if isSeq(a) && b.Tag == TagInt {
		return a, b.I, true
	}
	if isSeq(b) && a.Tag == TagInt {
		return b, a.I, true
	}
	return Value{}, 0, false
}

func stringOf(v Value, heap *Heap, interns *Interner) (string, bool) {
	if v.Tag == TagInternString {
		return interns.Resolve(v.N), true
	}
	if v.Tag != TagRef {
		return "", false
	}
	if s, ok := heap.Get(v.Obj).(*HeapString); ok {
		return s.Text, true
	}
	return "", false
}

func bytesOf(v Value, heap *Heap) ([]byte, bool) {
	if v.Tag != TagRef {
		return nil, false
	}
	if b, ok := heap.Get(v.Obj).(*HeapBytes); ok {
		return b.Data, true
	}
	return nil, false
}

func listOf(v Value, heap *Heap) ([]Value, bool) {
	if v.Tag != TagRef {
		return nil, false
	}
	if l, ok := heap.Get(v.Obj).(*HeapList); ok {
		return l.Items, true
	}
	return nil, false
}

func tupleOf(v Value, heap *Heap) ([]Value, bool) {
	if v.Tag != TagRef {
		return nil, false
	}
	if t, ok := heap.Get(v.Obj).(*HeapTuple); ok {
		return t.Items, true
	}
	return nil, false
}

// UnaryEval evaluates a unary operator, consuming x.
func UnaryEval(op model.UnaryOp, x Value, heap *Heap) (Value, *ExceptionRaise) {
	switch op {
	case model.Not:
		truthy := x.IsTruthy(heap)
		x.Drop(heap)
		return Bool(!truthy), nil
	case model.Neg:
		defer x.Drop(heap)
		switch x.Tag {
		case TagInt:
			return Int(-x.I), nil
		case TagFloat:
			return Float(-x.F), nil
		case TagBool:
			return Int(-asInt(x)), nil
		}
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "bad operand type for unary -: '" + x.TypeName(heap) + "'"}
	case model.Pos:
		defer x.Drop(heap)
		switch x.Tag {
		case TagInt:
			return Int(x.I), nil
		case TagFloat:
			return Float(x.F), nil
		case TagBool:
			return Int(asInt(x)), nil
		}
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "bad operand type for unary +: '" + x.TypeName(heap) + "'"}
	case model.Invert:
		defer x.Drop(heap)
		if x.Tag == TagInt {
			return Int(^x.I), nil
		}
		if x.Tag == TagBool {
			return Int(^asInt(x)), nil
		}
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "bad operand type for unary ~: '" + x.TypeName(heap) + "'"}
	}
	return Value{}, &ExceptionRaise{Kind: NotImplementedError}
}

// CmpEval evaluates a comparison/membership/identity operator, consuming
// both operands.
func CmpEval(op model.CmpOp, a, b Value, heap *Heap, interns *Interner) (Value, *ExceptionRaise) {
	switch op {
	case model.Is:
		defer func() { a.Drop(heap); b.Drop(heap) }()
		return Bool(pyID(a, heap) == pyID(b, heap)), nil
	case model.IsNot:
		defer func() { a.Drop(heap); b.Drop(heap) }()
		return Bool(pyID(a, heap) != pyID(b, heap)), nil
	case model.In, model.NotIn:
		found, exc := containsEval(b, a, heap, interns)
		a.Drop(heap)
		b.Drop(heap)
		if exc != nil {
			return Value{}, exc
		}
		if op == model.NotIn {
			return Bool(!found), nil
		}
		return Bool(found), nil
	}
	defer func() { a.Drop(heap); b.Drop(heap) }()
	if isNumeric(a) && isNumeric(b) || (a.Tag == TagRef && b.Tag == TagRef) || a.Tag == TagInternString && b.Tag == TagInternString {
		ord, ok := compareOrder(a, b, heap, interns)
		if !ok {
			switch op {
			case model.Eq:
				return Bool(false), nil
			case model.NotEq:
				return Bool(true), nil
			}
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "'" + op.String() + "' not supported between instances of '" + a.TypeName(heap) + "' and '" + b.TypeName(heap) + "'"}
		}
		switch op {
		case model.Eq:
			return Bool(ord == 0), nil
		case model.NotEq:
			return Bool(ord != 0), nil
		case model.Lt:
			return Bool(ord < 0), nil
		case model.LtE:
			return Bool(ord <= 0), nil
		case model.Gt:
			return Bool(ord > 0), nil
		case model.GtE:
			return Bool(ord >= 0), nil
		}
	}
	switch op {
	case model.Eq:
		return Bool(pyEq(a, b, heap, interns)), nil
	case model.NotEq:
		return Bool(!pyEq(a, b, heap, interns)), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "'" + op.String() + "' not supported between instances of '" + a.TypeName(heap) + "' and '" + b.TypeName(heap) + "'"}
}

// compareOrder returns -1/0/1 when a and b are ordered types (numeric,
// string, or tuples/lists compared element by element, a shorter
// prefix ordering first). ok is
// false when the types cannot be ordered, in which case callers fall
// back to Eq/NotEq via pyEq.
func compareOrder(a, b Value, heap *Heap, interns *Interner) (int, bool) {
	if isNumeric(a) && isNumeric(b) {
		fa, fb := asFloat(a), asFloat(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Tag == TagInternString && b.Tag == TagInternString {
		sa, sb := interns.Resolve(a.N), interns.Resolve(b.N)
		return strings.Compare(sa, sb), true
	}
	as, aIsStr := stringOf(a, heap, interns)
	bs, bIsStr := stringOf(b, heap, interns)
	if aIsStr && bIsStr {
		return strings.Compare(as, bs), true
	}
	al, aIsList := listOf(a, heap)
	bl, bIsList := listOf(b, heap)
	if aIsList && bIsList {
		return compareSeq(al, bl, heap, interns)
	}
	at, aIsTuple := tupleOf(a, heap)
	bt, bIsTuple := tupleOf(b, heap)
	if aIsTuple && bIsTuple {
		return compareSeq(at, bt, heap, interns)
	}
	return 0, false
}

func compareSeq(a, b []Value, heap *Heap, interns *Interner) (int, bool) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if ord, ok := compareOrder(a[i], b[i], heap, interns); ok {
			if ord != 0 {
				return ord, true
			}
		} else if !pyEq(a[i], b[i], heap, interns) {
			return 0, false
		}
	}
	switch {
	case len(a) < len(b):
		return -1, true
	case len(a) > len(b):
		return 1, true
	default:
		return 0, true
	}
}

func containsEval(container, item Value, heap *Heap, interns *Interner) (bool, *ExceptionRaise) {
	if s, ok := stringOf(item, heap, interns); ok {
		if hay, ok := stringOf(container, heap, interns); ok {
			return strings.Contains(hay, s), nil
		}
	}
	if container.Tag == TagRef {
		switch d := heap.Get(container.Obj).(type) {
		case *HeapList:
			for _, v := range d.Items {
				if pyEq(v, item, heap, interns) {
					return true, nil
				}
			}
			return false, nil
		case *HeapTuple:
			for _, v := range d.Items {
				if pyEq(v, item, heap, interns) {
					return true, nil
				}
			}
			return false, nil
		case *HeapDict:
			_, ok := d.Get(item, heap, interns)
			return ok, nil
		}
	}
	return false, &ExceptionRaise{Kind: TypeError, Message: "argument of type '" + container.TypeName(heap) + "' is not iterable"}
}

// pyID implements py_id. Singletons share a fixed
// sentinel; Refs use the heap's stable slot-derived address;
// InternString ids share an identity derived from NameID (two
// references to the same interned name are always the same identity);
// a Builtin's id is fixed by its BuiltinID; Int and Float draw a fresh
// id from a per-execution monotonic counter so repeated literal
// evaluations never collide — see FreshID on Heap.
func pyID(v Value, heap *Heap) uint64 {
	switch v.Tag {
	case TagNone:
		return 1
	case TagEllipsis:
		return 2
	case TagBool:
		if v.B {
			return 3
		}
		return 4
	case TagInternString:
		return 0x1000_0000_0000_0000 | uint64(v.N)
	case TagRef:
		return heap.AddressOf(v.Obj)
	case TagBuiltin:
		return 0x2000_0000_0000_0000 | uint64(v.Fn)
	case TagInt, TagFloat:
		return heap.FreshID()
	}
	return 0
}
