package runtime

// pyEq implements py_eq: structural equality with Python
// rules. Numbers compare across int/float/bool; strings compare by
// content; containers compare element-wise; nothing compares equal
// across incompatible tags (1 == "1" is false).
func pyEq(a, b Value, heap *Heap, interns *Interner) bool {
	if isNumeric(a) && isNumeric(b) {
		return numericEq(a, b)
	}
	if a.Tag != b.Tag {
		switch {
		case a.Tag == TagRef && b.Tag == TagRef:
			// fallthrough below
		case a.Tag == TagInternString || b.Tag == TagInternString:
			// A string literal and a runtime-built str (e.g. from
			// concatenation) carry different tags but must still
			// compare equal by content: 'a'+'b' == 'ab'.
			as, aIsStr := stringOf(a, heap, interns)
			bs, bIsStr := stringOf(b, heap, interns)
			return aIsStr && bIsStr && as == bs
		default:
			return false
		}
	}
	switch a.Tag {
	case TagNone:
		return b.Tag == TagNone
	case TagEllipsis:
		return b.Tag == TagEllipsis
	case TagInternString:
		return b.Tag == TagInternString && a.N == b.N
	case TagBuiltin:
		return b.Tag == TagBuiltin && a.Fn == b.Fn
	case TagRef:
		if b.Tag != TagRef {
			return false
		}
		return refEq(a.Obj, b.Obj, heap, interns)
	}
	return false
}

func isNumeric(v Value) bool {
	return v.Tag == TagInt || v.Tag == TagFloat || v.Tag == TagBool
}

func asFloat(v Value) float64 {
	switch v.Tag {
	case TagBool:
		if v.B {
			return 1
		}
		return 0
	case TagInt:
		return float64(v.I)
	case TagFloat:
		return v.F
	}
	return 0
}

func numericEq(a, b Value) bool {
	if a.Tag == TagFloat || b.Tag == TagFloat {
		return asFloat(a) == asFloat(b)
	}
	return asInt(a) == asInt(b)
}

func asInt(v Value) int64 {
	if v.Tag == TagBool {
		if v.B {
			return 1
		}
		return 0
	}
	return v.I
}

func refEq(a, b ObjectID, heap *Heap, interns *Interner) bool {
	if a == b {
		return true
	}
	da, db := heap.Get(a), heap.Get(b)
	switch x := da.(type) {
	case *HeapString:
		y, ok := db.(*HeapString)
		return ok && x.Text == y.Text
	case *HeapBytes:
		y, ok := db.(*HeapBytes)
		return ok && string(x.Data) == string(y.Data)
	case *HeapList:
		y, ok := db.(*HeapList)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !pyEq(x.Items[i], y.Items[i], heap, interns) {
				return false
			}
		}
		return true
	case *HeapTuple:
		y, ok := db.(*HeapTuple)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !pyEq(x.Items[i], y.Items[i], heap, interns) {
				return false
			}
		}
		return true
	case *HeapDict:
		y, ok := db.(*HeapDict)
		if !ok || x.len() != y.len() {
			return false
		}
		eq := true
		x.Items(func(k, v Value) {
			if !eq {
				return
			}
			yv, present := y.Get(k, heap, interns)
			if !present || !pyEq(v, yv, heap, interns) {
				eq = false
			}
		})
		return eq
	case *HeapException:
		y, ok := db.(*HeapException)
		return ok && x.Kind == y.Kind && x.HasMsg == y.HasMsg && x.Message == y.Message
	}
	return false
}

// isHashable reports whether v can be used as a dict key: mutable
// containers (list, dict) cannot.
func isHashable(v Value, heap *Heap) bool {
	if v.Tag != TagRef {
		return true
	}
	switch heap.Get(v.Obj).(type) {
	case *HeapList, *HeapDict:
		return false
	default:
		return true
	}
}
