package runtime

import "strconv"

// coreBuiltins assembles the full catalog: the required core builtins
// plus the materialising supplements (min/max/sum/sorted/... in
// builtins_extra.go).
func coreBuiltins() []BuiltinDescriptor {
	out := []BuiltinDescriptor{
		{Name: "id", Fn: biID},
		{Name: "len", Fn: biLen},
		{Name: "abs", Fn: biAbs},
		{Name: "pow", Fn: biPow},
		{Name: "str", Fn: biStr},
		{Name: "int", Fn: biInt},
		{Name: "float", Fn: biFloat},
		{Name: "bool", Fn: biBool},
		{Name: "repr", Fn: biRepr},
		{Name: "print", Fn: biPrint},
		{Name: "range", Fn: biRange},
		{Name: "getattr", Fn: biGetattr},
		{Name: "setattr", Fn: biSetattr},
		{Name: "map", Fn: biMap},
	}
	return append(out, extraBuiltins()...)
}

func typeErrorArgs(msg string, ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	args.Drop(ev.heap)
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
}

func biID(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("id() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	id := pyID(v, ev.heap)
	v.Drop(ev.heap)
	return Int(int64(id)), nil
}

func biLen(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("len() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	if v.Tag == TagInternString {
		return Int(int64(len([]rune(ev.interns.Resolve(v.N))))), nil
	}
	if v.Tag != TagRef {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "object of type '" + v.TypeName(ev.heap) + "' has no len()"}
	}
	switch d := ev.heap.Get(v.Obj).(type) {
	case *HeapString:
		return Int(int64(len([]rune(d.Text)))), nil
	case *HeapBytes:
		return Int(int64(len(d.Data))), nil
	case *HeapList:
		return Int(int64(len(d.Items))), nil
	case *HeapTuple:
		return Int(int64(len(d.Items))), nil
	case *HeapDict:
		return Int(int64(d.len())), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "object of type '" + v.TypeName(ev.heap) + "' has no len()"}
}

func biAbs(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("abs() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	switch v.Tag {
	case TagInt:
		if v.I < 0 {
			return Int(-v.I), nil
		}
		return Int(v.I), nil
	case TagFloat:
		if v.F < 0 {
			return Float(-v.F), nil
		}
		return Float(v.F), nil
	case TagBool:
		return Int(asInt(v)), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "bad operand type for abs(): '" + v.TypeName(ev.heap) + "'"}
}

func biPow(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 2 {
		return typeErrorArgs("pow() takes exactly two arguments", ev, args)
	}
	a, b := args.Positional(0), args.Positional(1)
	if !isNumeric(a) || !isNumeric(b) {
		msg := "unsupported operand type(s) for pow(): '" + a.TypeName(ev.heap) + "' and '" + b.TypeName(ev.heap) + "'"
		a.Drop(ev.heap)
		b.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
	}
	useFloat := a.Tag == TagFloat || b.Tag == TagFloat
	return powValue(a, b, useFloat)
}

func biStr(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("str() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	s := pyStr(v, ev.heap, ev.interns)
	v.Drop(ev.heap)
	n := ev.interns.Intern(s)
	return InternStr(n), nil
}

func biRepr(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("repr() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	s := pyRepr(v, ev.heap, ev.interns)
	v.Drop(ev.heap)
	n := ev.interns.Intern(s)
	return InternStr(n), nil
}

func biInt(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() == 0 {
		return Int(0), nil
	}
	if args.Len() != 1 {
		return typeErrorArgs("int() takes at most one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	switch v.Tag {
	case TagInt:
		return Int(v.I), nil
	case TagFloat:
		return Int(int64(v.F)), nil
	case TagBool:
		return Int(asInt(v)), nil
	case TagInternString:
		i, err := strconv.ParseInt(ev.interns.Resolve(v.N), 10, 64)
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "invalid literal for int()"}
		}
		return Int(i), nil
	}
	if s, ok := stringOf(v, ev.heap, ev.interns); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "invalid literal for int()"}
		}
		return Int(i), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "int() argument must be a string or a number"}
}

func biFloat(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() == 0 {
		return Float(0), nil
	}
	if args.Len() != 1 {
		return typeErrorArgs("float() takes at most one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	switch v.Tag {
	case TagInt:
		return Float(float64(v.I)), nil
	case TagFloat:
		return Float(v.F), nil
	case TagBool:
		return Float(asFloat(v)), nil
	}
	s, ok := stringOf(v, ev.heap, ev.interns)
	if !ok && v.Tag == TagInternString {
		s, ok = ev.interns.Resolve(v.N), true
	}
	if ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "could not convert string to float"}
		}
		return Float(f), nil
	}
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: "float() argument must be a string or a number"}
}

func biBool(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() == 0 {
		return Bool(false), nil
	}
	if args.Len() != 1 {
		return typeErrorArgs("bool() takes at most one argument", ev, args)
	}
	v := args.Positional(0)
	truthy := v.IsTruthy(ev.heap)
	v.Drop(ev.heap)
	return Bool(truthy), nil
}

func biPrint(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	parts := args.All()
	for i, v := range parts {
		if i > 0 {
			ev.printer.Write(" ")
		}
		ev.printer.Write(pyStr(v, ev.heap, ev.interns))
		v.Drop(ev.heap)
	}
	ev.printer.Write("\n")
	return None, nil
}

func biRange(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n < 1 || n > 3 {
		return typeErrorArgs("range expected 1 to 3 arguments", ev, args)
	}
	nums := make([]int64, n)
	for i := 0; i < n; i++ {
		v := args.Positional(i)
		if v.Tag != TagInt {
			msg := "'" + v.TypeName(ev.heap) + "' object cannot be interpreted as an integer"
			args.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
		}
		nums[i] = v.I
	}
	var start, stop, step int64
	switch n {
	case 1:
		start, stop, step = 0, nums[0], 1
	case 2:
		start, stop, step = nums[0], nums[1], 1
	case 3:
		start, stop, step = nums[0], nums[1], nums[2]
		if step == 0 {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "range() arg 3 must not be zero"}
		}
	}
	count := rangeLen(start, stop, step)
	items := make([]Value, 0, count)
	for i := int64(0); i < count; i++ {
		items = append(items, Int(start+i*step))
	}
	id, err := ev.heap.Allocate(&HeapList{Items: items})
	if err != nil {
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

// biGetattr implements getattr(obj, name[, default]): name must
// resolve to an interned string; a missing attribute returns default
// when given, else AttributeError.
func biGetattr(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n != 2 && n != 3 {
		return typeErrorArgs("getattr expected 2 or 3 arguments", ev, args)
	}
	obj := args.Positional(0)
	nameVal := args.Positional(1)
	var dflt Value
	hasDefault := n == 3
	if hasDefault {
		dflt = args.Positional(2)
	}
	name, ok := nameString(nameVal, ev)
	nameVal.Drop(ev.heap)
	if !ok {
		obj.Drop(ev.heap)
		if hasDefault {
			dflt.Drop(ev.heap)
		}
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "getattr(): attribute name must be string"}
	}
	v, exc := GetAttr(obj, name, ev.heap, ev.interns)
	obj.Drop(ev.heap)
	if exc != nil {
		if hasDefault && exc.Kind == AttributeError {
			return dflt, nil
		}
		if hasDefault {
			dflt.Drop(ev.heap)
		}
		return Value{}, exc
	}
	if hasDefault {
		dflt.Drop(ev.heap)
	}
	return v, nil
}

// biSetattr implements setattr(obj, name, value); the value argument
// is released on every path, success or error, inside SetAttr itself.
func biSetattr(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 3 {
		return typeErrorArgs("setattr expected 3 arguments", ev, args)
	}
	obj := args.Positional(0)
	nameVal := args.Positional(1)
	val := args.Positional(2)
	name, ok := nameString(nameVal, ev)
	nameVal.Drop(ev.heap)
	if !ok {
		obj.Drop(ev.heap)
		val.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "setattr(): attribute name must be string"}
	}
	exc := SetAttr(obj, name, val, ev.heap, ev.interns)
	obj.Drop(ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	return None, nil
}

func nameString(v Value, ev *Evaluator) (NameID, bool) {
	if v.Tag == TagInternString {
		return v.N, true
	}
	if s, ok := stringOf(v, ev.heap, ev.interns); ok {
		return ev.interns.Intern(s), true
	}
	return 0, false
}

// biMap implements map(fn, *iters): fn must be a first-class Builtin
// (the core's only callable); the result is materialised eagerly, its
// length the shortest of the given iterables.
func biMap(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() < 2 {
		return typeErrorArgs("map() must have at least two arguments", ev, args)
	}
	fn := args.Positional(0)
	if fn.Tag != TagBuiltin {
		rest := args.All()[1:]
		fn.Drop(ev.heap)
		dropAll(rest, ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "map() first argument must be a builtin function"}
	}
	iterVals := args.All()[1:]
	iters := make([]*Iterator, 0, len(iterVals))
	for _, v := range iterVals {
		it, exc := NewIterator(v, ev.heap)
		if exc != nil {
			for _, prior := range iters {
				prior.Close(ev.heap)
			}
			fn.Drop(ev.heap)
			dropAll(iterVals, ev.heap)
			return Value{}, exc
		}
		iters = append(iters, it)
	}
	defer func() {
		for _, it := range iters {
			it.Close(ev.heap)
		}
	}()
	dropAll(iterVals, ev.heap)

	var results []Value
	for {
		step := make([]Value, 0, len(iters))
		done := false
		for _, it := range iters {
			v, ok, exc := it.Next(ev.heap)
			if exc != nil {
				dropAll(step, ev.heap)
				fn.Drop(ev.heap)
				dropAll(results, ev.heap)
				return Value{}, exc
			}
			if !ok {
				done = true
				dropAll(step, ev.heap)
				break
			}
			step = append(step, v)
		}
		if done {
			break
		}
		callArgs := NewArgs(step, nil)
		result, exc := ev.CallBuiltinValue(fn.IncRefIfHeap(ev.heap), callArgs)
		if exc != nil {
			fn.Drop(ev.heap)
			dropAll(results, ev.heap)
			return Value{}, exc
		}
		results = append(results, result)
	}
	fn.Drop(ev.heap)
	id, err := ev.heap.Allocate(&HeapList{Items: results})
	if err != nil {
		dropAll(results, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}
