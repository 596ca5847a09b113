package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cortesi/monty/internal/model"
)

// extraBuiltins assembles the supplemented builtin set on top of the
// minimal required catalog: the small aggregate, sequence, and
// conversion functions a realistic embedded core needs.
func extraBuiltins() []BuiltinDescriptor {
	return []BuiltinDescriptor{
		{Name: "min", Fn: biMin},
		{Name: "max", Fn: biMax},
		{Name: "sum", Fn: biSum},
		{Name: "sorted", Fn: biSorted},
		{Name: "all", Fn: biAll},
		{Name: "any", Fn: biAny},
		{Name: "zip", Fn: biZip},
		{Name: "enumerate", Fn: biEnumerate},
		{Name: "reversed", Fn: biReversed},
		{Name: "divmod", Fn: biDivmod},
		{Name: "round", Fn: biRound, AcceptsKwargs: true},
		{Name: "chr", Fn: biChr},
		{Name: "ord", Fn: biOrd},
		{Name: "hex", Fn: biHex},
		{Name: "oct", Fn: biOct},
		{Name: "bin", Fn: biBin},
		{Name: "isinstance", Fn: biIsinstance},
		{Name: "hash", Fn: biHash},
		{Name: "list", Fn: biListCtor},
		{Name: "tuple", Fn: biTupleCtor},
		{Name: "dict", Fn: biDictCtor},
		{Name: "bytes", Fn: biBytesCtor},
		{Name: "format", Fn: biFormat},
	}
}

// materialize drains an iterable positional argument into a owned
// slice, consuming v.
func materialize(v Value, heap *Heap) ([]Value, *ExceptionRaise) {
	it, exc := NewIterator(v, heap)
	v.Drop(heap)
	if exc != nil {
		return nil, exc
	}
	defer it.Close(heap)
	var out []Value
	for {
		item, ok, exc := it.Next(heap)
		if exc != nil {
			dropAll(out, heap)
			return nil, exc
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

func biMin(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	return extremum(ev, args, -1, "min() arg is an empty sequence")
}

func biMax(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	return extremum(ev, args, 1, "max() arg is an empty sequence")
}

// extremum implements min/max: want is -1 for min (prefer the smaller
// element on a tie-break comparison), 1 for max. Called either as
// min(iterable) or min(a, b, ...).
func extremum(ev *Evaluator, args ArgValues, want int, emptyMsg string) (Value, *ExceptionRaise) {
	n := args.Len()
	if n == 0 {
		return typeErrorArgs("expected at least one argument", ev, args)
	}
	var items []Value
	if n == 1 {
		v := args.Positional(0)
		mat, exc := materialize(v, ev.heap)
		if exc != nil {
			return Value{}, exc
		}
		items = mat
	} else {
		items = args.All()
	}
	if len(items) == 0 {
		return Value{}, &ExceptionRaise{Kind: ValueError, Message: emptyMsg}
	}
	best := items[0]
	for _, cur := range items[1:] {
		ord, ok := compareOrder(cur, best, ev.heap, ev.interns)
		if ok && ord == want {
			best.Drop(ev.heap)
			best = cur
			continue
		}
		cur.Drop(ev.heap)
	}
	return best, nil
}

func biSum(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n != 1 && n != 2 {
		return typeErrorArgs("sum() takes one or two arguments", ev, args)
	}
	v := args.Positional(0)
	var start Value
	hasStart := n == 2
	if hasStart {
		start = args.Positional(1)
	} else {
		start = Int(0)
	}
	items, exc := materialize(v, ev.heap)
	if exc != nil {
		start.Drop(ev.heap)
		return Value{}, exc
	}
	acc := start
	for i, item := range items {
		// BinOpEval always consumes acc and item, even on failure, so on
		// an error only the as-yet-unprocessed tail needs dropping.
		r, exc := BinOpEval(model.Add, acc, item, ev.heap, ev.interns)
		if exc != nil {
			dropAll(items[i+1:], ev.heap)
			return Value{}, exc
		}
		acc = r
	}
	return acc, nil
}

func biSorted(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("sorted() takes exactly one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	sortValues(items, ev.heap, ev.interns)
	id, err := ev.heap.Allocate(&HeapList{Items: items})
	if err != nil {
		dropAll(items, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

// sortValues is a plain insertion sort: the prepared sets this builtin
// operates on in practice are small, and it keeps comparisons (which
// can themselves be costly string/seq comparisons) to a predictable
// count.
func sortValues(items []Value, heap *Heap, interns *Interner) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			ord, ok := compareOrder(items[j-1], items[j], heap, interns)
			if ok && ord <= 0 {
				break
			}
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

func biAll(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("all() takes exactly one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	result := true
	for _, v := range items {
		if !v.IsTruthy(ev.heap) {
			result = false
		}
	}
	dropAll(items, ev.heap)
	return Bool(result), nil
}

func biAny(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("any() takes exactly one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	result := false
	for _, v := range items {
		if v.IsTruthy(ev.heap) {
			result = true
		}
	}
	dropAll(items, ev.heap)
	return Bool(result), nil
}

func biZip(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	vals := args.All()
	lists := make([][]Value, len(vals))
	for i, v := range vals {
		items, exc := materialize(v, ev.heap)
		if exc != nil {
			for j := 0; j < i; j++ {
				dropAll(lists[j], ev.heap)
			}
			for _, rest := range vals[i+1:] {
				rest.Drop(ev.heap)
			}
			return Value{}, exc
		}
		lists[i] = items
	}
	n := -1
	for _, l := range lists {
		if n < 0 || len(l) < n {
			n = len(l)
		}
	}
	if n < 0 {
		n = 0
	}
	out := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		tupleItems := make([]Value, len(lists))
		for j, l := range lists {
			tupleItems[j] = l[i]
		}
		id, err := ev.heap.Allocate(&HeapTuple{Items: tupleItems})
		if err != nil {
			dropAll(tupleItems, ev.heap)
			dropAll(out, ev.heap)
			for _, l := range lists {
				for k := i + 1; k < len(l); k++ {
					l[k].Drop(ev.heap)
				}
			}
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		out = append(out, Ref(id))
	}
	for _, l := range lists {
		for k := n; k < len(l); k++ {
			l[k].Drop(ev.heap)
		}
	}
	id, err := ev.heap.Allocate(&HeapList{Items: out})
	if err != nil {
		dropAll(out, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biEnumerate(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n != 1 && n != 2 {
		return typeErrorArgs("enumerate() takes one or two arguments", ev, args)
	}
	start := int64(0)
	if n == 2 {
		s := args.Positional(1)
		if s.Tag != TagInt {
			return typeErrorArgs("enumerate() start must be an int", ev, args)
		}
		start = s.I
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	out := make([]Value, 0, len(items))
	for i, v := range items {
		pair := []Value{Int(start + int64(i)), v}
		id, err := ev.heap.Allocate(&HeapTuple{Items: pair})
		if err != nil {
			dropAll(pair, ev.heap)
			dropAll(out, ev.heap)
			for _, rest := range items[i+1:] {
				rest.Drop(ev.heap)
			}
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		out = append(out, Ref(id))
	}
	id, err := ev.heap.Allocate(&HeapList{Items: out})
	if err != nil {
		dropAll(out, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biReversed(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("reversed() takes exactly one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	id, err := ev.heap.Allocate(&HeapList{Items: items})
	if err != nil {
		dropAll(items, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biDivmod(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 2 {
		return typeErrorArgs("divmod() takes exactly two arguments", ev, args)
	}
	a, b := args.Positional(0), args.Positional(1)
	if !isNumeric(a) || !isNumeric(b) {
		msg := "unsupported operand type(s) for divmod(): '" + a.TypeName(ev.heap) + "' and '" + b.TypeName(ev.heap) + "'"
		a.Drop(ev.heap)
		b.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
	}
	q, exc := BinOpEval(model.FloorDiv, a.IncRefIfHeap(ev.heap), b.IncRefIfHeap(ev.heap), ev.heap, ev.interns)
	if exc != nil {
		a.Drop(ev.heap)
		b.Drop(ev.heap)
		return Value{}, exc
	}
	r, exc := BinOpEval(model.Mod, a, b, ev.heap, ev.interns)
	if exc != nil {
		q.Drop(ev.heap)
		return Value{}, exc
	}
	id, err := ev.heap.Allocate(&HeapTuple{Items: []Value{q, r}})
	if err != nil {
		q.Drop(ev.heap)
		r.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

// biRound accepts ndigits either positionally or as the keyword
// "ndigits" (round(x, 2) and round(x, ndigits=2) are equivalent),
// matching the registry's AcceptsKwargs opt-in for this builtin.
func biRound(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n != 1 && n != 2 {
		return typeErrorArgs("round() takes one or two arguments", ev, args)
	}
	kwargs := args.Kwargs()
	if len(kwargs) > 0 && n == 2 {
		return typeErrorArgs("round() got multiple values for argument 'ndigits'", ev, args)
	}
	for _, kw := range kwargs {
		if ev.interns.Resolve(kw.Name) != "ndigits" {
			return typeErrorArgs("round() got an unexpected keyword argument", ev, args)
		}
	}
	if len(kwargs) > 1 {
		return typeErrorArgs("round() got multiple values for argument 'ndigits'", ev, args)
	}
	v := args.Positional(0)
	ndigits := int64(0)
	hasNdigits := n == 2 || len(kwargs) == 1
	switch {
	case n == 2:
		nd := args.Positional(1)
		if nd.Tag != TagInt {
			v.Drop(ev.heap)
			nd.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "round() second argument must be an int"}
		}
		ndigits = nd.I
	case len(kwargs) == 1:
		nd := kwargs[0].Val
		if nd.Tag != TagInt {
			v.Drop(ev.heap)
			nd.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "round() ndigits must be an int"}
		}
		ndigits = nd.I
	}
	switch v.Tag {
	case TagInt:
		return v, nil
	case TagFloat:
		mult := 1.0
		for i := int64(0); i < ndigits; i++ {
			mult *= 10
		}
		for i := int64(0); i > ndigits; i-- {
			mult /= 10
		}
		r := roundHalfEven(v.F*mult) / mult
		if !hasNdigits {
			return Int(int64(r)), nil
		}
		return Float(r), nil
	}
	msg := "type '" + v.TypeName(ev.heap) + "' doesn't define __round__ method"
	v.Drop(ev.heap)
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
}

func roundHalfEven(f float64) float64 {
	floor := float64(int64(f))
	if f < 0 {
		floor = float64(int64(f))
		if f != floor {
			floor--
		}
	}
	diff := f - floor
	switch {
	case diff < 0.5:
		return floor
	case diff > 0.5:
		return floor + 1
	}
	if int64(floor)%2 == 0 {
		return floor
	}
	return floor + 1
}

func biChr(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("chr() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	if v.Tag != TagInt {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "an integer is required"}
	}
	if v.I < 0 || v.I > 0x10FFFF {
		return Value{}, &ExceptionRaise{Kind: ValueError, Message: "chr() arg not in range"}
	}
	id, err := ev.heap.Allocate(&HeapString{Text: string(rune(v.I))})
	if err != nil {
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biOrd(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("ord() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	s, ok := stringOf(v, ev.heap, ev.interns)
	if !ok && v.Tag == TagInternString {
		s, ok = ev.interns.Resolve(v.N), true
	}
	if !ok {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "ord() expected string of length 1"}
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "ord() expected a character"}
	}
	return Int(int64(runes[0])), nil
}

func biHex(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	return intToBase(ev, args, "hex", func(i int64) string {
		if i < 0 {
			return "-0x" + strconv.FormatInt(-i, 16)
		}
		return "0x" + strconv.FormatInt(i, 16)
	})
}

func biOct(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	return intToBase(ev, args, "oct", func(i int64) string {
		if i < 0 {
			return "-0o" + strconv.FormatInt(-i, 8)
		}
		return "0o" + strconv.FormatInt(i, 8)
	})
}

func biBin(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	return intToBase(ev, args, "bin", func(i int64) string {
		if i < 0 {
			return "-0b" + strconv.FormatInt(-i, 2)
		}
		return "0b" + strconv.FormatInt(i, 2)
	})
}

func intToBase(ev *Evaluator, args ArgValues, name string, fmtFn func(int64) string) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs(name+"() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	if v.Tag != TagInt {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: name + "() argument must be an int"}
	}
	n := ev.interns.Intern(fmtFn(v.I))
	return InternStr(n), nil
}

// biIsinstance implements a reduced isinstance(obj, typename): typename
// is a str naming one of this core's canonical type names (as returned
// by py_type), not a type object — this core has no first-class type
// values beyond the Builtin function tag.
func biIsinstance(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 2 {
		return typeErrorArgs("isinstance() takes exactly two arguments", ev, args)
	}
	obj, want := args.Positional(0), args.Positional(1)
	name, ok := argString(want, ev)
	objType := obj.TypeName(ev.heap)
	obj.Drop(ev.heap)
	want.Drop(ev.heap)
	if !ok {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "isinstance() arg 2 must be a type name string"}
	}
	if name == "int" && objType == "bool" {
		return Bool(true), nil
	}
	return Bool(objType == name), nil
}

func biHash(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	if args.Len() != 1 {
		return typeErrorArgs("hash() takes exactly one argument", ev, args)
	}
	v := args.Positional(0)
	defer v.Drop(ev.heap)
	if !isHashable(v, ev.heap) {
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unhashable type: '" + v.TypeName(ev.heap) + "'"}
	}
	return Int(int64(pyHash(v, ev.heap, ev.interns))), nil
}

func biListCtor(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n == 0 {
		id, err := ev.heap.Allocate(&HeapList{})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	if n != 1 {
		return typeErrorArgs("list() takes at most one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	id, err := ev.heap.Allocate(&HeapList{Items: items})
	if err != nil {
		dropAll(items, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biTupleCtor(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n == 0 {
		id, err := ev.heap.Allocate(&HeapTuple{})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	if n != 1 {
		return typeErrorArgs("tuple() takes at most one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	id, err := ev.heap.Allocate(&HeapTuple{Items: items})
	if err != nil {
		dropAll(items, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biDictCtor(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n == 0 {
		return mustAllocDict(ev)
	}
	if n != 1 {
		return typeErrorArgs("dict() takes at most one argument", ev, args)
	}
	items, exc := materialize(args.Positional(0), ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	d := NewDict()
	for _, pair := range items {
		kv, ok := tupleOf(pair, ev.heap)
		if !ok || len(kv) != 2 {
			pair.Drop(ev.heap)
			continue
		}
		k, v := kv[0].IncRefIfHeap(ev.heap), kv[1].IncRefIfHeap(ev.heap)
		d.Set(k, v, ev.heap, ev.interns)
		pair.Drop(ev.heap)
	}
	id, err := ev.heap.Allocate(d)
	if err != nil {
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func mustAllocDict(ev *Evaluator) (Value, *ExceptionRaise) {
	id, err := ev.heap.Allocate(NewDict())
	if err != nil {
		// NewDict allocates no children; an allocation failure here means
		// the tracker has no budget left at all, surfaced as the same
		// MemoryError every other constructor raises.
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func biBytesCtor(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n == 0 {
		id, err := ev.heap.Allocate(&HeapBytes{})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	if n != 1 {
		return typeErrorArgs("bytes() takes at most one argument", ev, args)
	}
	v := args.Positional(0)
	if v.Tag == TagInt {
		if v.I < 0 {
			v.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "negative count"}
		}
		id, err := ev.heap.Allocate(&HeapBytes{Data: make([]byte, v.I)})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	if s, ok := stringOf(v, ev.heap, ev.interns); ok {
		v.Drop(ev.heap)
		id, err := ev.heap.Allocate(&HeapBytes{Data: []byte(s)})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	items, exc := materialize(v, ev.heap)
	if exc != nil {
		return Value{}, exc
	}
	data := make([]byte, 0, len(items))
	for _, item := range items {
		if item.Tag != TagInt || item.I < 0 || item.I > 255 {
			item.Drop(ev.heap)
			dropAll(items, ev.heap)
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "bytes must be in range(0, 256)"}
		}
		data = append(data, byte(item.I))
	}
	id, err := ev.heap.Allocate(&HeapBytes{Data: data})
	if err != nil {
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

// biFormat implements a reduced format(value[, spec]): "x"/"o"/"b"
// numeric bases for ints and ".Nf" precision for floats; any other
// spec, including the empty one, renders str(value).
func biFormat(ev *Evaluator, args ArgValues) (Value, *ExceptionRaise) {
	n := args.Len()
	if n != 1 && n != 2 {
		return typeErrorArgs("format() takes one or two arguments", ev, args)
	}
	v := args.Positional(0)
	spec := ""
	if n == 2 {
		sv := args.Positional(1)
		s, ok := argString(sv, ev)
		sv.Drop(ev.heap)
		if !ok {
			v.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "format() spec must be a string"}
		}
		spec = s
	}
	if v.Tag == TagInt {
		switch spec {
		case "x":
			defer v.Drop(ev.heap)
			return InternStr(ev.interns.Intern(strconv.FormatInt(v.I, 16))), nil
		case "o":
			defer v.Drop(ev.heap)
			return InternStr(ev.interns.Intern(strconv.FormatInt(v.I, 8))), nil
		case "b":
			defer v.Drop(ev.heap)
			return InternStr(ev.interns.Intern(strconv.FormatInt(v.I, 2))), nil
		}
	}
	if v.Tag == TagFloat && strings.HasPrefix(spec, ".") && strings.HasSuffix(spec, "f") {
		prec, err := strconv.Atoi(spec[1 : len(spec)-1])
		if err == nil {
			defer v.Drop(ev.heap)
			return InternStr(ev.interns.Intern(fmt.Sprintf("%.*f", prec, v.F))), nil
		}
	}
	s := pyStr(v, ev.heap, ev.interns)
	v.Drop(ev.heap)
	return InternStr(ev.interns.Intern(s)), nil
}
