package runtime

import "strings"

// callMethod implements the per-container method-dispatch table:
// `list.append`, `list.insert`, and the handful of str/dict/bytes
// methods a faithful core needs. recv is consumed; args is consumed.
// Arity and type are checked before any side effect.
func callMethod(ev *Evaluator, recv Value, attr NameID, args ArgValues) (Value, *ExceptionRaise) {
	name := ev.interns.Resolve(attr)
	if recv.Tag == TagInternString {
		return callStringMethod(ev, recv, &HeapString{Text: ev.interns.Resolve(recv.N)}, name, args)
	}
	if recv.Tag != TagRef {
		recv.Drop(ev.heap)
		args.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: AttributeError, Message: "'" + recv.TypeName(ev.heap) + "' object has no attribute '" + name + "'"}
	}
	switch d := ev.heap.Get(recv.Obj).(type) {
	case *HeapList:
		return callListMethod(ev, recv, d, name, args)
	case *HeapDict:
		return callDictMethod(ev, recv, d, name, args)
	case *HeapTuple:
		return callTupleMethod(ev, recv, d, name, args)
	case *HeapString:
		return callStringMethod(ev, recv, d, name, args)
	case *HeapBytes:
		return callBytesMethod(ev, recv, d, name, args)
	}
	recv.Drop(ev.heap)
	args.Drop(ev.heap)
	return Value{}, &ExceptionRaise{Kind: AttributeError, Message: "'" + recv.TypeName(ev.heap) + "' object has no attribute '" + name + "'"}
}

func methodErr(ev *Evaluator, recv Value, args ArgValues, msg string) (Value, *ExceptionRaise) {
	recv.Drop(ev.heap)
	args.Drop(ev.heap)
	return Value{}, &ExceptionRaise{Kind: TypeError, Message: msg}
}

func callListMethod(ev *Evaluator, recv Value, d *HeapList, name string, args ArgValues) (Value, *ExceptionRaise) {
	switch name {
	case "append":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "append() takes exactly one argument")
		}
		d.Items = append(d.Items, args.Positional(0))
		recv.Drop(ev.heap)
		return None, nil
	case "insert":
		if args.Len() != 2 {
			return methodErr(ev, recv, args, "insert() takes exactly two arguments")
		}
		idxV, val := args.Positional(0), args.Positional(1)
		if idxV.Tag != TagInt {
			return methodErr(ev, recv, args, "insert() index must be an int")
		}
		i := clampIndex(idxV.I, len(d.Items))
		d.Items = append(d.Items, Value{})
		copy(d.Items[i+1:], d.Items[i:])
		d.Items[i] = val
		recv.Drop(ev.heap)
		return None, nil
	case "pop":
		if args.Len() > 1 {
			return methodErr(ev, recv, args, "pop() takes at most one argument")
		}
		i := len(d.Items) - 1
		if args.Len() == 1 {
			idxV := args.Positional(0)
			if idxV.Tag != TagInt {
				return methodErr(ev, recv, args, "pop() index must be an int")
			}
			i = int(idxV.I)
			if i < 0 {
				i += len(d.Items)
			}
		}
		if i < 0 || i >= len(d.Items) {
			recv.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: IndexError, Message: "pop index out of range"}
		}
		v := d.Items[i]
		d.Items = append(d.Items[:i], d.Items[i+1:]...)
		recv.Drop(ev.heap)
		return v, nil
	case "remove":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "remove() takes exactly one argument")
		}
		target := args.Positional(0)
		found := -1
		for i, v := range d.Items {
			if pyEq(v, target, ev.heap, ev.interns) {
				found = i
				break
			}
		}
		target.Drop(ev.heap)
		if found < 0 {
			recv.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "list.remove(x): x not in list"}
		}
		d.Items[found].Drop(ev.heap)
		d.Items = append(d.Items[:found], d.Items[found+1:]...)
		recv.Drop(ev.heap)
		return None, nil
	case "clear":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "clear() takes no arguments")
		}
		for _, v := range d.Items {
			v.Drop(ev.heap)
		}
		d.Items = nil
		recv.Drop(ev.heap)
		return None, nil
	case "extend":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "extend() takes exactly one argument")
		}
		other := args.Positional(0)
		it, exc := NewIterator(other, ev.heap)
		other.Drop(ev.heap)
		if exc != nil {
			recv.Drop(ev.heap)
			return Value{}, exc
		}
		for {
			v, ok, exc := it.Next(ev.heap)
			if exc != nil {
				it.Close(ev.heap)
				recv.Drop(ev.heap)
				return Value{}, exc
			}
			if !ok {
				break
			}
			d.Items = append(d.Items, v)
		}
		it.Close(ev.heap)
		recv.Drop(ev.heap)
		return None, nil
	case "index":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "index() takes exactly one argument")
		}
		target := args.Positional(0)
		found := -1
		for i, v := range d.Items {
			if pyEq(v, target, ev.heap, ev.interns) {
				found = i
				break
			}
		}
		target.Drop(ev.heap)
		recv.Drop(ev.heap)
		if found < 0 {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "value not in list"}
		}
		return Int(int64(found)), nil
	case "count":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "count() takes exactly one argument")
		}
		target := args.Positional(0)
		n := 0
		for _, v := range d.Items {
			if pyEq(v, target, ev.heap, ev.interns) {
				n++
			}
		}
		target.Drop(ev.heap)
		recv.Drop(ev.heap)
		return Int(int64(n)), nil
	case "reverse":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "reverse() takes no arguments")
		}
		for i, j := 0, len(d.Items)-1; i < j; i, j = i+1, j-1 {
			d.Items[i], d.Items[j] = d.Items[j], d.Items[i]
		}
		recv.Drop(ev.heap)
		return None, nil
	case "copy":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "copy() takes no arguments")
		}
		out := make([]Value, len(d.Items))
		for i, v := range d.Items {
			out[i] = v.IncRefIfHeap(ev.heap)
		}
		recv.Drop(ev.heap)
		id, err := ev.heap.Allocate(&HeapList{Items: out})
		if err != nil {
			dropAll(out, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	}
	return methodErr(ev, recv, args, "'list' object has no attribute '"+name+"'")
}

func clampIndex(i int64, n int) int {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 {
		return 0
	}
	if i > int64(n) {
		return n
	}
	return int(i)
}

func callTupleMethod(ev *Evaluator, recv Value, d *HeapTuple, name string, args ArgValues) (Value, *ExceptionRaise) {
	switch name {
	case "count":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "count() takes exactly one argument")
		}
		target := args.Positional(0)
		n := 0
		for _, v := range d.Items {
			if pyEq(v, target, ev.heap, ev.interns) {
				n++
			}
		}
		target.Drop(ev.heap)
		recv.Drop(ev.heap)
		return Int(int64(n)), nil
	case "index":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "index() takes exactly one argument")
		}
		target := args.Positional(0)
		found := -1
		for i, v := range d.Items {
			if pyEq(v, target, ev.heap, ev.interns) {
				found = i
				break
			}
		}
		target.Drop(ev.heap)
		recv.Drop(ev.heap)
		if found < 0 {
			return Value{}, &ExceptionRaise{Kind: ValueError, Message: "value not in tuple"}
		}
		return Int(int64(found)), nil
	}
	return methodErr(ev, recv, args, "'tuple' object has no attribute '"+name+"'")
}

func callDictMethod(ev *Evaluator, recv Value, d *HeapDict, name string, args ArgValues) (Value, *ExceptionRaise) {
	switch name {
	case "get":
		n := args.Len()
		if n != 1 && n != 2 {
			return methodErr(ev, recv, args, "get() takes one or two arguments")
		}
		key := args.Positional(0)
		v, ok := d.Get(key, ev.heap, ev.interns)
		key.Drop(ev.heap)
		if ok {
			recv.Drop(ev.heap)
			if n == 2 {
				args.Positional(1).Drop(ev.heap)
			}
			return v.IncRefIfHeap(ev.heap), nil
		}
		recv.Drop(ev.heap)
		if n == 2 {
			return args.Positional(1), nil
		}
		return None, nil
	case "keys":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "keys() takes no arguments")
		}
		items := d.Keys()
		out := make([]Value, len(items))
		for i, v := range items {
			out[i] = v.IncRefIfHeap(ev.heap)
		}
		recv.Drop(ev.heap)
		id, err := ev.heap.Allocate(&HeapList{Items: out})
		if err != nil {
			dropAll(out, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case "values":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "values() takes no arguments")
		}
		var out []Value
		d.Items(func(_, v Value) { out = append(out, v.IncRefIfHeap(ev.heap)) })
		recv.Drop(ev.heap)
		id, err := ev.heap.Allocate(&HeapList{Items: out})
		if err != nil {
			dropAll(out, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case "items":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "items() takes no arguments")
		}
		var out []Value
		var allocErr error
		d.Items(func(k, v Value) {
			if allocErr != nil {
				return
			}
			pair := []Value{k.IncRefIfHeap(ev.heap), v.IncRefIfHeap(ev.heap)}
			id, err := ev.heap.Allocate(&HeapTuple{Items: pair})
			if err != nil {
				allocErr = err
				dropAll(pair, ev.heap)
				return
			}
			out = append(out, Ref(id))
		})
		recv.Drop(ev.heap)
		if allocErr != nil {
			dropAll(out, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: allocErr.Error()}
		}
		id, err := ev.heap.Allocate(&HeapList{Items: out})
		if err != nil {
			dropAll(out, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case "pop":
		n := args.Len()
		if n != 1 && n != 2 {
			return methodErr(ev, recv, args, "pop() takes one or two arguments")
		}
		key := args.Positional(0)
		v, ok := d.Get(key, ev.heap, ev.interns)
		if ok {
			v = v.IncRefIfHeap(ev.heap)
			d.Delete(key, ev.heap, ev.interns)
			key.Drop(ev.heap)
			recv.Drop(ev.heap)
			if n == 2 {
				args.Positional(1).Drop(ev.heap)
			}
			return v, nil
		}
		key.Drop(ev.heap)
		recv.Drop(ev.heap)
		if n == 2 {
			return args.Positional(1), nil
		}
		return Value{}, &ExceptionRaise{Kind: KeyError, Message: "key not found"}
	case "setdefault":
		n := args.Len()
		if n != 1 && n != 2 {
			return methodErr(ev, recv, args, "setdefault() takes one or two arguments")
		}
		key := args.Positional(0)
		if v, ok := d.Get(key, ev.heap, ev.interns); ok {
			key.Drop(ev.heap)
			recv.Drop(ev.heap)
			if n == 2 {
				args.Positional(1).Drop(ev.heap)
			}
			return v.IncRefIfHeap(ev.heap), nil
		}
		dflt := None
		if n == 2 {
			dflt = args.Positional(1)
		}
		d.Set(key, dflt.IncRefIfHeap(ev.heap), ev.heap, ev.interns)
		recv.Drop(ev.heap)
		return dflt, nil
	case "update":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "update() takes exactly one argument")
		}
		other := args.Positional(0)
		if other.Tag != TagRef {
			other.Drop(ev.heap)
			recv.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "update() argument must be a dict"}
		}
		od, ok := ev.heap.Get(other.Obj).(*HeapDict)
		if !ok {
			other.Drop(ev.heap)
			recv.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "update() argument must be a dict"}
		}
		od.Items(func(k, v Value) {
			d.Set(k.IncRefIfHeap(ev.heap), v.IncRefIfHeap(ev.heap), ev.heap, ev.interns)
		})
		other.Drop(ev.heap)
		recv.Drop(ev.heap)
		return None, nil
	case "clear":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "clear() takes no arguments")
		}
		d.Items(func(k, v Value) {
			k.Drop(ev.heap)
			v.Drop(ev.heap)
		})
		*d = *NewDict()
		recv.Drop(ev.heap)
		return None, nil
	}
	return methodErr(ev, recv, args, "'dict' object has no attribute '"+name+"'")
}

func callStringMethod(ev *Evaluator, recv Value, d *HeapString, name string, args ArgValues) (Value, *ExceptionRaise) {
	internResult := func(s string) (Value, *ExceptionRaise) {
		recv.Drop(ev.heap)
		return InternStr(ev.interns.Intern(s)), nil
	}
	switch name {
	case "upper":
		return internResult(strings.ToUpper(d.Text))
	case "lower":
		return internResult(strings.ToLower(d.Text))
	case "strip":
		return internResult(strings.TrimSpace(d.Text))
	case "title":
		return internResult(strings.Title(d.Text))
	case "split":
		sep := " "
		if args.Len() == 1 {
			s, ok := argString(args.Positional(0), ev)
			if !ok {
				return methodErr(ev, recv, args, "split() argument must be a string")
			}
			sep = s
		} else if args.Len() != 0 {
			return methodErr(ev, recv, args, "split() takes at most one argument")
		}
		args.Drop(ev.heap)
		var parts []string
		if sep == " " {
			parts = strings.Fields(d.Text)
		} else {
			parts = strings.Split(d.Text, sep)
		}
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = InternStr(ev.interns.Intern(p))
		}
		recv.Drop(ev.heap)
		id, err := ev.heap.Allocate(&HeapList{Items: out})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case "join":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "join() takes exactly one argument")
		}
		other := args.Positional(0)
		it, exc := NewIterator(other, ev.heap)
		other.Drop(ev.heap)
		if exc != nil {
			recv.Drop(ev.heap)
			return Value{}, exc
		}
		var parts []string
		for {
			v, ok, exc := it.Next(ev.heap)
			if exc != nil {
				it.Close(ev.heap)
				recv.Drop(ev.heap)
				return Value{}, exc
			}
			if !ok {
				break
			}
			s, ok := argString(v, ev)
			v.Drop(ev.heap)
			if !ok {
				it.Close(ev.heap)
				recv.Drop(ev.heap)
				return Value{}, &ExceptionRaise{Kind: TypeError, Message: "join() argument must be an iterable of strings"}
			}
			parts = append(parts, s)
		}
		it.Close(ev.heap)
		return internResult(strings.Join(parts, d.Text))
	case "replace":
		if args.Len() != 2 {
			return methodErr(ev, recv, args, "replace() takes exactly two arguments")
		}
		old, ok1 := argString(args.Positional(0), ev)
		nw, ok2 := argString(args.Positional(1), ev)
		if !ok1 || !ok2 {
			return methodErr(ev, recv, args, "replace() arguments must be strings")
		}
		args.Drop(ev.heap)
		return internResult(strings.ReplaceAll(d.Text, old, nw))
	case "startswith":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "startswith() takes exactly one argument")
		}
		s, ok := argString(args.Positional(0), ev)
		if !ok {
			return methodErr(ev, recv, args, "startswith() argument must be a string")
		}
		args.Drop(ev.heap)
		recv.Drop(ev.heap)
		return Bool(strings.HasPrefix(d.Text, s)), nil
	case "endswith":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "endswith() takes exactly one argument")
		}
		s, ok := argString(args.Positional(0), ev)
		if !ok {
			return methodErr(ev, recv, args, "endswith() argument must be a string")
		}
		args.Drop(ev.heap)
		recv.Drop(ev.heap)
		return Bool(strings.HasSuffix(d.Text, s)), nil
	case "find":
		if args.Len() != 1 {
			return methodErr(ev, recv, args, "find() takes exactly one argument")
		}
		s, ok := argString(args.Positional(0), ev)
		if !ok {
			return methodErr(ev, recv, args, "find() argument must be a string")
		}
		args.Drop(ev.heap)
		recv.Drop(ev.heap)
		return Int(int64(strings.Index(d.Text, s))), nil
	}
	return methodErr(ev, recv, args, "'str' object has no attribute '"+name+"'")
}

func argString(v Value, ev *Evaluator) (string, bool) {
	if v.Tag == TagInternString {
		return ev.interns.Resolve(v.N), true
	}
	return stringOf(v, ev.heap, ev.interns)
}

func callBytesMethod(ev *Evaluator, recv Value, d *HeapBytes, name string, args ArgValues) (Value, *ExceptionRaise) {
	switch name {
	case "decode":
		if args.Len() > 1 {
			return methodErr(ev, recv, args, "decode() takes at most one argument")
		}
		if args.Len() == 1 {
			args.Positional(0).Drop(ev.heap)
		}
		s := ev.interns.Intern(string(d.Data))
		recv.Drop(ev.heap)
		return InternStr(s), nil
	case "hex":
		if args.Len() != 0 {
			return methodErr(ev, recv, args, "hex() takes no arguments")
		}
		const digits = "0123456789abcdef"
		var sb strings.Builder
		for _, b := range d.Data {
			sb.WriteByte(digits[b>>4])
			sb.WriteByte(digits[b&0xf])
		}
		s := ev.interns.Intern(sb.String())
		recv.Drop(ev.heap)
		return InternStr(s), nil
	}
	return methodErr(ev, recv, args, "'bytes' object has no attribute '"+name+"'")
}
