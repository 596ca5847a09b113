package runtime

import (
	"strconv"
	"strings"
)

// pyRepr implements py_repr. interns resolves any TagInternString
// payload; callers always have one in scope (the Evaluator's own
// table, or an Executor's for out-of-Run rendering).
func pyRepr(v Value, heap *Heap, interns *Interner) string {
	switch v.Tag {
	case TagNone:
		return "None"
	case TagEllipsis:
		return "Ellipsis"
	case TagBool:
		if v.B {
			return "True"
		}
		return "False"
	case TagInt:
		return strconv.FormatInt(v.I, 10)
	case TagFloat:
		return formatFloat(v.F)
	case TagInternString:
		return quoteString(interns.Resolve(v.N))
	case TagBuiltin:
		return "<built-in function>"
	case TagRef:
		return reprRef(v.Obj, heap, interns)
	}
	return "<?>"
}

// pyStr implements the str() conversion: like repr, except plain
// strings render without quotes.
func pyStr(v Value, heap *Heap, interns *Interner) string {
	switch v.Tag {
	case TagInternString:
		return interns.Resolve(v.N)
	case TagRef:
		if s, ok := heap.Get(v.Obj).(*HeapString); ok {
			return s.Text
		}
	}
	return pyRepr(v, heap, interns)
}

// Repr renders v the way py_repr does, for callers outside an active
// Evaluator.Run (pkg/monty echoing a Return value back to a CLI or
// REPL).
func Repr(v Value, heap *Heap, interns *Interner) string {
	return pyRepr(v, heap, interns)
}

// Str renders v the way str() does, for the same out-of-Run callers
// Repr serves.
func Str(v Value, heap *Heap, interns *Interner) string {
	return pyStr(v, heap, interns)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "inf") && !strings.Contains(s, "nan") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func reprRef(id ObjectID, heap *Heap, interns *Interner) string {
	switch d := heap.Get(id).(type) {
	case *HeapString:
		return quoteString(d.Text)
	case *HeapBytes:
		return "b" + quoteString(string(d.Data))
	case *HeapList:
		parts := make([]string, len(d.Items))
		for i, it := range d.Items {
			parts[i] = pyRepr(it, heap, interns)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *HeapTuple:
		parts := make([]string, len(d.Items))
		for i, it := range d.Items {
			parts[i] = pyRepr(it, heap, interns)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *HeapDict:
		var parts []string
		d.Items(func(k, val Value) {
			parts = append(parts, pyRepr(k, heap, interns)+": "+pyRepr(val, heap, interns))
		})
		return "{" + strings.Join(parts, ", ") + "}"
	case *HeapException:
		if d.HasMsg {
			return d.Kind.String() + ": " + d.Message
		}
		return d.Kind.String()
	}
	return "<object>"
}
