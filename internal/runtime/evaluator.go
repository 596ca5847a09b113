package runtime

import "github.com/cortesi/monty/internal/model"

// Printer is the sink the print() builtin writes through. The embedder
// supplies the concrete implementation; DiscardPrinter below is the
// core's own no-op default.
type Printer interface {
	Write(s string)
}

// DiscardPrinter throws every write away.
type DiscardPrinter struct{}

func (DiscardPrinter) Write(string) {}

// ExitKind discriminates the outcome of a Run.
type ExitKind uint8

const (
	ExitReturn ExitKind = iota
	ExitException
	ExitInternal
)

// Exit is the outcome of Evaluator.Run: exactly one of Value (on
// ExitReturn), Exc (on ExitException), or Err (on ExitInternal) is
// meaningful.
type Exit struct {
	Kind  ExitKind
	Value Value
	Exc   *ExceptionRaise
	Err   *InternalError
}

// Evaluator walks a PreparedModule against one Heap and one namespace.
// It is not safe for concurrent use by multiple goroutines — every Run
// owns its Evaluator exclusively — but distinct Evaluator instances are
// fully independent.
type Evaluator struct {
	heap     *Heap
	interns  *Interner
	registry *Registry
	ns       []Value
	printer  Printer
}

// NewEvaluator builds an Evaluator over a fresh heap and a namespace of
// the given width, with inputs installed into the first len(inputs)
// slots. len(inputs) must equal the declared input-names length.
// Remaining slots start Undefined.
func NewEvaluator(heap *Heap, interns *Interner, registry *Registry, numSlots int, inputs []Value, printer Printer) *Evaluator {
	if printer == nil {
		printer = DiscardPrinter{}
	}
	ns := make([]Value, numSlots)
	for i := range ns {
		ns[i] = undefined
	}
	copy(ns, inputs)
	return &Evaluator{heap: heap, interns: interns, registry: registry, ns: ns, printer: printer}
}

// undefined is the namespace slot's initial marker: a tag
// value no source-level expression ever produces, so reading an
// undefined slot is unambiguously a NameError.
var undefined = Value{Tag: 0xff}

func isUndefined(v Value) bool { return v.Tag == 0xff }

// Heap exposes the evaluator's heap, for callers (builtins, tests)
// needing direct access alongside an Evaluator.
func (ev *Evaluator) Heap() *Heap { return ev.heap }

// Interner exposes the evaluator's name table.
func (ev *Evaluator) Interner() *Interner { return ev.interns }

// Registry exposes the evaluator's builtin catalog.
func (ev *Evaluator) Registry() *Registry { return ev.registry }

// Printer exposes the configured output sink, for the print builtin.
func (ev *Evaluator) Printer() Printer { return ev.printer }

// ctrlKind is the internal control-flow signal threaded through
// statement execution: normal flow, break, continue, or an unwinding
// exception/internal error.
type ctrlKind uint8

const (
	ctrlNormal ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlException
	ctrlInternal
)

type ctrl struct {
	kind ctrlKind
	exc  *ExceptionRaise
	ierr *InternalError
}

var ctrlOK = ctrl{kind: ctrlNormal}

func ctrlExc(e *ExceptionRaise) ctrl     { return ctrl{kind: ctrlException, exc: e} }
func ctrlInternalErr(e *InternalError) ctrl { return ctrl{kind: ctrlInternal, ierr: e} }

// Run executes body top-to-bottom. The value of the final top-level
// PExprStmt, if any, becomes the ExitReturn value (None otherwise);
// each earlier top-level expression statement's value is dropped when
// a later one replaces it.
func (ev *Evaluator) Run(body []PStmt) Exit {
	var last Value = None
	for _, stmt := range body {
		if es, ok := stmt.(*PExprStmt); ok {
			v, c := ev.evalExprCtrl(es.X)
			if c.kind != ctrlNormal {
				last.Drop(ev.heap)
				return ev.exitFromCtrl(c)
			}
			last.Drop(ev.heap)
			last = v
			continue
		}
		c := ev.execStmt(stmt)
		if c.kind != ctrlNormal {
			last.Drop(ev.heap)
			return ev.exitFromCtrl(c)
		}
	}
	return Exit{Kind: ExitReturn, Value: last}
}

func (ev *Evaluator) exitFromCtrl(c ctrl) Exit {
	switch c.kind {
	case ctrlException:
		return Exit{Kind: ExitException, Exc: c.exc}
	case ctrlInternal:
		return Exit{Kind: ExitInternal, Err: c.ierr}
	default:
		// break/continue escaping the top level is a malformed prepared
		// tree (the Prepare pass should reject break/continue outside a
		// loop); surface as Internal rather than silently dropping it.
		return Exit{Kind: ExitInternal, Err: &InternalError{Reason: "break/continue outside loop"}}
	}
}

// evalExprCtrl evaluates an expression, translating an exception into
// ctrl form for callers that thread statement-level control flow.
func (ev *Evaluator) evalExprCtrl(e PExpr) (Value, ctrl) {
	v, exc := ev.eval(e)
	if exc != nil {
		return Value{}, ctrlExc(exc)
	}
	return v, ctrlOK
}

func (ev *Evaluator) execBlock(stmts []PStmt) ctrl {
	for _, s := range stmts {
		if c := ev.execStmt(s); c.kind != ctrlNormal {
			return c
		}
	}
	return ctrlOK
}

func (ev *Evaluator) execStmt(s PStmt) ctrl {
	switch st := s.(type) {
	case *PPass:
		return ctrlOK
	case *PExprStmt:
		v, c := ev.evalExprCtrl(st.X)
		if c.kind != ctrlNormal {
			return c
		}
		v.Drop(ev.heap)
		return ctrlOK
	case *PAssign:
		v, c := ev.evalExprCtrl(st.X)
		if c.kind != ctrlNormal {
			return c
		}
		ev.ns[st.Slot].Drop(ev.heap)
		ev.ns[st.Slot] = v
		return ctrlOK
	case *POpAssign:
		return ev.execOpAssign(st)
	case *PIf:
		return ev.execIf(st)
	case *PFor:
		return ev.execFor(st)
	case *PWhile:
		return ev.execWhile(st)
	case *PBreak:
		return ctrl{kind: ctrlBreak}
	case *PContinue:
		return ctrl{kind: ctrlContinue}
	}
	return ctrlInternalErr(&InternalError{Reason: "unknown prepared statement node"})
}

func (ev *Evaluator) execOpAssign(st *POpAssign) ctrl {
	cur := ev.ns[st.Slot].IncRefIfHeap(ev.heap)
	rhs, c := ev.evalExprCtrl(st.X)
	if c.kind != ctrlNormal {
		cur.Drop(ev.heap)
		return c
	}
	result, exc := BinOpEval(st.Op, cur, rhs, ev.heap, ev.interns)
	if exc != nil {
		return ctrlExc(exc)
	}
	ev.ns[st.Slot].Drop(ev.heap)
	ev.ns[st.Slot] = result
	return ctrlOK
}

func (ev *Evaluator) execIf(st *PIf) ctrl {
	test, c := ev.evalExprCtrl(st.Test)
	if c.kind != ctrlNormal {
		return c
	}
	truthy := test.IsTruthy(ev.heap)
	test.Drop(ev.heap)
	if truthy {
		return ev.execBlock(st.Body)
	}
	return ev.execBlock(st.OrElse)
}

// execFor implements the for-statement state machine:
// Idle -> Stepping <-> BodyExecuting -> (Done | Broken). Done runs
// OrElse; Broken (break, or an exception) skips it and always closes
// the iterator.
func (ev *Evaluator) execFor(st *PFor) ctrl {
	iterable, c := ev.evalExprCtrl(st.Iter)
	if c.kind != ctrlNormal {
		return c
	}
	it, exc := NewIterator(iterable, ev.heap)
	iterable.Drop(ev.heap)
	if exc != nil {
		return ctrlExc(exc)
	}
	defer it.Close(ev.heap)
	for {
		v, ok, exc := it.Next(ev.heap)
		if exc != nil {
			return ctrlExc(exc)
		}
		if !ok {
			return ev.execBlock(st.OrElse)
		}
		ev.ns[st.Slot].Drop(ev.heap)
		ev.ns[st.Slot] = v
		c := ev.execBlock(st.Body)
		switch c.kind {
		case ctrlBreak:
			return ctrlOK
		case ctrlContinue, ctrlNormal:
			continue
		default:
			return c
		}
	}
}

// execWhile shares the same Done/Broken state machine as execFor, with
// a boolean test in place of an iterator.
func (ev *Evaluator) execWhile(st *PWhile) ctrl {
	for {
		test, c := ev.evalExprCtrl(st.Test)
		if c.kind != ctrlNormal {
			return c
		}
		truthy := test.IsTruthy(ev.heap)
		test.Drop(ev.heap)
		if !truthy {
			return ev.execBlock(st.OrElse)
		}
		c = ev.execBlock(st.Body)
		switch c.kind {
		case ctrlBreak:
			return ctrlOK
		case ctrlContinue, ctrlNormal:
			continue
		default:
			return c
		}
	}
}

// eval evaluates an expression, returning an owned Value or an
// exception. Every sub-evaluation that fails has already released any
// partial results it produced before returning.
func (ev *Evaluator) eval(e PExpr) (Value, *ExceptionRaise) {
	switch x := e.(type) {
	case *PConstant:
		return x.V, nil
	case *PInternConstant:
		return InternStr(x.N), nil
	case *PBytesConstant:
		buf := make([]byte, len(x.B))
		copy(buf, x.B)
		id, err := ev.heap.Allocate(&HeapBytes{Data: buf})
		if err != nil {
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case *PName:
		v := ev.ns[x.Slot]
		if isUndefined(v) {
			return Value{}, &ExceptionRaise{Kind: NameError, Message: "name is not defined"}
		}
		return v.IncRefIfHeap(ev.heap), nil
	case *POp:
		left, exc := ev.eval(x.Left)
		if exc != nil {
			return Value{}, exc
		}
		right, exc := ev.eval(x.Right)
		if exc != nil {
			left.Drop(ev.heap)
			return Value{}, exc
		}
		return BinOpEval(x.Operator, left, right, ev.heap, ev.interns)
	case *PCmp:
		left, exc := ev.eval(x.Left)
		if exc != nil {
			return Value{}, exc
		}
		right, exc := ev.eval(x.Right)
		if exc != nil {
			left.Drop(ev.heap)
			return Value{}, exc
		}
		return CmpEval(x.Operator, left, right, ev.heap, ev.interns)
	case *PBoolOp:
		return ev.evalBoolOp(x)
	case *PUnaryOp:
		v, exc := ev.eval(x.X)
		if exc != nil {
			return Value{}, exc
		}
		return UnaryEval(x.Operator, v, ev.heap)
	case *PCall:
		return ev.evalCall(x)
	case *PList:
		items, exc := ev.evalExprList(x.Elts)
		if exc != nil {
			return Value{}, exc
		}
		id, err := ev.heap.Allocate(&HeapList{Items: items})
		if err != nil {
			dropAll(items, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case *PTuple:
		items, exc := ev.evalExprList(x.Elts)
		if exc != nil {
			return Value{}, exc
		}
		id, err := ev.heap.Allocate(&HeapTuple{Items: items})
		if err != nil {
			dropAll(items, ev.heap)
			return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
		}
		return Ref(id), nil
	case *PDict:
		return ev.evalDict(x)
	case *PAttribute:
		recv, exc := ev.eval(x.X)
		if exc != nil {
			return Value{}, exc
		}
		v, exc := GetAttr(recv, x.Attr, ev.heap, ev.interns)
		recv.Drop(ev.heap)
		if exc != nil {
			return Value{}, exc
		}
		return v, nil
	case *PSubscript:
		container, exc := ev.eval(x.X)
		if exc != nil {
			return Value{}, exc
		}
		index, exc := ev.eval(x.Index)
		if exc != nil {
			container.Drop(ev.heap)
			return Value{}, exc
		}
		return Subscript(container, index, ev.heap, ev.interns)
	}
	return Value{}, &ExceptionRaise{Kind: NotImplementedError, Message: "unknown prepared expression node"}
}

func dropAll(vs []Value, heap *Heap) {
	for _, v := range vs {
		v.Drop(heap)
	}
}

// evalExprList evaluates each element left-to-right. On a mid-list
// failure, every already-evaluated element is dropped before the
// exception propagates.
func (ev *Evaluator) evalExprList(elts []PExpr) ([]Value, *ExceptionRaise) {
	out := make([]Value, 0, len(elts))
	for _, e := range elts {
		v, exc := ev.eval(e)
		if exc != nil {
			dropAll(out, ev.heap)
			return nil, exc
		}
		out = append(out, v)
	}
	return out, nil
}

func (ev *Evaluator) evalDict(x *PDict) (Value, *ExceptionRaise) {
	d := NewDict()
	for i := range x.Keys {
		k, exc := ev.eval(x.Keys[i])
		if exc != nil {
			releaseDict(d, ev.heap)
			return Value{}, exc
		}
		v, exc := ev.eval(x.Vals[i])
		if exc != nil {
			k.Drop(ev.heap)
			releaseDict(d, ev.heap)
			return Value{}, exc
		}
		if !isHashable(k, ev.heap) {
			k.Drop(ev.heap)
			v.Drop(ev.heap)
			releaseDict(d, ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "unhashable type"}
		}
		d.Set(k, v, ev.heap, ev.interns)
	}
	id, err := ev.heap.Allocate(d)
	if err != nil {
		releaseDict(d, ev.heap)
		return Value{}, &ExceptionRaise{Kind: MemoryError, Message: err.Error()}
	}
	return Ref(id), nil
}

func releaseDict(d *HeapDict, heap *Heap) {
	d.Items(func(k, v Value) {
		k.Drop(heap)
		v.Drop(heap)
	})
}

// evalBoolOp implements short-circuit and/or: both operators evaluate
// and return the last-evaluated operand, preserving its truthiness
// rather than coercing to bool.
func (ev *Evaluator) evalBoolOp(x *PBoolOp) (Value, *ExceptionRaise) {
	left, exc := ev.eval(x.Left)
	if exc != nil {
		return Value{}, exc
	}
	truthy := left.IsTruthy(ev.heap)
	if x.Operator == model.And && !truthy {
		return left, nil
	}
	if x.Operator == model.Or && truthy {
		return left, nil
	}
	left.Drop(ev.heap)
	return ev.eval(x.Right)
}

// evalCall implements call evaluation: arguments
// evaluated left-to-right, bundle handed to the bound builtin (or
// method) with ownership transferred; on a mid-argument failure every
// already-evaluated argument is released before the exception
// propagates.
func (ev *Evaluator) evalCall(x *PCall) (Value, *ExceptionRaise) {
	pos, exc := ev.evalExprList(x.Args)
	if exc != nil {
		return Value{}, exc
	}
	kw := make([]KwValue, 0, len(x.Kwargs))
	for _, k := range x.Kwargs {
		v, exc := ev.eval(k.Value)
		if exc != nil {
			dropAll(pos, ev.heap)
			for _, prior := range kw {
				prior.Val.Drop(ev.heap)
			}
			return Value{}, exc
		}
		kw = append(kw, KwValue{Name: k.Name, Val: v})
	}
	args := NewArgs(pos, kw)

	if x.IsMethod {
		recv, exc := ev.eval(x.Recv)
		if exc != nil {
			args.Drop(ev.heap)
			return Value{}, exc
		}
		if len(kw) > 0 {
			recv.Drop(ev.heap)
			args.Drop(ev.heap)
			return Value{}, &ExceptionRaise{Kind: TypeError, Message: "keyword arguments are not supported here"}
		}
		return callMethod(ev, recv, x.Attr, args)
	}
	d := ev.registry.Descriptor(x.Builtin)
	if len(kw) > 0 && !d.AcceptsKwargs {
		args.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: ev.registry.Name(x.Builtin) + "() takes no keyword arguments"}
	}
	return d.Fn(ev, args)
}

// CallBuiltinValue invokes a first-class Builtin value with a
// positional-argument bundle (one argument per iterable), used by
// map's "calling another builtin" case.
func (ev *Evaluator) CallBuiltinValue(fn Value, args ArgValues) (Value, *ExceptionRaise) {
	if fn.Tag != TagBuiltin {
		args.Drop(ev.heap)
		return Value{}, &ExceptionRaise{Kind: TypeError, Message: "'" + fn.TypeName(ev.heap) + "' object is not callable"}
	}
	d := ev.registry.Descriptor(fn.Fn)
	return d.Fn(ev, args)
}
