// Package prepare implements the Prepare pass: lowering the parser's
// model.Module into a runtime.PreparedModule. Every bare name is
// resolved to a dense slot index in a flat namespace (this core has no
// nested scopes — no functions, no classes, no comprehensions — so a
// single flat SymbolTable is all that's needed, rather than a nested
// per-function/per-class scope chain) and every call target is
// bound once to either a BuiltinID or a method-dispatch attribute.
package prepare

import (
	"github.com/cortesi/monty/internal/model"
	"github.com/cortesi/monty/internal/runtime"
)

// ErrorKind distinguishes why Prepare failed.
type ErrorKind int

const (
	// ErrUnknownCall: a bare-name call target does not resolve to any
	// registered builtin. This core has no user-defined functions, so
	// every call target must bind to the Registry at prepare time.
	ErrUnknownCall ErrorKind = iota
	// ErrInternal: the prepared tree would be malformed (e.g. break or
	// continue outside a loop) — a bug in the parser or in Prepare
	// itself, never caused by otherwise-valid user source.
	ErrInternal
)

// Error is Prepare's failure type, PreEvalException /
// PreEvalInternal cases of ParseError (the Prepare pass's own
// resolution failures, as opposed to the lexer/parser's syntax
// errors).
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Kind == ErrInternal {
		return "internal prepare error: " + e.Msg
	}
	return e.Msg
}

func errUnknownCall(name string) *Error {
	return &Error{Kind: ErrUnknownCall, Msg: "name '" + name + "' is not defined"}
}

func errInternal(msg string) *Error {
	return &Error{Kind: ErrInternal, Msg: msg}
}

// symbolTable assigns dense slot indices to names, first-come
// first-served, with the declared input names pre-seeded in order so
// the host can pre-populate the first k slots with input bindings.
type symbolTable struct {
	slots map[string]int
	count int
}

func newSymbolTable(inputNames []string) *symbolTable {
	st := &symbolTable{slots: make(map[string]int, len(inputNames))}
	for _, n := range inputNames {
		st.define(n)
	}
	return st
}

func (st *symbolTable) define(name string) int {
	if id, ok := st.slots[name]; ok {
		return id
	}
	id := st.count
	st.slots[name] = id
	st.count++
	return id
}

// preparer holds the state threaded through one Prepare call: the
// symbol table, the shared interner, and the registry call targets
// bind against.
type preparer struct {
	syms     *symbolTable
	interner *runtime.Interner
	registry *runtime.Registry
	loopDepth int
}

// Prepare lowers mod into a runtime.PreparedModule. inputNames are
// bound to the first len(inputNames) namespace slots, in order
// (Executor.Run installs the corresponding values there on every
// execution). registry is the shared, already-built builtin catalog
// call targets resolve against.
func Prepare(mod *model.Module, inputNames []string, registry *runtime.Registry) (*runtime.PreparedModule, *Error) {
	p := &preparer{
		syms:     newSymbolTable(inputNames),
		interner: runtime.NewInterner(),
		registry: registry,
	}
	body, err := p.block(mod.Body)
	if err != nil {
		return nil, err
	}
	return &runtime.PreparedModule{
		Body:       body,
		NumSlots:   p.syms.count,
		InputCount: len(inputNames),
		Interner:   p.interner,
		Registry:   registry,
	}, nil
}

func (p *preparer) block(stmts []model.Stmt) ([]runtime.PStmt, *Error) {
	out := make([]runtime.PStmt, 0, len(stmts))
	for _, s := range stmts {
		ps, err := p.stmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, nil
}

func (p *preparer) stmt(s model.Stmt) (runtime.PStmt, *Error) {
	switch st := s.(type) {
	case *model.Pass:
		return &runtime.PPass{}, nil
	case *model.ExprStmt:
		x, err := p.expr(st.X)
		if err != nil {
			return nil, err
		}
		return &runtime.PExprStmt{X: x}, nil
	case *model.Assign:
		x, err := p.expr(st.Value)
		if err != nil {
			return nil, err
		}
		slot := p.syms.define(st.Target)
		return &runtime.PAssign{Slot: slot, X: x}, nil
	case *model.OpAssign:
		x, err := p.expr(st.Value)
		if err != nil {
			return nil, err
		}
		slot := p.syms.define(st.Target)
		return &runtime.POpAssign{Slot: slot, Op: st.Op, X: x}, nil
	case *model.If:
		test, err := p.expr(st.Test)
		if err != nil {
			return nil, err
		}
		body, err := p.block(st.Body)
		if err != nil {
			return nil, err
		}
		orElse, err := p.block(st.OrElse)
		if err != nil {
			return nil, err
		}
		return &runtime.PIf{Test: test, Body: body, OrElse: orElse}, nil
	case *model.For:
		iter, err := p.expr(st.Iter)
		if err != nil {
			return nil, err
		}
		slot := p.syms.define(st.Target)
		p.loopDepth++
		body, err := p.block(st.Body)
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		orElse, err := p.block(st.OrElse)
		if err != nil {
			return nil, err
		}
		return &runtime.PFor{Slot: slot, Iter: iter, Body: body, OrElse: orElse}, nil
	case *model.While:
		test, err := p.expr(st.Test)
		if err != nil {
			return nil, err
		}
		p.loopDepth++
		body, err := p.block(st.Body)
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		orElse, err := p.block(st.OrElse)
		if err != nil {
			return nil, err
		}
		return &runtime.PWhile{Test: test, Body: body, OrElse: orElse}, nil
	case *model.Break:
		if p.loopDepth == 0 {
			return nil, errInternal("'break' outside loop")
		}
		return &runtime.PBreak{}, nil
	case *model.Continue:
		if p.loopDepth == 0 {
			return nil, errInternal("'continue' outside loop")
		}
		return &runtime.PContinue{}, nil
	}
	return nil, errInternal("unknown statement node")
}

func (p *preparer) exprList(elts []model.Expr) ([]runtime.PExpr, *Error) {
	out := make([]runtime.PExpr, 0, len(elts))
	for _, e := range elts {
		pe, err := p.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, pe)
	}
	return out, nil
}

// name lowers a bare identifier reference. A name already bound to a
// slot (by a prior assignment, for-target, or declared input) always
// resolves to that slot. Otherwise, if it names a registered builtin,
// it resolves to a first-class Builtin value — the only way a builtin
// reaches an argument position instead of a call target, e.g. passing
// abs to map — rather than reserving a namespace slot for it; any
// other unbound name still gets a fresh slot, reading it back as
// Undefined until something assigns it.
func (p *preparer) name(id string) runtime.PExpr {
	if slot, ok := p.syms.slots[id]; ok {
		return &runtime.PName{Slot: slot}
	}
	if bid, ok := p.registry.Lookup(id); ok {
		return &runtime.PConstant{V: runtime.BuiltinValue(bid)}
	}
	return &runtime.PName{Slot: p.syms.define(id)}
}

func (p *preparer) expr(e model.Expr) (runtime.PExpr, *Error) {
	switch x := e.(type) {
	case *model.Constant:
		return p.constant(x)
	case *model.Name:
		return p.name(x.Id), nil
	case *model.Op:
		left, err := p.expr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.expr(x.Right)
		if err != nil {
			return nil, err
		}
		return &runtime.POp{Left: left, Right: right, Operator: x.Operator}, nil
	case *model.CmpOpExpr:
		left, err := p.expr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.expr(x.Right)
		if err != nil {
			return nil, err
		}
		return &runtime.PCmp{Left: left, Right: right, Operator: x.Operator}, nil
	case *model.BoolOpExpr:
		left, err := p.expr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.expr(x.Right)
		if err != nil {
			return nil, err
		}
		return &runtime.PBoolOp{Left: left, Right: right, Operator: x.Operator}, nil
	case *model.UnaryOpExpr:
		v, err := p.expr(x.X)
		if err != nil {
			return nil, err
		}
		return &runtime.PUnaryOp{X: v, Operator: x.Operator}, nil
	case *model.Call:
		return p.call(x)
	case *model.List:
		elts, err := p.exprList(x.Elts)
		if err != nil {
			return nil, err
		}
		return &runtime.PList{Elts: elts}, nil
	case *model.Tuple:
		elts, err := p.exprList(x.Elts)
		if err != nil {
			return nil, err
		}
		return &runtime.PTuple{Elts: elts}, nil
	case *model.Dict:
		keys, err := p.exprList(x.Keys)
		if err != nil {
			return nil, err
		}
		vals, err := p.exprList(x.Vals)
		if err != nil {
			return nil, err
		}
		return &runtime.PDict{Keys: keys, Vals: vals}, nil
	case *model.Attribute:
		v, err := p.expr(x.X)
		if err != nil {
			return nil, err
		}
		return &runtime.PAttribute{X: v, Attr: p.interner.Intern(x.Attr)}, nil
	case *model.Subscript:
		v, err := p.expr(x.X)
		if err != nil {
			return nil, err
		}
		idx, err := p.expr(x.Index)
		if err != nil {
			return nil, err
		}
		return &runtime.PSubscript{X: v, Index: idx}, nil
	}
	return nil, errInternal("unknown expression node")
}

func (p *preparer) constant(x *model.Constant) (runtime.PExpr, *Error) {
	switch x.Kind {
	case model.ConstNone:
		return &runtime.PConstant{V: runtime.None}, nil
	case model.ConstTrue:
		return &runtime.PConstant{V: runtime.True}, nil
	case model.ConstFalse:
		return &runtime.PConstant{V: runtime.False}, nil
	case model.ConstEllipsis:
		return &runtime.PConstant{V: runtime.Ellipsis}, nil
	case model.ConstInt:
		return &runtime.PConstant{V: runtime.Int(x.I)}, nil
	case model.ConstFloat:
		return &runtime.PConstant{V: runtime.Float(x.F)}, nil
	case model.ConstString:
		return &runtime.PInternConstant{N: p.interner.Intern(x.S)}, nil
	case model.ConstBytes:
		return &runtime.PBytesConstant{B: x.Byts}, nil
	}
	return nil, errInternal("unknown constant kind")
}

// call lowers a Call node. The Func expression is either a bare Name
// (resolved against the Registry — the only kind of callable this
// core has) or an Attribute (a method call, dispatched per the
// receiver's dynamic type at runtime rather than bound here).
func (p *preparer) call(x *model.Call) (runtime.PExpr, *Error) {
	args, err := p.exprList(x.Args)
	if err != nil {
		return nil, err
	}
	kwargs := make([]runtime.PKwArg, 0, len(x.Kwargs))
	for _, kw := range x.Kwargs {
		v, err := p.expr(kw.Value)
		if err != nil {
			return nil, err
		}
		kwargs = append(kwargs, runtime.PKwArg{Name: p.interner.Intern(kw.Name), Value: v})
	}

	switch fn := x.Func.(type) {
	case *model.Attribute:
		recv, err := p.expr(fn.X)
		if err != nil {
			return nil, err
		}
		return &runtime.PCall{
			IsMethod: true,
			Recv:     recv,
			Attr:     p.interner.Intern(fn.Attr),
			Args:     args,
			Kwargs:   kwargs,
		}, nil
	case *model.Name:
		id, ok := p.registry.Lookup(fn.Id)
		if !ok {
			return nil, errUnknownCall(fn.Id)
		}
		return &runtime.PCall{
			IsMethod: false,
			Builtin:  id,
			Args:     args,
			Kwargs:   kwargs,
		}, nil
	}
	return nil, errInternal("call target is neither a name nor an attribute")
}
