package runtime

import "github.com/cortesi/monty/internal/model"

// This file defines the output shape of the Prepare pass: the same
// statement/expression shapes the parser produces, with
// every bare Name rewritten to a dense Slot index and every Call target
// rewritten to either a bound BuiltinID or a method-dispatch attribute.
// internal/prepare builds these; internal/runtime's Evaluator walks
// them. Keeping the type definitions here (rather than in a separate
// package the Evaluator would have to import back from) avoids an
// import cycle between the two.

// PStmt is implemented by every prepared statement node.
type PStmt interface{ pstmtNode() }

// PExpr is implemented by every prepared expression node.
type PExpr interface{ pexprNode() }

type PPass struct{}
type PExprStmt struct{ X PExpr }
type PAssign struct {
	Slot int
	X    PExpr
}
type POpAssign struct {
	Slot int
	Op   model.BinOp
	X    PExpr
}
type PIf struct {
	Test         PExpr
	Body, OrElse []PStmt
}
type PFor struct {
	Slot         int
	Iter         PExpr
	Body, OrElse []PStmt
}
type PWhile struct {
	Test         PExpr
	Body, OrElse []PStmt
}
type PBreak struct{}
type PContinue struct{}

func (*PPass) pstmtNode()      {}
func (*PExprStmt) pstmtNode()  {}
func (*PAssign) pstmtNode()    {}
func (*POpAssign) pstmtNode()  {}
func (*PIf) pstmtNode()        {}
func (*PFor) pstmtNode()       {}
func (*PWhile) pstmtNode()     {}
func (*PBreak) pstmtNode()     {}
func (*PContinue) pstmtNode()  {}

// PConstant carries an already-immediate Value (None/Bool/Int/Float/
// Ellipsis) computed once by Prepare and copied verbatim on every
// evaluation — cheap because these variants never own a heap
// reference.
type PConstant struct{ V Value }

// PInternConstant is a string literal, pre-interned by Prepare so every
// evaluation shares the same NameId instead of re-allocating. This is
// distinct from a heap HeapString: a literal's *content* is static, so
// — like CPython's literal-string caching — it is cheap to share,
// unlike a string built at runtime by concatenation or str(), which
// always allocates a fresh heap object.
type PInternConstant struct{ N NameID }

// PBytesConstant holds the literal bytes; a fresh HeapBytes object is
// allocated on every evaluation, so each evaluation yields a distinct
// instance with its own identity.
type PBytesConstant struct{ B []byte }

type PName struct{ Slot int }

type POp struct {
	Left, Right PExpr
	Operator    model.BinOp
}
type PCmp struct {
	Left, Right PExpr
	Operator    model.CmpOp
}
type PBoolOp struct {
	Left, Right PExpr
	Operator    model.BoolOp
}
type PUnaryOp struct {
	X        PExpr
	Operator model.UnaryOp
}

// PKwArg is a prepared keyword argument, its name already interned.
type PKwArg struct {
	Name  NameID
	Value PExpr
}

// PCall is either a builtin call (Func was a bare Name the Prepare pass
// resolved against the Registry) or a method call (Func was an
// Attribute; Recv/Attr are carried instead and dispatch happens at
// runtime per the receiver's dynamic type, "Method
// dispatch... goes through a per-container call_attr table").
type PCall struct {
	IsMethod bool
	Builtin  BuiltinID
	Recv     PExpr
	Attr     NameID
	Args     []PExpr
	Kwargs   []PKwArg
}

type PList struct{ Elts []PExpr }
type PTuple struct{ Elts []PExpr }
type PDict struct{ Keys, Vals []PExpr }

type PAttribute struct {
	X    PExpr
	Attr NameID
}
type PSubscript struct {
	X     PExpr
	Index PExpr
}

func (*PConstant) pexprNode()       {}
func (*PInternConstant) pexprNode() {}
func (*PBytesConstant) pexprNode()  {}
func (*PName) pexprNode()           {}
func (*POp) pexprNode()             {}
func (*PCmp) pexprNode()            {}
func (*PBoolOp) pexprNode()         {}
func (*PUnaryOp) pexprNode()        {}
func (*PCall) pexprNode()           {}
func (*PList) pexprNode()           {}
func (*PTuple) pexprNode()          {}
func (*PDict) pexprNode()           {}
func (*PAttribute) pexprNode()      {}
func (*PSubscript) pexprNode()      {}

// PreparedModule is the complete output of the Prepare pass: the
// indexed statement tree plus the namespace template Executor.Run
// clones for every execution.
type PreparedModule struct {
	Body       []PStmt
	NumSlots   int
	InputCount int
	Interner   *Interner
	Registry   *Registry
}
