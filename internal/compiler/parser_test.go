package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortesi/monty/internal/model"
)

func TestParseSimpleExpression(t *testing.T) {
	mod, err := Parse("1+2")
	require.Nil(t, err)
	require.Len(t, mod.Body, 1)
	_, ok := mod.Body[0].(*model.ExprStmt)
	assert.True(t, ok)
}

func TestParseAssignAndFor(t *testing.T) {
	mod, err := Parse("x=0\nfor i in range(3):\n  x+=i\nx")
	require.Nil(t, err)
	require.Len(t, mod.Body, 3)
	_, ok := mod.Body[0].(*model.Assign)
	assert.True(t, ok)
	_, ok = mod.Body[1].(*model.For)
	assert.True(t, ok)
}

func TestParseIfElse(t *testing.T) {
	mod, err := Parse("if 1:\n  x=1\nelse:\n  x=2\n")
	require.Nil(t, err)
	require.Len(t, mod.Body, 1)
	ifStmt, ok := mod.Body[0].(*model.If)
	require.True(t, ok)
	assert.Len(t, ifStmt.Body, 1)
	assert.Len(t, ifStmt.OrElse, 1)
}

func TestParseListTupleDictLiterals(t *testing.T) {
	mod, err := Parse("[1, 2, 3]\n(1, 2)\n{'a': 1}")
	require.Nil(t, err)
	require.Len(t, mod.Body, 3)

	es := mod.Body[0].(*model.ExprStmt)
	_, ok := es.X.(*model.List)
	assert.True(t, ok)

	es = mod.Body[1].(*model.ExprStmt)
	_, ok = es.X.(*model.Tuple)
	assert.True(t, ok)

	es = mod.Body[2].(*model.ExprStmt)
	_, ok = es.X.(*model.Dict)
	assert.True(t, ok)
}

func TestParseAttributeAndSubscript(t *testing.T) {
	mod, err := Parse("a.b\nc[0]")
	require.Nil(t, err)
	require.Len(t, mod.Body, 2)

	es := mod.Body[0].(*model.ExprStmt)
	_, ok := es.X.(*model.Attribute)
	assert.True(t, ok)

	es = mod.Body[1].(*model.ExprStmt)
	_, ok = es.X.(*model.Subscript)
	assert.True(t, ok)
}

func TestParseBreakContinue(t *testing.T) {
	mod, err := Parse("for i in range(3):\n  if i==1:\n    continue\n  if i==2:\n    break\n")
	require.Nil(t, err)
	forStmt := mod.Body[0].(*model.For)
	assert.Len(t, forStmt.Body, 2)
}

func TestParseBoolAndUnaryOps(t *testing.T) {
	mod, err := Parse("not True\n1 and 2\n1 or 2\n-5")
	require.Nil(t, err)
	require.Len(t, mod.Body, 4)

	es := mod.Body[0].(*model.ExprStmt)
	_, ok := es.X.(*model.UnaryOpExpr)
	assert.True(t, ok)

	es = mod.Body[1].(*model.ExprStmt)
	_, ok = es.X.(*model.BoolOpExpr)
	assert.True(t, ok)
}

func TestParseWhileLoop(t *testing.T) {
	mod, err := Parse("i=0\nwhile i<3:\n  i+=1\n")
	require.Nil(t, err)
	require.Len(t, mod.Body, 2)
	_, ok := mod.Body[1].(*model.While)
	assert.True(t, ok)
}

func TestParseSyntaxErrorSurfaces(t *testing.T) {
	_, err := Parse("def f(:\n")
	require.NotNil(t, err)
}

func TestParseCallWithKeywordArgument(t *testing.T) {
	mod, err := Parse("getattr(1, 'x', default=2)")
	require.Nil(t, err)
	es := mod.Body[0].(*model.ExprStmt)
	call, ok := es.X.(*model.Call)
	require.True(t, ok)
	assert.NotEmpty(t, call.Kwargs)
}
