package compiler

import (
	"fmt"

	"github.com/cortesi/monty/internal/model"
)

// parser is a small recursive-descent parser over the token stream
// produced by lexer. It covers the statement and expression forms
// internal/model names: assignment, if/for/while, break/continue,
// tuple/dict literals, attribute/subscript access, and unary/boolean
// operators.
type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses src into a model.Module, the entrypoint
// internal/prepare and pkg/monty drive.
func Parse(src string) (*model.Module, *ParseError) {
	return parseModule(src)
}

func parseModule(src string) (*model.Module, *ParseError) {
	lx := newLexer(src)
	toks, err := lx.tokenize()
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return nil, pe
		}
		return nil, &ParseError{Kind: PEParsing, Msg: err.Error()}
	}
	p := &parser{toks: toks}
	body, perr := p.parseStatements(tkEOF)
	if perr != nil {
		return nil, perr
	}
	return &model.Module{Body: body}, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(k TokenKind) bool { return p.cur().kind == k }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Kind: PEParsing, Msg: fmt.Sprintf("line %d: %s", p.cur().line, fmt.Sprintf(format, args...))}
}

func (p *parser) expect(k TokenKind) (token, *ParseError) {
	if !p.at(k) {
		return token{}, p.errorf("unexpected token %v, wanted %v", p.cur().kind, k)
	}
	return p.advance(), nil
}

// skipNewlines consumes stray blank-line NEWLINEs between statements.
func (p *parser) skipNewlines() {
	for p.at(tkNewline) {
		p.advance()
	}
}

func (p *parser) parseStatements(end TokenKind) ([]model.Stmt, *ParseError) {
	var out []model.Stmt
	p.skipNewlines()
	for !p.at(end) && !p.at(tkEOF) {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
		p.skipNewlines()
	}
	return out, nil
}

func (p *parser) parseBlock() ([]model.Stmt, *ParseError) {
	if _, err := p.expect(tkColon); err != nil {
		return nil, err
	}
	if p.at(tkNewline) {
		p.advance()
		if _, err := p.expect(tkIndent); err != nil {
			return nil, err
		}
		body, err := p.parseStatements(tkDedent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkDedent); err != nil {
			return nil, err
		}
		return body, nil
	}
	stmts, err := p.parseSimpleStmt()
	if err != nil {
		return nil, err
	}
	if p.at(tkNewline) {
		p.advance()
	}
	return stmts, nil
}

func (p *parser) parseStatement() ([]model.Stmt, *ParseError) {
	switch p.cur().kind {
	case tkIf:
		s, err := p.parseIf()
		return []model.Stmt{s}, err
	case tkFor:
		s, err := p.parseFor()
		return []model.Stmt{s}, err
	case tkWhile:
		s, err := p.parseWhile()
		return []model.Stmt{s}, err
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseIf() (model.Stmt, *ParseError) {
	line := p.cur().line
	p.advance() // if/elif
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orElse []model.Stmt
	switch p.cur().kind {
	case tkElif:
		s, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		orElse = []model.Stmt{s}
	case tkElse:
		p.advance()
		orElse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &model.If{Base: model.NewBase(line), Test: test, Body: body, OrElse: orElse}, nil
}

func (p *parser) parseFor() (model.Stmt, *ParseError) {
	line := p.cur().line
	p.advance() // for
	target, err := p.expect(tkIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkIn); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orElse []model.Stmt
	if p.at(tkElse) {
		p.advance()
		orElse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &model.For{Base: model.NewBase(line), Target: target.text, Iter: iter, Body: body, OrElse: orElse}, nil
}

func (p *parser) parseWhile() (model.Stmt, *ParseError) {
	line := p.cur().line
	p.advance() // while
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var orElse []model.Stmt
	if p.at(tkElse) {
		p.advance()
		orElse, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &model.While{Base: model.NewBase(line), Test: test, Body: body, OrElse: orElse}, nil
}

var assignOps = map[TokenKind]model.BinOp{
	tkPlusEq:        model.Add,
	tkMinusEq:       model.Sub,
	tkStarEq:        model.Mul,
	tkSlashEq:       model.Div,
	tkDoubleSlashEq: model.FloorDiv,
	tkPercentEq:     model.Mod,
	tkDoubleStarEq:  model.Pow,
	tkAmpEq:         model.BitAnd,
	tkPipeEq:        model.BitOr,
	tkCaretEq:       model.BitXor,
	tkLShiftEq:      model.LShift,
	tkRShiftEq:      model.RShift,
}

func (p *parser) parseSimpleStmt() ([]model.Stmt, *ParseError) {
	line := p.cur().line
	switch p.cur().kind {
	case tkPass:
		p.advance()
		return []model.Stmt{&model.Pass{Base: model.NewBase(line)}}, nil
	case tkBreak:
		p.advance()
		return []model.Stmt{&model.Break{Base: model.NewBase(line)}}, nil
	case tkContinue:
		p.advance()
		return []model.Stmt{&model.Continue{Base: model.NewBase(line)}}, nil
	}

	// identifier '=' expr  |  identifier OP= expr  |  bare expr statement
	if p.at(tkIdent) && (p.toks[p.pos+1].kind == tkAssign || isAssignOp(p.toks[p.pos+1].kind)) {
		name := p.advance()
		opTok := p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if opTok.kind == tkAssign {
			return []model.Stmt{&model.Assign{Base: model.NewBase(line), Target: name.text, Value: value}}, nil
		}
		op := assignOps[opTok.kind]
		return []model.Stmt{&model.OpAssign{Base: model.NewBase(line), Target: name.text, Op: op, Value: value}}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return []model.Stmt{&model.ExprStmt{Base: model.NewBase(line), X: expr}}, nil
}

func isAssignOp(k TokenKind) bool {
	_, ok := assignOps[k]
	return ok
}
