package compiler

import (
	"strconv"

	"github.com/cortesi/monty/internal/model"
)

// Expression grammar, loosest to tightest:
//
//	or_test     := and_test ('or' and_test)*
//	and_test    := not_test ('and' not_test)*
//	not_test    := 'not' not_test | comparison
//	comparison  := bitwise_or (cmp_op bitwise_or)*
//	bitwise_or  := bitwise_xor ('|' bitwise_xor)*
//	bitwise_xor := bitwise_and ('^' bitwise_and)*
//	bitwise_and := shift ('&' shift)*
//	shift       := arith (('<<'|'>>') arith)*
//	arith       := term (('+'|'-') term)*
//	term        := unary (('*'|'/'|'//'|'%') unary)*
//	unary       := ('+'|'-'|'~') unary | power
//	power       := postfix ('**' unary)?
//	postfix     := atom (call | attr | subscript)*
func (p *parser) parseExpr() (model.Expr, *ParseError) { return p.parseOrTest() }

func (p *parser) parseOrTest() (model.Expr, *ParseError) {
	left, err := p.parseAndTest()
	if err != nil {
		return nil, err
	}
	for p.at(tkOr) {
		line := p.cur().line
		p.advance()
		right, err := p.parseAndTest()
		if err != nil {
			return nil, err
		}
		left = &model.BoolOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: model.Or}
	}
	return left, nil
}

func (p *parser) parseAndTest() (model.Expr, *ParseError) {
	left, err := p.parseNotTest()
	if err != nil {
		return nil, err
	}
	for p.at(tkAnd) {
		line := p.cur().line
		p.advance()
		right, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		left = &model.BoolOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: model.And}
	}
	return left, nil
}

func (p *parser) parseNotTest() (model.Expr, *ParseError) {
	if p.at(tkNot) {
		line := p.cur().line
		p.advance()
		x, err := p.parseNotTest()
		if err != nil {
			return nil, err
		}
		return &model.UnaryOpExpr{Base: model.NewBase(line), X: x, Operator: model.Not}, nil
	}
	return p.parseComparison()
}

var cmpTokens = map[TokenKind]model.CmpOp{
	tkEqEq: model.Eq,
	tkNotEq: model.NotEq,
	tkLt:   model.Lt,
	tkLtE:  model.LtE,
	tkGt:   model.Gt,
	tkGtE:  model.GtE,
}

func (p *parser) parseComparison() (model.Expr, *ParseError) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for {
		line := p.cur().line
		if op, ok := cmpTokens[p.cur().kind]; ok {
			p.advance()
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &model.CmpOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: op}
			continue
		}
		if p.at(tkIn) {
			p.advance()
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &model.CmpOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: model.In}
			continue
		}
		if p.at(tkNot) && p.toks[p.pos+1].kind == tkIn {
			p.advance()
			p.advance()
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &model.CmpOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: model.NotIn}
			continue
		}
		if p.at(tkIs) {
			p.advance()
			op := model.Is
			if p.at(tkNot) {
				p.advance()
				op = model.IsNot
			}
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &model.CmpOpExpr{Base: model.NewBase(line), Left: left, Right: right, Operator: op}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseBitOr() (model.Expr, *ParseError) {
	left, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.at(tkPipe) {
		line := p.cur().line
		p.advance()
		right, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: model.BitOr}
	}
	return left, nil
}

func (p *parser) parseBitXor() (model.Expr, *ParseError) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.at(tkCaret) {
		line := p.cur().line
		p.advance()
		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: model.BitXor}
	}
	return left, nil
}

func (p *parser) parseBitAnd() (model.Expr, *ParseError) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.at(tkAmp) {
		line := p.cur().line
		p.advance()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: model.BitAnd}
	}
	return left, nil
}

func (p *parser) parseShift() (model.Expr, *ParseError) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	for p.at(tkLShift) || p.at(tkRShift) {
		line := p.cur().line
		op := model.LShift
		if p.at(tkRShift) {
			op = model.RShift
		}
		p.advance()
		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: op}
	}
	return left, nil
}

func (p *parser) parseArith() (model.Expr, *ParseError) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(tkPlus) || p.at(tkMinus) {
		line := p.cur().line
		op := model.Add
		if p.at(tkMinus) {
			op = model.Sub
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: op}
	}
	return left, nil
}

func (p *parser) parseTerm() (model.Expr, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op model.BinOp
		switch p.cur().kind {
		case tkStar:
			op = model.Mul
		case tkSlash:
			op = model.Div
		case tkDoubleSlash:
			op = model.FloorDiv
		case tkPercent:
			op = model.Mod
		default:
			return left, nil
		}
		line := p.cur().line
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &model.Op{Base: model.NewBase(line), Left: left, Right: right, Operator: op}
	}
}

func (p *parser) parseUnary() (model.Expr, *ParseError) {
	switch p.cur().kind {
	case tkPlus:
		line := p.cur().line
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &model.UnaryOpExpr{Base: model.NewBase(line), X: x, Operator: model.Pos}, nil
	case tkMinus:
		line := p.cur().line
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &model.UnaryOpExpr{Base: model.NewBase(line), X: x, Operator: model.Neg}, nil
	case tkTilde:
		line := p.cur().line
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &model.UnaryOpExpr{Base: model.NewBase(line), X: x, Operator: model.Invert}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (model.Expr, *ParseError) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.at(tkDoubleStar) {
		line := p.cur().line
		p.advance()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &model.Op{Base: model.NewBase(line), Left: base, Right: exp, Operator: model.Pow}, nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (model.Expr, *ParseError) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().kind {
		case tkLParen:
			line := p.cur().line
			p.advance()
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			x = &model.Call{Base: model.NewBase(line), Func: x, Args: args, Kwargs: kwargs}
		case tkDot:
			line := p.cur().line
			p.advance()
			name, err := p.expect(tkIdent)
			if err != nil {
				return nil, err
			}
			x = &model.Attribute{Base: model.NewBase(line), X: x, Attr: name.text}
		case tkLBracket:
			line := p.cur().line
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tkRBracket); err != nil {
				return nil, err
			}
			x = &model.Subscript{Base: model.NewBase(line), X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseCallArgs() ([]model.Expr, []model.KwArg, *ParseError) {
	var args []model.Expr
	var kwargs []model.KwArg
	for !p.at(tkRParen) {
		if p.at(tkIdent) && p.toks[p.pos+1].kind == tkAssign {
			name := p.advance()
			p.advance() // '='
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, model.KwArg{Name: name.text, Value: v})
		} else {
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, v)
		}
		if p.at(tkComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tkRParen); err != nil {
		return nil, nil, err
	}
	return args, kwargs, nil
}

func (p *parser) parseAtom() (model.Expr, *ParseError) {
	tok := p.cur()
	line := tok.line
	switch tok.kind {
	case tkInt:
		p.advance()
		v, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.text)
		}
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstInt, I: v}, nil
	case tkFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", tok.text)
		}
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstFloat, F: v}, nil
	case tkString:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstString, S: tok.text}, nil
	case tkBytes:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstBytes, Byts: []byte(tok.text)}, nil
	case tkTrue:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstTrue}, nil
	case tkFalse:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstFalse}, nil
	case tkNone:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstNone}, nil
	case tkEllipsis:
		p.advance()
		return &model.Constant{Base: model.NewBase(line), Kind: model.ConstEllipsis}, nil
	case tkIdent:
		p.advance()
		return &model.Name{Base: model.NewBase(line), Id: tok.text}, nil
	case tkLParen:
		p.advance()
		if p.at(tkRParen) {
			p.advance()
			return &model.Tuple{Base: model.NewBase(line)}, nil
		}
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(tkComma) {
			elts := []model.Expr{first}
			for p.at(tkComma) {
				p.advance()
				if p.at(tkRParen) {
					break
				}
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elts = append(elts, e)
			}
			if _, err := p.expect(tkRParen); err != nil {
				return nil, err
			}
			return &model.Tuple{Base: model.NewBase(line), Elts: elts}, nil
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return first, nil
	case tkLBracket:
		p.advance()
		var elts []model.Expr
		for !p.at(tkRBracket) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
			if p.at(tkComma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tkRBracket); err != nil {
			return nil, err
		}
		return &model.List{Base: model.NewBase(line), Elts: elts}, nil
	case tkLBrace:
		p.advance()
		var keys, vals []model.Expr
		for !p.at(tkRBrace) {
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tkColon); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
			if p.at(tkComma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tkRBrace); err != nil {
			return nil, err
		}
		return &model.Dict{Base: model.NewBase(line), Keys: keys, Vals: vals}, nil
	}
	return nil, p.errorf("unexpected token %v in expression", tok.kind)
}
