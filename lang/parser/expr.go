package parser

import (
	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/token"
)

// binopPriority gives the left/right binding power of each binary operator,
// per the precedence ladder in the grammar: or < and < ==,!= < relational <
// +,- < *,/,%.
var binopPriority = map[token.Token][2]int{
	token.OR:    {1, 1},
	token.AND:   {2, 2},
	token.EQEQ:  {3, 3},
	token.NEQ:   {3, 3},
	token.LT:    {4, 4},
	token.GT:    {4, 4},
	token.LE:    {4, 4},
	token.GE:    {4, 4},
	token.PLUS:  {5, 5},
	token.MINUS: {5, 5},
	token.STAR:  {6, 6},
	token.SLASH: {6, 6},
	token.PERCENT: {6, 6},
}

const unopPriority = 7

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseSubExpr(0)
}

func (p *parser) parseSubExpr(limit int) (ast.Expr, error) {
	var left ast.Expr
	var err error

	pos := p.val.Pos
	switch p.tok {
	case token.MINUS:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseSubExpr(unopPriority)
		if err != nil {
			return nil, err
		}
		left = &ast.UnOp{Position: pos, Op: token.MINUS, X: x}
	case token.NOT:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseSubExpr(unopPriority)
		if err != nil {
			return nil, err
		}
		left = &ast.UnOp{Position: pos, Op: token.NOT, X: x}
	default:
		left, err = p.parsePostfixExpr()
		if err != nil {
			return nil, err
		}
	}

	for {
		pri, ok := binopPriority[p.tok]
		if !ok || pri[0] <= limit {
			return left, nil
		}
		op := p.tok
		opPos := p.val.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseSubExpr(pri[1])
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Position: opPos, Op: op, X: left, Y: right}
	}
}

// parsePostfixExpr parses a primary expression followed by any number of
// `[expr]` or `(args)` suffixes.
func (p *parser) parsePostfixExpr() (ast.Expr, error) {
	x, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok {
		case token.LBRACK:
			pos := p.val.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACK); err != nil {
				return nil, err
			}
			x = &ast.ArrayAccess{Position: pos, Array: x, Index: idx}
		case token.LPAREN:
			ident, ok := x.(*ast.Ident)
			if !ok {
				return nil, &Error{Pos: p.val.Pos, Msg: "call target must be a function name"}
			}
			pos := p.val.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			args, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			x = &ast.FuncCall{Position: pos, Name: ident.Name, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimaryExpr() (ast.Expr, error) {
	pos := p.val.Pos
	switch p.tok {
	case token.INT:
		v := p.val
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Position: pos, Kind: token.INT, Int: v.Int}, nil
	case token.STRING:
		v := p.val
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Position: pos, Kind: token.STRING, Str: v.Str}, nil
	case token.TRUE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Position: pos, Kind: token.TRUE, Int: 1}, nil
	case token.FALSE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Position: pos, Kind: token.FALSE, Int: 0}, nil
	case token.IDENT:
		v := p.val
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Ident{Position: pos, Name: v.Raw}, nil
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBRACK:
		if err := p.next(); err != nil {
			return nil, err
		}
		elems, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Position: pos, Elems: elems}, nil
	default:
		return nil, p.errorf("unexpected token %s in expression", p.tok)
	}
}
