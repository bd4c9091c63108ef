package parser

import (
	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/token"
)

func isBlockEnd(tok token.Token) bool {
	switch tok {
	case token.ELSE, token.ELSEIF, token.ENDIF, token.ENDWHILE, token.ENDFUNCTION, token.EOF:
		return true
	}
	return false
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	pos := p.val.Pos
	switch p.tok {
	case token.LET:
		return p.parseVarDecl(pos)
	case token.IF:
		return p.parseIf(pos)
	case token.WHILE:
		return p.parseWhile(pos)
	case token.FUNCTION:
		return p.parseFuncDef(pos)
	case token.RETURN:
		return p.parseReturn(pos)
	case token.SAY:
		return p.parseSay(pos)
	case token.ASK:
		return p.parseAsk(pos)
	case token.MENU:
		return p.parseMenu(pos)
	case token.FILTERMENU:
		return p.parseFilterMenu(pos)
	case token.GOTO:
		return p.parseGoto(pos)
	case token.LABEL:
		return p.parseLabel(pos)
	case token.EXIT:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Exit{Position: pos}, p.expectEOL()
	default:
		return p.parseAssignOrExprStmt(pos)
	}
}

func (p *parser) parseVarDecl(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume 'let'
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{Position: pos, Name: name.Raw, Value: val}, p.expectEOL()
}

func (p *parser) parseAssignOrExprStmt(pos token.Position) (ast.Stmt, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch p.tok {
	case token.EQ, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		switch x.(type) {
		case *ast.Ident, *ast.ArrayAccess:
		default:
			return nil, &Error{Pos: pos, Msg: "invalid assignment target"}
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Position: pos, Target: x, Op: op, Value: val}, p.expectEOL()
	default:
		return &ast.ExprStmt{Position: pos, X: x}, p.expectEOL()
	}
}

func (p *parser) parseIf(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil { // consume 'if'
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOL(); err != nil {
		return nil, err
	}
	then, err := p.parseStmts(isBlockEnd)
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{Position: pos, Cond: cond, Then: then}
	for p.tok == token.ELSEIF {
		epos := p.val.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		econd, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectEOL(); err != nil {
			return nil, err
		}
		ebody, err := p.parseStmts(isBlockEnd)
		if err != nil {
			return nil, err
		}
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIf{Position: epos, Cond: econd, Body: ebody})
	}

	if p.tok == token.ELSE {
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectEOL(); err != nil {
			return nil, err
		}
		elseBody, err := p.parseStmts(isBlockEnd)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
		stmt.HasElse = true
	}

	if _, err := p.expect(token.ENDIF); err != nil {
		return nil, err
	}
	return stmt, p.expectEOL()
}

func (p *parser) parseWhile(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOL(); err != nil {
		return nil, err
	}
	body, err := p.parseStmts(isBlockEnd)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.While{Position: pos, Cond: cond, Body: body}, p.expectEOL()
}

func (p *parser) parseFuncDef(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.tok != token.RPAREN {
		pn, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, pn.Raw)
		if p.tok == token.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expectEOL(); err != nil {
		return nil, err
	}
	body, err := p.parseStmts(isBlockEnd)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDFUNCTION); err != nil {
		return nil, err
	}
	return &ast.FuncDef{Position: pos, Name: name.Raw, Params: params, Body: body}, p.expectEOL()
}

func (p *parser) parseReturn(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok == token.NEWLINE || p.tok == token.EOF {
		return &ast.Return{Position: pos}, p.expectEOL()
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Position: pos, Value: val}, p.expectEOL()
}

func (p *parser) parseSay(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Say{Position: pos, Value: val}, p.expectEOL()
}

func (p *parser) parseAsk(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.Ask{Position: pos, Target: name.Raw}, p.expectEOL()
}

// menuTarget optionally parses a bare identifier preceding the '[' of a menu
// or filtermenu statement.
func (p *parser) menuTarget() (string, error) {
	if p.tok != token.IDENT {
		return "", nil
	}
	name := p.val.Raw
	if err := p.next(); err != nil {
		return "", err
	}
	return name, nil
}

func (p *parser) parseMenu(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	target, err := p.menuTarget()
	if err != nil {
		return nil, err
	}

	bracketed := p.tok == token.LBRACK
	if bracketed {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	exprs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if bracketed {
		if _, err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
	}
	return &ast.Menu{Position: pos, Target: target, Options: exprs}, p.expectEOL()
}

func (p *parser) parseFilterMenu(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	target, err := p.menuTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACK); err != nil {
		return nil, err
	}
	exprs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	if len(exprs)%2 != 0 {
		return nil, &Error{Pos: pos, Msg: "filtermenu requires string,flag pairs"}
	}
	fm := &ast.FilterMenu{Position: pos, Target: target}
	for i := 0; i < len(exprs); i += 2 {
		fm.Strings = append(fm.Strings, exprs[i])
		fm.Flags = append(fm.Flags, exprs[i+1])
	}
	return fm, p.expectEOL()
}

func (p *parser) parseGoto(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.Goto{Position: pos, Label: name.Raw}, p.expectEOL()
}

func (p *parser) parseLabel(pos token.Position) (ast.Stmt, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if p.tok == token.COLON {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return &ast.Label{Position: pos, Name: name.Raw}, p.expectEOL()
}

// parseExprList parses a comma-separated list of expressions; used for menu,
// filtermenu, and array literals.
func (p *parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	if p.tok == token.RBRACK || p.tok == token.NEWLINE || p.tok == token.EOF {
		return exprs, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.tok != token.COMMA {
			return exprs, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
