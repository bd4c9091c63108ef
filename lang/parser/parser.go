// Package parser implements a recursive-descent parser for UWScript,
// turning a token stream into an *ast.Program.
package parser

import (
	"fmt"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/scanner"
	"github.com/uwconv/toolchain/lang/token"
)

// Error is a syntax error with its source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Parse parses a single UWScript source file into a Program.
func Parse(filename string, src []byte) (*ast.Program, error) {
	p := &parser{s: scanner.New(filename, src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	pos := p.val.Pos
	stmts, err := p.parseStmts(isEOF)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Position: pos, Stmts: stmts}, nil
}

type parser struct {
	s   *scanner.Scanner
	tok token.Token
	val token.Value
}

func (p *parser) next() error {
	tok, val, err := p.s.Scan()
	if err != nil {
		return &Error{Pos: val.Pos, Msg: err.Error()}
	}
	p.tok, p.val = tok, val
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Pos: p.val.Pos, Msg: fmt.Sprintf(format, args...)}
}

// skipNewlines consumes zero or more NEWLINE tokens (blank lines).
func (p *parser) skipNewlines() error {
	for p.tok == token.NEWLINE {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

// expectEOL consumes exactly one statement terminator: a NEWLINE, or EOF.
func (p *parser) expectEOL() error {
	if p.tok == token.EOF {
		return nil
	}
	if p.tok != token.NEWLINE {
		return p.errorf("expected end of line, got %s", p.tok)
	}
	return p.next()
}

func (p *parser) expect(tok token.Token) (token.Value, error) {
	if p.tok != tok {
		return token.Value{}, p.errorf("expected %s, got %s", tok, p.tok)
	}
	v := p.val
	return v, p.next()
}

func isEOF(tok token.Token) bool { return tok == token.EOF }

// parseStmts parses statements until stop(p.tok) is true.
func (p *parser) parseStmts(stop func(token.Token) bool) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if stop(p.tok) {
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}
