package codegen

import (
	"fmt"
	"strings"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/resolver"
	"github.com/uwconv/toolchain/lang/token"
)

// genExpr emits code that leaves exactly one value on top of the stack.
func (g *generator) genExpr(fn *resolver.FuncInfo, buf *strings.Builder, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		return g.genLiteral(buf, n)
	case *ast.Ident:
		return g.genIdentValue(fn, buf, n)
	case *ast.UnOp:
		return g.genUnOp(fn, buf, n)
	case *ast.BinOp:
		return g.genBinOp(fn, buf, n)
	case *ast.ArrayAccess:
		if err := g.genArrayAddr(fn, buf, n); err != nil {
			return err
		}
		emit(buf, "FETCHM")
		return nil
	case *ast.FuncCall:
		return g.genCallExpr(fn, buf, n)
	case *ast.ArrayLit:
		return fmt.Errorf("codegen: %s: array literal is only valid as a variable's initial value", n.Pos())
	default:
		return fmt.Errorf("codegen: %s: unhandled expression %T", e.Pos(), e)
	}
}

func (g *generator) genLiteral(buf *strings.Builder, n *ast.Literal) error {
	switch n.Kind {
	case token.INT:
		emit(buf, "PUSHI %d", uint16(n.Int))
	case token.TRUE:
		emit(buf, "PUSHI 1")
	case token.FALSE:
		emit(buf, "PUSHI 0")
	case token.STRING:
		id := g.internString(n.Str)
		emit(buf, "PUSHI %d", id)
	default:
		return fmt.Errorf("codegen: %s: unhandled literal kind %v", n.Pos(), n.Kind)
	}
	return nil
}

// genIdentValue emits the "identifier use" rule: a scalar pushes its
// dereferenced value, an array pushes its absolute base address.
func (g *generator) genIdentValue(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.Ident) error {
	sym := g.symbolFor(fn, n.Name)
	if sym == nil {
		return fmt.Errorf("codegen: %s: undefined identifier %q", n.Pos(), n.Name)
	}
	if sym.Type == resolver.TypeArray {
		emit(buf, "PUSHBP")
		emit(buf, "PUSHI %d", uint16(sym.Offset))
		emit(buf, "OPADD")
		return nil
	}
	emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
	emit(buf, "FETCHM")
	return nil
}

// genArrayAddr emits the effective element address of an ArrayAccess (the
// identifier's base address plus the index expression), leaving it on top
// of the stack. Plain OPADD is used rather than the dedicated OFFSET
// opcode: elements are stored starting exactly at the identifier's own
// offset with no header cell, so base+index (not OFFSET's base+index-1)
// is the correct element address under this layout.
func (g *generator) genArrayAddr(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.ArrayAccess) error {
	id, ok := n.Array.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: %s: only a simple identifier can be indexed", n.Pos())
	}
	sym := g.symbolFor(fn, id.Name)
	if sym == nil {
		return fmt.Errorf("codegen: %s: undefined identifier %q", n.Pos(), id.Name)
	}
	emit(buf, "PUSHBP")
	emit(buf, "PUSHI %d", uint16(sym.Offset))
	emit(buf, "OPADD")
	if err := g.genExpr(fn, buf, n.Index); err != nil {
		return err
	}
	emit(buf, "OPADD")
	return nil
}

func (g *generator) genUnOp(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.UnOp) error {
	if err := g.genExpr(fn, buf, n.X); err != nil {
		return err
	}
	switch n.Op {
	case token.MINUS:
		emit(buf, "OPNEG")
	case token.NOT, token.BANG:
		emit(buf, "OPNOT")
	default:
		return fmt.Errorf("codegen: %s: unhandled unary operator %v", n.Pos(), n.Op)
	}
	return nil
}

func (g *generator) genBinOp(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.BinOp) error {
	if n.Op == token.PLUS {
		if rewritten, ok := g.trySubstitutionRewrite(fn, n); ok {
			emit(buf, "PUSHI %d", g.internString(rewritten))
			return nil
		}
	}
	op, ok := arithOpcode(n.Op)
	if !ok {
		return fmt.Errorf("codegen: %s: unhandled binary operator %v", n.Pos(), n.Op)
	}
	if err := g.genExpr(fn, buf, n.X); err != nil {
		return err
	}
	if err := g.genExpr(fn, buf, n.Y); err != nil {
		return err
	}
	emit(buf, "%s", op)
	return nil
}

// trySubstitutionRewrite implements the rule: a binary `+` between exactly
// one string literal and one variable identifier becomes a single
// composite string literal with an embedded `@SI`/`@SS` directive, rather
// than a runtime concatenation.
func (g *generator) trySubstitutionRewrite(fn *resolver.FuncInfo, n *ast.BinOp) (string, bool) {
	lit, ident, litFirst := splitLiteralAndIdent(n.X, n.Y)
	if lit == nil || ident == nil {
		return "", false
	}
	if lit.Kind != token.STRING {
		return "", false
	}
	sym := g.symbolFor(fn, ident.Name)
	if sym == nil {
		return "", false
	}
	kind := "I"
	if sym.Type == resolver.TypeString {
		kind = "S"
	}
	directive := fmt.Sprintf("@S%s%d", kind, sym.Offset)
	if litFirst {
		return lit.Str + directive, true
	}
	return directive + lit.Str, true
}

func splitLiteralAndIdent(x, y ast.Expr) (*ast.Literal, *ast.Ident, bool) {
	if lit, ok := x.(*ast.Literal); ok {
		if id, ok := y.(*ast.Ident); ok {
			return lit, id, true
		}
	}
	if lit, ok := y.(*ast.Literal); ok {
		if id, ok := x.(*ast.Ident); ok {
			return lit, id, false
		}
	}
	return nil, nil, false
}

// genCallExpr emits a call that produces exactly one value: a user
// function call (args pushed, CALL, caller POPs, PUSH_REG) or a built-in
// call (args marshalled through temps as addresses, CALLI; the VM
// auto-pushes the result).
func (g *generator) genCallExpr(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.FuncCall) error {
	if _, ok := g.table.Funcs[n.Name]; ok {
		return g.genUserCall(fn, buf, n)
	}
	if id, ok := resolver.BuiltinByName[n.Name]; ok {
		return g.genBuiltinCall(fn, buf, id, n.Args)
	}
	if id, ok := resolver.HostBuiltinByName[n.Name]; ok {
		return g.genBuiltinCall(fn, buf, id, n.Args)
	}
	return fmt.Errorf("codegen: %s: undefined function %q", n.Pos(), n.Name)
}

func (g *generator) genUserCall(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.FuncCall) error {
	for _, a := range n.Args {
		if err := g.genExpr(fn, buf, a); err != nil {
			return err
		}
	}
	emit(buf, "CALL %s", funcLabel(n.Name))
	for range n.Args {
		emit(buf, "POP")
	}
	emit(buf, "PUSH_REG")
	return nil
}

// genBuiltinCall marshals each argument's value into a scratch cell, pushes
// the scratch cells' addresses left to right, pushes the count, then emits
// CALLI id. The result lands on the stack automatically.
func (g *generator) genBuiltinCall(fn *resolver.FuncInfo, buf *strings.Builder, id int, args []ast.Expr) error {
	cells := make([]uint16, len(args))
	for i, a := range args {
		cell := g.temps.Alloc()
		cells[i] = cell
		emit(buf, "PUSHI %d", cell)
		if err := g.genExpr(fn, buf, a); err != nil {
			return err
		}
		emit(buf, "STO")
	}
	for _, cell := range cells {
		emit(buf, "PUSHI %d", cell)
	}
	emit(buf, "PUSHI %d", uint16(len(args)))
	emit(buf, "CALLI %d", uint16(id))
	for _, cell := range cells {
		g.temps.Free(cell)
	}
	return nil
}
