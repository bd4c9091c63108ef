package codegen

import (
	"fmt"
	"strings"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/resolver"
)

func (g *generator) genStmts(fn *resolver.FuncInfo, buf *strings.Builder, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := g.genStmt(fn, buf, s); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) genStmt(fn *resolver.FuncInfo, buf *strings.Builder, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDecl:
		return g.genVarDecl(fn, buf, n)
	case *ast.Assign:
		return g.genAssign(fn, buf, n)
	case *ast.If:
		return g.genIf(fn, buf, n)
	case *ast.While:
		return g.genWhile(fn, buf, n)
	case *ast.Return:
		return g.genReturn(fn, buf, n)
	case *ast.Say:
		if err := g.genExpr(fn, buf, n.Value); err != nil {
			return err
		}
		emit(buf, "SAY_OP")
		return nil
	case *ast.Ask:
		return g.genAsk(fn, buf, n)
	case *ast.Menu:
		return g.genMenu(fn, buf, n)
	case *ast.FilterMenu:
		return g.genFilterMenu(fn, buf, n)
	case *ast.Goto:
		emit(buf, "JMP %s", userLabel(n.Label))
		return nil
	case *ast.Label:
		emitLabel(buf, userLabel(n.Name))
		return nil
	case *ast.Exit:
		emit(buf, "EXIT_OP")
		return nil
	case *ast.ExprStmt:
		if err := g.genExpr(fn, buf, n.X); err != nil {
			return err
		}
		emit(buf, "POP")
		return nil
	case *ast.FuncDef:
		return fmt.Errorf("codegen: %s: nested function definitions are not supported", n.Pos())
	default:
		return fmt.Errorf("codegen: %s: unhandled statement %T", s.Pos(), s)
	}
}

// genVarDecl allocates (via the resolver's already-assigned offset) and
// initializes a let-bound variable: an array literal stores each element
// into its own contiguous cell, a scalar stores the single value.
func (g *generator) genVarDecl(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.VarDecl) error {
	sym := g.symbolFor(fn, n.Name)
	if sym == nil {
		return fmt.Errorf("codegen: %s: undefined variable %q", n.Pos(), n.Name)
	}
	if arr, ok := n.Value.(*ast.ArrayLit); ok {
		for i, el := range arr.Elems {
			emit(buf, "PUSHI_EFF %d", uint16(sym.Offset+i))
			if err := g.genExpr(fn, buf, el); err != nil {
				return err
			}
			emit(buf, "STO")
		}
		return nil
	}
	emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
	if err := g.genExpr(fn, buf, n.Value); err != nil {
		return err
	}
	emit(buf, "STO")
	return nil
}

func (g *generator) genAssign(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.Assign) error {
	switch target := n.Target.(type) {
	case *ast.Ident:
		return g.genAssignIdent(fn, buf, target, n)
	case *ast.ArrayAccess:
		return g.genAssignArray(fn, buf, target, n)
	default:
		return fmt.Errorf("codegen: %s: invalid assignment target %T", n.Pos(), n.Target)
	}
}

func (g *generator) genAssignIdent(fn *resolver.FuncInfo, buf *strings.Builder, target *ast.Ident, n *ast.Assign) error {
	sym := g.symbolFor(fn, target.Name)
	if sym == nil {
		return fmt.Errorf("codegen: %s: undefined variable %q", n.Pos(), target.Name)
	}
	if op, ok := compoundOpcode(n.Op); ok {
		emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
		emit(buf, "FETCHM")
		if err := g.genExpr(fn, buf, n.Value); err != nil {
			return err
		}
		emit(buf, "%s", op)
		emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
		emit(buf, "SWAP")
		emit(buf, "STO")
		return nil
	}
	emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
	if err := g.genExpr(fn, buf, n.Value); err != nil {
		return err
	}
	emit(buf, "STO")
	return nil
}

func (g *generator) genAssignArray(fn *resolver.FuncInfo, buf *strings.Builder, target *ast.ArrayAccess, n *ast.Assign) error {
	if _, ok := compoundOpcode(n.Op); !ok {
		if err := g.genArrayAddr(fn, buf, target); err != nil {
			return err
		}
		if err := g.genExpr(fn, buf, n.Value); err != nil {
			return err
		}
		emit(buf, "STO")
		return nil
	}

	op, _ := compoundOpcode(n.Op)
	addrCell := g.temps.Alloc()
	defer g.temps.Free(addrCell)

	emit(buf, "PUSHI %d", addrCell)
	if err := g.genArrayAddr(fn, buf, target); err != nil {
		return err
	}
	emit(buf, "STO")

	emit(buf, "PUSHI %d", addrCell)
	emit(buf, "FETCHM")
	emit(buf, "FETCHM")
	if err := g.genExpr(fn, buf, n.Value); err != nil {
		return err
	}
	emit(buf, "%s", op)

	emit(buf, "PUSHI %d", addrCell)
	emit(buf, "FETCHM")
	emit(buf, "SWAP")
	emit(buf, "STO")
	return nil
}

// genIf lowers a chain of if/elseif/else into nested BEQ/JMP around each
// clause's body: the false branch of each test falls through to the next
// clause's test (or the else body, or the end).
func (g *generator) genIf(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.If) error {
	end := g.newLabel("endif")

	clauses := make([]struct {
		cond ast.Expr
		body []ast.Stmt
	}, 0, 1+len(n.ElseIfs))
	clauses = append(clauses, struct {
		cond ast.Expr
		body []ast.Stmt
	}{n.Cond, n.Then})
	for _, ei := range n.ElseIfs {
		clauses = append(clauses, struct {
			cond ast.Expr
			body []ast.Stmt
		}{ei.Cond, ei.Body})
	}

	for _, c := range clauses {
		next := g.newLabel("elif")
		if err := g.genExpr(fn, buf, c.cond); err != nil {
			return err
		}
		emit(buf, "BEQ %s", next)
		if err := g.genStmts(fn, buf, c.body); err != nil {
			return err
		}
		emit(buf, "JMP %s", end)
		emitLabel(buf, next)
	}
	if n.HasElse {
		if err := g.genStmts(fn, buf, n.Else); err != nil {
			return err
		}
	}
	emitLabel(buf, end)
	return nil
}

func (g *generator) genWhile(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.While) error {
	start := g.newLabel("while")
	end := g.newLabel("endwhile")
	emitLabel(buf, start)
	if err := g.genExpr(fn, buf, n.Cond); err != nil {
		return err
	}
	emit(buf, "BEQ %s", end)
	if err := g.genStmts(fn, buf, n.Body); err != nil {
		return err
	}
	emit(buf, "JMP %s", start)
	emitLabel(buf, end)
	return nil
}

// genReturn routes the return value through the result register so it
// survives the BPTOSP that discards the callee's frame: the caller
// retrieves it afterward with PUSH_REG.
func (g *generator) genReturn(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.Return) error {
	if n.Value != nil {
		if err := g.genExpr(fn, buf, n.Value); err != nil {
			return err
		}
	} else {
		emit(buf, "PUSHI 0")
	}
	emit(buf, "SAVE_REG")
	emit(buf, "BPTOSP")
	emit(buf, "POPBP")
	emit(buf, "RET")
	return nil
}

// storeResultInto stores a value already sitting on top of the stack (the
// auto-pushed result of a suspending CALLI) into sym: the address is
// pushed after the value, so a SWAP restores STO's expected [addr, value]
// order.
func (g *generator) storeResultInto(buf *strings.Builder, sym *resolver.Symbol) {
	emit(buf, "PUSHI_EFF %d", uint16(sym.Offset))
	emit(buf, "SWAP")
	emit(buf, "STO")
}

// babl_menu, babl_fmenu, and babl_ask are reachable only through the
// menu/filtermenu/ask statements, so they're omitted from
// resolver.BuiltinByName and their fixed import IDs are named here instead.
const (
	bablMenu  = 0
	bablFmenu = 1
	bablAsk   = 3
)

func (g *generator) genAsk(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.Ask) error {
	sym := g.symbolFor(fn, n.Target)
	if sym == nil {
		return fmt.Errorf("codegen: %s: undefined variable %q", n.Pos(), n.Target)
	}
	emit(buf, "PUSHI 0")
	emit(buf, "CALLI %d", bablAsk)
	g.storeResultInto(buf, sym)
	return nil
}

// genMenu builds a temp array of option string IDs terminated by 0, then
// calls babl_menu with the address of a cell holding the array's base
// address (the indirection CALLI's argument-marshalling convention
// expects).
func (g *generator) genMenu(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.Menu) error {
	base := g.temps.AllocBlock(len(n.Options) + 1)
	for i, opt := range n.Options {
		emit(buf, "PUSHI %d", base+uint16(i))
		if err := g.genExpr(fn, buf, opt); err != nil {
			return err
		}
		emit(buf, "STO")
	}
	emit(buf, "PUSHI %d", base+uint16(len(n.Options)))
	emit(buf, "PUSHI 0")
	emit(buf, "STO")

	return g.emitSingleArrayCall(fn, buf, bablMenu, base, n.Target)
}

func (g *generator) genFilterMenu(fn *resolver.FuncInfo, buf *strings.Builder, n *ast.FilterMenu) error {
	count := len(n.Strings)
	strBase := g.temps.AllocBlock(count + 1)
	flagBase := g.temps.AllocBlock(count + 1)

	for i, s := range n.Strings {
		emit(buf, "PUSHI %d", strBase+uint16(i))
		if err := g.genExpr(fn, buf, s); err != nil {
			return err
		}
		emit(buf, "STO")
	}
	emit(buf, "PUSHI %d", strBase+uint16(count))
	emit(buf, "PUSHI 0")
	emit(buf, "STO")

	for i, f := range n.Flags {
		emit(buf, "PUSHI %d", flagBase+uint16(i))
		if err := g.genExpr(fn, buf, f); err != nil {
			return err
		}
		emit(buf, "STO")
	}
	emit(buf, "PUSHI %d", flagBase+uint16(count))
	emit(buf, "PUSHI 0")
	emit(buf, "STO")

	strCell := g.temps.Alloc()
	flagCell := g.temps.Alloc()
	emit(buf, "PUSHI %d", strCell)
	emit(buf, "PUSHI %d", strBase)
	emit(buf, "STO")
	emit(buf, "PUSHI %d", flagCell)
	emit(buf, "PUSHI %d", flagBase)
	emit(buf, "STO")

	emit(buf, "PUSHI %d", strCell)
	emit(buf, "PUSHI %d", flagCell)
	emit(buf, "PUSHI 2")
	emit(buf, "CALLI %d", bablFmenu)
	g.temps.Free(strCell)
	g.temps.Free(flagCell)

	if n.Target != "" {
		sym := g.symbolFor(fn, n.Target)
		if sym == nil {
			return fmt.Errorf("codegen: %s: undefined variable %q", n.Pos(), n.Target)
		}
		g.storeResultInto(buf, sym)
	} else {
		emit(buf, "POP")
	}
	return nil
}

func (g *generator) emitSingleArrayCall(fn *resolver.FuncInfo, buf *strings.Builder, builtinID int, base uint16, target string) error {
	cell := g.temps.Alloc()
	emit(buf, "PUSHI %d", cell)
	emit(buf, "PUSHI %d", base)
	emit(buf, "STO")

	emit(buf, "PUSHI %d", cell)
	emit(buf, "PUSHI 1")
	emit(buf, "CALLI %d", builtinID)
	g.temps.Free(cell)

	if target != "" {
		sym := g.symbolFor(fn, target)
		if sym == nil {
			return fmt.Errorf("undefined variable %q", target)
		}
		g.storeResultInto(buf, sym)
	} else {
		emit(buf, "POP")
	}
	return nil
}

// genFunction emits a function's full body: the frame prologue, the body
// statements, and an implicit epilogue returning 0 if control falls off
// the end without an explicit return.
func (g *generator) genFunction(fi *resolver.FuncInfo, fd *ast.FuncDef, buf *strings.Builder) error {
	emit(buf, "PUSHBP")
	emit(buf, "SPTOBP")
	emit(buf, "PUSHI %d", uint16(fi.NumLocals))
	emit(buf, "ADDSP")

	if err := g.genStmts(fi, buf, fd.Body); err != nil {
		return err
	}

	emit(buf, "PUSHI 0")
	emit(buf, "SAVE_REG")
	emit(buf, "BPTOSP")
	emit(buf, "POPBP")
	emit(buf, "RET")
	return nil
}
