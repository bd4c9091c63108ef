// Package codegen lowers a resolved UWScript AST to the assembly text
// consumed by the lang/compiler assembler: statement and expression
// emission, function prologue/epilogue, temp-variable marshalling for
// imported-function calls, and the string-substitution rewrite for
// `"literal" + ident` concatenations.
package codegen

import (
	"fmt"
	"strings"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/compiler"
	"github.com/uwconv/toolchain/lang/resolver"
	"github.com/uwconv/toolchain/lang/token"
)

// Result is everything Generate produces: the assembly text ready for
// compiler.Assemble, and the string literal pool in emission order (index
// == the string ID a PUSHI instruction references).
type Result struct {
	Asm     string
	Strings []string
}

// Generate lowers prog to assembly text using table, the output of
// resolver.Resolve(prog).
func Generate(prog *ast.Program, table *resolver.Table) (*Result, error) {
	g := &generator{
		table:    table,
		strIdx:   make(map[string]int),
		funcBufs: make(map[string]*strings.Builder),
		temps:    newTempAllocator(),
	}

	var funcOrder []string
	for _, s := range prog.Stmts {
		if fd, ok := s.(*ast.FuncDef); ok {
			funcOrder = append(funcOrder, fd.Name)
			buf := &strings.Builder{}
			g.funcBufs[fd.Name] = buf
			if err := g.genFunction(table.Funcs[fd.Name], fd, buf); err != nil {
				return nil, err
			}
			continue
		}
		if err := g.genStmt(nil, &g.main, s); err != nil {
			return nil, err
		}
	}
	emit(&g.main, "EXIT_OP")

	var out strings.Builder
	g.writeHeader(&out, funcOrder)
	out.WriteString(g.main.String())
	for _, name := range funcOrder {
		fmt.Fprintf(&out, "%s:\n", funcLabel(name))
		out.WriteString(g.funcBufs[name].String())
	}

	return &Result{Asm: out.String(), Strings: g.strPool}, nil
}

type generator struct {
	table    *resolver.Table
	main     strings.Builder
	funcBufs map[string]*strings.Builder
	strPool  []string
	strIdx   map[string]int
	labelSeq int
	temps    *tempAllocator
}

func funcLabel(name string) string { return "fn_" + name }
func userLabel(name string) string { return "lbl_" + name }

func (g *generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf("L%s%d", prefix, g.labelSeq)
}

func (g *generator) internString(s string) int {
	if id, ok := g.strIdx[s]; ok {
		return id
	}
	id := len(g.strPool)
	g.strPool = append(g.strPool, s)
	g.strIdx[s] = id
	return id
}

func emit(buf *strings.Builder, format string, args ...any) {
	fmt.Fprintf(buf, "\t"+format+"\n", args...)
}

func emitLabel(buf *strings.Builder, name string) {
	fmt.Fprintf(buf, "%s:\n", name)
}

// symbolFor looks up name in fn's scope, falling back to globals, matching
// the resolver's own search order.
func (g *generator) symbolFor(fn *resolver.FuncInfo, name string) *resolver.Symbol {
	if fn != nil {
		if s, ok := fn.Symbols[name]; ok {
			return s
		}
	}
	return g.table.Globals[name]
}

func arithOpcode(op token.Token) (compiler.Opcode, bool) {
	switch op {
	case token.PLUS:
		return compiler.OPADD, true
	case token.MINUS:
		return compiler.OPSUB, true
	case token.STAR:
		return compiler.OPMUL, true
	case token.SLASH:
		return compiler.OPDIV, true
	case token.PERCENT:
		return compiler.OPMOD, true
	case token.AND:
		return compiler.OPAND, true
	case token.OR:
		return compiler.OPOR, true
	case token.EQEQ:
		return compiler.TSTEQ, true
	case token.NEQ:
		return compiler.TSTNE, true
	case token.GT:
		return compiler.TSTGT, true
	case token.LT:
		return compiler.TSTLT, true
	case token.GE:
		return compiler.TSTGE, true
	case token.LE:
		return compiler.TSTLE, true
	}
	return 0, false
}

func compoundOpcode(op token.Token) (compiler.Opcode, bool) {
	switch op {
	case token.PLUS_EQ:
		return compiler.OPADD, true
	case token.MINUS_EQ:
		return compiler.OPSUB, true
	case token.STAR_EQ:
		return compiler.OPMUL, true
	case token.SLASH_EQ:
		return compiler.OPDIV, true
	}
	return 0, false
}
