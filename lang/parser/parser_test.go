package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/parser"
)

func TestParseVarDeclAndIf(t *testing.T) {
	src := `let c = 2
if c == 1
  say "A"
elseif c == 2
  say "B"
else
  say "C"
endif
`
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)

	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "c", decl.Name)

	ifStmt, ok := prog.Stmts[1].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.ElseIfs, 1)
	require.True(t, ifStmt.HasElse)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseFunctionCall(t *testing.T) {
	src := "let r = f(3, 4)\n"
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	decl := prog.Stmts[0].(*ast.VarDecl)
	call, ok := decl.Value.(*ast.FuncCall)
	require.True(t, ok)
	require.Equal(t, "f", call.Name)
	require.Len(t, call.Args, 2)
}

func TestParseWhileAndCompoundAssign(t *testing.T) {
	src := `let i = 0
let s = 0
while i < 5
  s += i
  i += 1
endwhile
`
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 3)
	w, ok := prog.Stmts[2].(*ast.While)
	require.True(t, ok)
	require.Len(t, w.Body, 2)
}

func TestParseArrayLiteralAndAccess(t *testing.T) {
	src := `let a = [10, 20, 30, 40, 50]
let v = a[2]
`
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit, ok := decl.Value.(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, lit.Elems, 5)

	decl2 := prog.Stmts[1].(*ast.VarDecl)
	access, ok := decl2.Value.(*ast.ArrayAccess)
	require.True(t, ok)
	require.IsType(t, &ast.Ident{}, access.Array)
}

func TestParseMenuAndFilterMenu(t *testing.T) {
	src := `menu choice [ "one", "two" ]
filtermenu pick [ "a", flagA, "b", flagB ]
`
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	menu, ok := prog.Stmts[0].(*ast.Menu)
	require.True(t, ok)
	require.Equal(t, "choice", menu.Target)
	require.Len(t, menu.Options, 2)

	fm, ok := prog.Stmts[1].(*ast.FilterMenu)
	require.True(t, ok)
	require.Equal(t, "pick", fm.Target)
	require.Len(t, fm.Strings, 2)
	require.Len(t, fm.Flags, 2)
}

func TestParseFunctionDef(t *testing.T) {
	src := `function f(x, y)
  return x * 2 + y
endfunction
`
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	fn, ok := prog.Stmts[0].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, fn.Params)
	require.Len(t, fn.Body, 1)
}

func TestParseMissingEndifError(t *testing.T) {
	src := "if 1\n  say \"x\"\n"
	_, err := parser.Parse("test.uws", []byte(src))
	require.Error(t, err)
}
