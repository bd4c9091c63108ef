// Package resolver binds the identifiers of a parsed UWScript program to
// offset-based storage locations -- globals to offsets 0, 1, 2, ... from the
// top-level BP, parameters and locals to BP-relative offsets within their enclosing
// function -- and reports undefined names, duplicate definitions, and
// array/scalar type mismatches ahead of code generation.
package resolver

import (
	"fmt"

	"github.com/uwconv/toolchain/lang/ast"
	"github.com/uwconv/toolchain/lang/token"
)

// Resolve walks prog and returns its resolved symbol table, or the first
// name or type error encountered.
func Resolve(prog *ast.Program) (*Table, error) {
	r := &resolver{table: newTable()}
	if err := r.declareTopLevel(prog.Stmts); err != nil {
		return nil, err
	}
	if err := r.resolveStmts(nil, prog.Stmts); err != nil {
		return nil, err
	}
	return r.table, nil
}

type resolver struct {
	table *Table
}

// declareTopLevel pre-registers every global variable, function, and
// top-level label so that forward references -- a function calling one
// defined later in the source -- resolve correctly.
func (r *resolver) declareTopLevel(stmts []ast.Stmt) error {
	nextGlobal := 0
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VarDecl:
			if _, dup := r.table.Globals[n.Name]; dup {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("global %q already declared", n.Name)}
			}
			size := literalSize(n.Value)
			sym := &Symbol{Name: n.Name, Kind: SymGlobal, Offset: nextGlobal, Type: literalType(n.Value), Size: size}
			r.table.Globals[n.Name] = sym
			r.table.GlobalOrder = append(r.table.GlobalOrder, n.Name)
			nextGlobal += size
		case *ast.FuncDef:
			if _, dup := r.table.Funcs[n.Name]; dup {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("function %q already declared", n.Name)}
			}
			if _, isBuiltin := BuiltinByName[n.Name]; isBuiltin {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("function %q shadows a built-in", n.Name)}
			}
			if _, isHostBuiltin := HostBuiltinByName[n.Name]; isHostBuiltin {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("function %q shadows a built-in", n.Name)}
			}
			fi := newFuncInfo(n.Name, n.Params)
			r.table.Funcs[n.Name] = fi
			if err := declareLocals(fi, n.Body); err != nil {
				return err
			}
			if err := collectLabels(fi.Labels, n.Body); err != nil {
				return err
			}
		case *ast.Label:
			if r.table.GlobalLabels[n.Name] {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("label %q already declared", n.Name)}
			}
			r.table.GlobalLabels[n.Name] = true
		}
	}
	return nil
}

// declareLocals assigns a non-negative BP-relative offset to every `let`
// declared anywhere in a function's body, including inside nested blocks:
// the conversation VM has no block scoping, only one flat frame per call.
func declareLocals(fi *FuncInfo, stmts []ast.Stmt) error {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VarDecl:
			if _, dup := fi.Symbols[n.Name]; dup {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("%q already declared in function %q", n.Name, fi.Name)}
			}
			size := literalSize(n.Value)
			fi.Symbols[n.Name] = &Symbol{Name: n.Name, Kind: SymLocal, Offset: fi.NumLocals, Type: literalType(n.Value), Size: size}
			fi.NumLocals += size
		case *ast.If:
			if err := declareLocals(fi, n.Then); err != nil {
				return err
			}
			for _, ei := range n.ElseIfs {
				if err := declareLocals(fi, ei.Body); err != nil {
					return err
				}
			}
			if err := declareLocals(fi, n.Else); err != nil {
				return err
			}
		case *ast.While:
			if err := declareLocals(fi, n.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectLabels(labels map[string]bool, stmts []ast.Stmt) error {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Label:
			if labels[n.Name] {
				return &NameError{Pos: n.Position, Msg: fmt.Sprintf("label %q already declared", n.Name)}
			}
			labels[n.Name] = true
		case *ast.If:
			if err := collectLabels(labels, n.Then); err != nil {
				return err
			}
			for _, ei := range n.ElseIfs {
				if err := collectLabels(labels, ei.Body); err != nil {
					return err
				}
			}
			if err := collectLabels(labels, n.Else); err != nil {
				return err
			}
		case *ast.While:
			if err := collectLabels(labels, n.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

// literalSize returns the number of cells a VarDecl's initializer occupies:
// the element count for an array literal, 1 for anything else.
func literalSize(e ast.Expr) int {
	if arr, ok := e.(*ast.ArrayLit); ok {
		if len(arr.Elems) == 0 {
			return 1
		}
		return len(arr.Elems)
	}
	return 1
}

func literalType(e ast.Expr) ValueType {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case token.STRING:
			return TypeString
		case token.INT, token.TRUE, token.FALSE:
			return TypeInt
		}
	case *ast.ArrayLit:
		return TypeArray
	}
	return TypeUnknown
}

// resolveStmts resolves every identifier reference in stmts. fn is nil
// while resolving top-level (conversation-body) code, and the active
// FuncInfo while resolving inside a function body.
func (r *resolver) resolveStmts(fn *FuncInfo, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := r.resolveStmt(fn, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveStmt(fn *FuncInfo, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDecl:
		return r.resolveExpr(fn, n.Value)
	case *ast.Assign:
		if err := r.resolveExpr(fn, n.Target); err != nil {
			return err
		}
		return r.resolveExpr(fn, n.Value)
	case *ast.If:
		if err := r.resolveExpr(fn, n.Cond); err != nil {
			return err
		}
		if err := r.resolveStmts(fn, n.Then); err != nil {
			return err
		}
		for _, ei := range n.ElseIfs {
			if err := r.resolveExpr(fn, ei.Cond); err != nil {
				return err
			}
			if err := r.resolveStmts(fn, ei.Body); err != nil {
				return err
			}
		}
		return r.resolveStmts(fn, n.Else)
	case *ast.While:
		if err := r.resolveExpr(fn, n.Cond); err != nil {
			return err
		}
		return r.resolveStmts(fn, n.Body)
	case *ast.FuncDef:
		inner := r.table.Funcs[n.Name]
		return r.resolveStmts(inner, n.Body)
	case *ast.Return:
		if n.Value == nil {
			return nil
		}
		return r.resolveExpr(fn, n.Value)
	case *ast.Say:
		return r.resolveExpr(fn, n.Value)
	case *ast.Ask:
		return r.lookupVar(fn, n.Position, n.Target)
	case *ast.Menu:
		for _, opt := range n.Options {
			if err := r.resolveExpr(fn, opt); err != nil {
				return err
			}
		}
		if n.Target != "" {
			return r.lookupVar(fn, n.Position, n.Target)
		}
		return nil
	case *ast.FilterMenu:
		for _, x := range n.Strings {
			if err := r.resolveExpr(fn, x); err != nil {
				return err
			}
		}
		for _, x := range n.Flags {
			if err := r.resolveExpr(fn, x); err != nil {
				return err
			}
		}
		if n.Target != "" {
			return r.lookupVar(fn, n.Position, n.Target)
		}
		return nil
	case *ast.Goto:
		return r.lookupLabel(fn, n.Position, n.Label)
	case *ast.Label, *ast.Exit:
		return nil
	case *ast.ExprStmt:
		return r.resolveExpr(fn, n.X)
	default:
		return fmt.Errorf("resolver: unhandled statement %T", s)
	}
}

func (r *resolver) resolveExpr(fn *FuncInfo, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		return nil
	case *ast.Ident:
		return r.lookupVar(fn, n.Position, n.Name)
	case *ast.BinOp:
		if err := r.resolveExpr(fn, n.X); err != nil {
			return err
		}
		return r.resolveExpr(fn, n.Y)
	case *ast.UnOp:
		return r.resolveExpr(fn, n.X)
	case *ast.ArrayLit:
		for _, el := range n.Elems {
			if err := r.resolveExpr(fn, el); err != nil {
				return err
			}
		}
		return nil
	case *ast.ArrayAccess:
		if id, ok := n.Array.(*ast.Ident); ok {
			sym, err := r.symbolFor(fn, n.Position, id.Name)
			if err != nil {
				return err
			}
			if sym.Type != TypeUnknown && sym.Type != TypeArray {
				return &TypeError{Pos: n.Position, Msg: fmt.Sprintf("%q is a %s, not indexable", id.Name, sym.Type)}
			}
		} else if err := r.resolveExpr(fn, n.Array); err != nil {
			return err
		}
		return r.resolveExpr(fn, n.Index)
	case *ast.FuncCall:
		if _, ok := r.table.Funcs[n.Name]; !ok {
			if _, ok := BuiltinByName[n.Name]; !ok {
				if _, ok := HostBuiltinByName[n.Name]; !ok {
					return &NameError{Pos: n.Position, Msg: fmt.Sprintf("undefined function %q", n.Name)}
				}
			}
		}
		for _, a := range n.Args {
			if err := r.resolveExpr(fn, a); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("resolver: unhandled expression %T", e)
	}
}

func (r *resolver) symbolFor(fn *FuncInfo, pos token.Position, name string) (*Symbol, error) {
	if fn != nil {
		if sym, ok := fn.Symbols[name]; ok {
			return sym, nil
		}
	}
	if sym, ok := r.table.Globals[name]; ok {
		return sym, nil
	}
	return nil, &NameError{Pos: pos, Msg: fmt.Sprintf("undefined variable %q", name)}
}

func (r *resolver) lookupVar(fn *FuncInfo, pos token.Position, name string) error {
	_, err := r.symbolFor(fn, pos, name)
	return err
}

func (r *resolver) lookupLabel(fn *FuncInfo, pos token.Position, name string) error {
	if fn != nil && fn.Labels[name] {
		return nil
	}
	if r.table.GlobalLabels[name] {
		return nil
	}
	return &NameError{Pos: pos, Msg: fmt.Sprintf("undefined label %q", name)}
}
