package resolver

// ValueType is the inferred semantic type of a symbol, used to pick the
// `@XY` substitution form (S for string, I for everything else) and to
// reject array-indexing of a scalar.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeInt
	TypeString
	TypeArray
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// SymbolKind classifies where a symbol lives.
type SymbolKind int

const (
	SymGlobal SymbolKind = iota
	SymParam
	SymLocal
	SymFunction
	SymBuiltin
)

// Symbol is one resolved name: a global, a function parameter or local, a
// user-defined function, or a built-in import.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Offset int // BP-relative for Param/Local, from the top-level BP for Global, import ID for Builtin
	Type   ValueType
	Size   int // cells reserved; 1 for scalars, element count for TypeArray
}

// FuncInfo is the resolved shape of one function definition: its parameter
// and local symbol table, label set, and BP-relative addressing scheme
// (parameters at negative offsets below BP, locals at offsets 0, 1, 2, ...
// from it, matching the calling convention's stack-frame layout).
type FuncInfo struct {
	Name      string
	Params    []string
	NumLocals int
	Symbols   map[string]*Symbol
	Labels    map[string]bool
}

// Table is the resolved program: the global symbol table, the
// per-function symbol tables, and the set of labels reachable from
// top-level (conversation-body) code.
type Table struct {
	Globals      map[string]*Symbol
	GlobalOrder  []string
	Funcs        map[string]*FuncInfo
	GlobalLabels map[string]bool
}

func newTable() *Table {
	return &Table{
		Globals:      make(map[string]*Symbol),
		Funcs:        make(map[string]*FuncInfo),
		GlobalLabels: make(map[string]bool),
	}
}

func newFuncInfo(name string, params []string) *FuncInfo {
	fi := &FuncInfo{
		Name:    name,
		Params:  params,
		Symbols: make(map[string]*Symbol, len(params)),
		Labels:  make(map[string]bool),
	}
	// Arguments are pushed left to right, so the last-declared parameter
	// ends up adjacent to the frame (closest to BP, offset -2, after the
	// PUSHI_EFF saved-BP skip) and the first-declared parameter is deepest.
	n := len(params)
	for i, p := range params {
		fi.Symbols[p] = &Symbol{Name: p, Kind: SymParam, Offset: -(n - i) - 1, Type: TypeUnknown, Size: 1}
	}
	return fi
}
