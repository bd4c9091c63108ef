package codegen

import (
	"fmt"
	"strings"
)

// writeHeader emits a machine-parseable comment block documenting the
// string pool, global variable offsets, and function parameter/local
// layouts, ahead of the assembly body it precedes. Nothing here affects
// assembly: every line is a `;` comment, present purely so a human (or a
// disassembler reconstructing source-level names) can read the layout
// back out of the emitted text.
func (g *generator) writeHeader(out *strings.Builder, funcOrder []string) {
	out.WriteString("; strings:\n")
	for i, s := range g.strPool {
		fmt.Fprintf(out, ";   %d: %q\n", i, s)
	}

	out.WriteString("; globals:\n")
	for _, name := range g.table.GlobalOrder {
		sym := g.table.Globals[name]
		fmt.Fprintf(out, ";   %s: offset=%d size=%d type=%s\n", sym.Name, sym.Offset, sym.Size, sym.Type)
	}

	out.WriteString("; functions:\n")
	for _, name := range funcOrder {
		fi := g.table.Funcs[name]
		fmt.Fprintf(out, ";   %s(%s): locals=%d\n", fi.Name, strings.Join(fi.Params, ", "), fi.NumLocals)
	}
}
