// Command uwscript-compiler compiles a UWScript source file to assembly
// text and a companion strings text file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/uwconv/toolchain/lang/codegen"
	"github.com/uwconv/toolchain/lang/parser"
	"github.com/uwconv/toolchain/lang/resolver"
)

// Cmd is the uwscript-compiler command line: a single input file, optional
// output paths, a block ID for the companion strings file, and a verbose
// flag that echoes the generated assembly to stdout.
type Cmd struct {
	Output     string `flag:"o,output"`
	StringsOut string `flag:"s,strings"`
	BlockID    int    `flag:"b,block"`
	Verbose    bool   `flag:"v,verbose"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input file is required")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UWSCRIPT_COMPILER_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "Error: invalid arguments: %s\n", err)
		return mainer.InvalidArgs
	}
	if err := c.run(stdio); err != nil {
		fmt.Fprintf(stdio.Stderr, "Error: %s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) run(stdio mainer.Stdio) error {
	input := c.args[0]
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	prog, err := parser.Parse(input, src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	table, err := resolver.Resolve(prog)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	result, err := codegen.Generate(prog, table)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}

	asmOut := c.Output
	if asmOut == "" {
		asmOut = replaceExt(input, ".asm")
	}
	if err := os.WriteFile(asmOut, []byte(result.Asm), 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}

	stringsOut := c.StringsOut
	if stringsOut == "" {
		stringsOut = replaceExt(input, "_strings.txt")
	}
	if err := os.WriteFile(stringsOut, []byte(formatStrings(c.BlockID, result.Strings)), 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}

	if c.Verbose {
		fmt.Fprintf(stdio.Stdout, "%s\n", result.Asm)
		fmt.Fprintf(stdio.Stdout, "wrote %s, %s (%d strings)\n", asmOut, stringsOut, len(result.Strings))
	}
	return nil
}

func formatStrings(block int, strs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "block: %04d; %d strings.\n", block, len(strs))
	for i, s := range strs {
		fmt.Fprintf(&b, "%d: %s\n", i, s)
	}
	return b.String()
}

func replaceExt(path, newExt string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + newExt
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
