// Command uw-strings-analyzer prints a diagnostic report of a STRINGS.PAK
// archive's Huffman tree and block layout, with an optional hexdump window.
package main

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/uwconv/toolchain/huffman"
	uwstrings "github.com/uwconv/toolchain/strings"
)

type Cmd struct {
	Hexdump bool `flag:"hexdump"`
	Offset  int  `flag:"offset"`
	Length  int  `flag:"length"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input archive is required")
	}
	if c.Length <= 0 {
		c.Length = 128
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UW_STRINGS_ANALYZER_"}
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
	filename := c.args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	fmt.Fprintf(stdio.Stdout, "=== STRINGS.PAK Analysis: %s ===\n", filename)
	fmt.Fprintf(stdio.Stdout, "File size: %d bytes\n", len(data))

	pak, err := uwstrings.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	c.reportTree(stdio, pak.Tree)
	c.reportBlocks(stdio, pak.Store)

	if c.Hexdump {
		dumpHex(stdio, data, c.Offset, c.Length)
	}
	return nil
}

func (c *Cmd) reportTree(stdio mainer.Stdio, tree huffman.Tree) {
	fmt.Fprintf(stdio.Stdout, "\n=== Huffman Tree Analysis ===\n")
	leaves, internal := 0, 0
	for i := range tree {
		if tree.IsLeaf(i) {
			leaves++
		} else {
			internal++
		}
	}
	fmt.Fprintf(stdio.Stdout, "Total nodes: %d\n", len(tree))
	fmt.Fprintf(stdio.Stdout, "Leaf nodes: %d\n", leaves)
	fmt.Fprintf(stdio.Stdout, "Internal nodes: %d\n", internal)
	if len(tree) > 0 {
		fmt.Fprintf(stdio.Stdout, "Root node index: %d\n", tree.Root())
	}

	codes := tree.Codes()
	fmt.Fprintf(stdio.Stdout, "Huffman codes generated for %d symbols\n", len(codes))
}

func (c *Cmd) reportBlocks(stdio mainer.Stdio, store *uwstrings.Store) {
	fmt.Fprintf(stdio.Stdout, "\n=== Block Information ===\n")
	blocks := store.Blocks()
	total := 0
	for _, b := range blocks {
		n := len(store.Strings(b))
		total += n
		fmt.Fprintf(stdio.Stdout, "block %04d: %d strings\n", b, n)
		if n > 0 {
			sample, _ := store.Get(b, 0)
			fmt.Fprintf(stdio.Stdout, "  string 0: %q\n", sample)
		}
	}
	fmt.Fprintf(stdio.Stdout, "\nTotal blocks: %d\n", len(blocks))
	fmt.Fprintf(stdio.Stdout, "Total strings: %d\n", total)
}

func dumpHex(stdio mainer.Stdio, data []byte, start, length int) {
	fmt.Fprintf(stdio.Stdout, "\n=== Hexdump: Offset %d to %d ===\n", start, start+length-1)
	end := start + length
	if end > len(data) {
		end = len(data)
	}
	if start < 0 || start >= len(data) {
		return
	}
	for i := start; i < end; i += 16 {
		lineEnd := i + 16
		if lineEnd > end {
			lineEnd = end
		}
		line := data[i:lineEnd]
		var hexPart, asciiPart string
		for _, b := range line {
			hexPart += fmt.Sprintf("%02x ", b)
			if b >= 32 && b <= 126 {
				asciiPart += string(b)
			} else {
				asciiPart += "."
			}
		}
		fmt.Fprintf(stdio.Stdout, "%08x:  %-48s |%s|\n", i, hexPart, asciiPart)
	}
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
