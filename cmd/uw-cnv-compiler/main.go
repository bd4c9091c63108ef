// Command uw-cnv-compiler assembles a conversation's assembly text into a
// slot binary, optionally installing it directly into a CNV.ARK archive.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/uwconv/toolchain/cnvark"
	"github.com/uwconv/toolchain/lang/compiler"
)

type Cmd struct {
	Output      string `flag:"o,output"`
	Update      string `flag:"u,update"`
	Slot        int    `flag:"slot"`
	Metadata    string `flag:"m,metadata"`
	StringBlock int    `flag:"string-block"`
	MemorySlots int    `flag:"memory-slots"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input assembly file is required")
	}
	if c.Update != "" && c.Slot < 0 {
		return fmt.Errorf("--slot must be given and non-negative when updating an archive")
	}
	return nil
}

type slotMeta struct {
	StringBlock uint16                `json:"string_block"`
	MemorySlots uint16                `json:"memory_slots"`
	Imports     []cnvark.ImportRecord `json:"imports"`
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UW_CNV_COMPILER_"}
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
	asmText, err := os.ReadFile(c.args[0])
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	meta := slotMeta{
		StringBlock: uint16(c.StringBlock),
		MemorySlots: uint16(c.MemorySlots),
	}
	if c.Metadata != "" {
		data, err := os.ReadFile(c.Metadata)
		if err != nil {
			return fmt.Errorf("io: %w", err)
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
	}

	if c.Update != "" {
		archive, err := cnvark.LoadFile(c.Update)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		if err := archive.UpdateSlot(c.Slot, string(asmText), meta.StringBlock, meta.MemorySlots, meta.Imports); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		if err := cnvark.WriteFileAtomic(c.Update, archive); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		fmt.Fprintf(stdio.Stdout, "installed slot %d into %s\n", c.Slot, c.Update)
		return nil
	}

	if c.Output == "" {
		return fmt.Errorf("-o/--output is required when not updating an archive")
	}
	slot := &cnvark.Slot{
		StringBlock: meta.StringBlock,
		MemorySlots: meta.MemorySlots,
		Imports:     meta.Imports,
	}
	prog, err := compiler.Assemble(string(asmText))
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	slot.Code = prog.Code
	data, err := slot.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}
	fmt.Fprintf(stdio.Stdout, "wrote %s (%d bytes)\n", c.Output, len(data))
	return nil
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
