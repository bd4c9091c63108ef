// Command uw-cnv-extractor unpacks a CNV.ARK archive into one disassembly
// file and one metadata file per non-empty conversation slot.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/uwconv/toolchain/cnvark"
)

type Cmd struct {
	OutDir string `flag:"o,outdir"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input archive is required")
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UW_CNV_EXTRACTOR_"}
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

type slotMeta struct {
	StringBlock uint16                 `json:"string_block"`
	MemorySlots uint16                 `json:"memory_slots"`
	Imports     []cnvark.ImportRecord  `json:"imports"`
	CodeWords   int                    `json:"code_words"`
}

func (c *Cmd) run(stdio mainer.Stdio) error {
	archive, err := cnvark.LoadFile(c.args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("io: %w", err)
	}

	extracted := 0
	for i := range archive.Slots {
		slot, err := archive.DecodeSlot(i)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if slot == nil {
			continue
		}
		asm, err := archive.DisassembleSlot(i)
		if err != nil {
			return fmt.Errorf("slot %d: disassemble: %w", i, err)
		}

		binOut := filepath.Join(c.OutDir, fmt.Sprintf("slot_%04d.asm", i))
		if err := os.WriteFile(binOut, []byte(asm), 0o644); err != nil {
			return fmt.Errorf("io: %w", err)
		}

		meta := slotMeta{
			StringBlock: slot.StringBlock,
			MemorySlots: slot.MemorySlots,
			Imports:     slot.Imports,
			CodeWords:   len(slot.Code),
		}
		metaJSON, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		metaOut := filepath.Join(c.OutDir, fmt.Sprintf("slot_%04d.json", i))
		if err := os.WriteFile(metaOut, metaJSON, 0o644); err != nil {
			return fmt.Errorf("io: %w", err)
		}
		extracted++
	}

	fmt.Fprintf(stdio.Stdout, "extracted %d conversation slots to %s\n", extracted, c.OutDir)
	return nil
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
