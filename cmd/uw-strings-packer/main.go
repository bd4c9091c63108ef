// Command uw-strings-packer repacks a text file and its JSON metadata
// sidecar (the output of uw-strings-extractor) back into a STRINGS.PAK
// archive.
package main

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	uwstrings "github.com/uwconv/toolchain/strings"
)

type Cmd struct {
	Metadata string `flag:"m,metadata"`
	Output   string `flag:"o,output"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input text file is required")
	}
	if c.Metadata == "" {
		return fmt.Errorf("-m/--metadata is required")
	}
	if c.Output == "" {
		return fmt.Errorf("-o/--output is required")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UW_STRINGS_PACKER_"}
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
	text, err := os.ReadFile(c.args[0])
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}
	metaData, err := os.ReadFile(c.Metadata)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	store, err := uwstrings.ImportText(string(text))
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}
	meta, err := uwstrings.DecodeMetadata(metaData)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := meta.Pad(store); err != nil {
		return fmt.Errorf("pad: %w", err)
	}

	pak := &uwstrings.Pak{Tree: meta.Tree(), Store: store}
	data, err := pak.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}

	fmt.Fprintf(stdio.Stdout, "wrote %s (%d bytes, %d blocks)\n", c.Output, len(data), len(store.Blocks()))
	return nil
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
