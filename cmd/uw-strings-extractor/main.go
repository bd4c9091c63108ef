// Command uw-strings-extractor unpacks a STRINGS.PAK archive into an
// editable text file and a JSON metadata sidecar.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	uwstrings "github.com/uwconv/toolchain/strings"
)

type Cmd struct {
	TextOut     string `flag:"t,text"`
	MetadataOut string `flag:"m,metadata"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one input archive is required")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UW_STRINGS_EXTRACTOR_"}
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
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	pak, err := uwstrings.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	meta := uwstrings.ExportMetadata(pak)
	metaJSON, err := uwstrings.EncodeMetadata(meta)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	textOut := c.TextOut
	if textOut == "" {
		textOut = siblingPath(input, "uw-strings.txt")
	}
	metaOut := c.MetadataOut
	if metaOut == "" {
		metaOut = siblingPath(input, "uw-strings-metadata.json")
	}

	if err := os.WriteFile(textOut, []byte(uwstrings.ExportText(pak.Store)), 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}
	if err := os.WriteFile(metaOut, metaJSON, 0o644); err != nil {
		return fmt.Errorf("io: %w", err)
	}

	fmt.Fprintf(stdio.Stdout, "wrote %s, %s (%d blocks)\n", textOut, metaOut, len(pak.Store.Blocks()))
	return nil
}

func siblingPath(input, name string) string {
	return filepath.Join(filepath.Dir(input), name)
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
