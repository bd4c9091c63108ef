// Command uwrun assembles a program's assembly text and runs it against the
// reference fantasy-console host, driving the VM one frame at a time until
// it finishes, prompting on stdin for a reply whenever a suspending import
// requests a response.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mna/mainer"

	"github.com/uwconv/toolchain/console"
	"github.com/uwconv/toolchain/lang/compiler"
	"github.com/uwconv/toolchain/lang/machine"
	uwstrings "github.com/uwconv/toolchain/strings"
)

type Cmd struct {
	StringsFile string `flag:"strings"`
	Debug       bool   `flag:"debug"`
	FPS         int    `flag:"fps"`
	GlobalCells int    `flag:"globals"`
	Memory      int    `flag:"memory"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one program file is required")
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.GlobalCells <= 0 {
		c.GlobalCells = 64
	}
	if c.Memory <= 0 {
		c.Memory = 512
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvPrefix: "UWRUN_"}
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

// stringSource adapts a *uwstrings.Store to machine.StringSource, indexing
// a single fixed block the way a disassembled slot's string_block does.
type stringSource struct {
	store *uwstrings.Store
	block uint16
}

func (s *stringSource) String(id uint16) (string, bool) {
	if s.store == nil {
		return "", false
	}
	return s.store.Get(s.block, int(id))
}

func (c *Cmd) run(stdio mainer.Stdio) error {
	src, err := os.ReadFile(c.args[0])
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}
	prog, err := compiler.Assemble(string(src))
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	cfg := machine.Config{
		Code:        prog.Code,
		GlobalCells: c.GlobalCells,
		MemorySlots: c.Memory,
		Imports:     machine.NewConversationImports(),
	}
	if c.StringsFile != "" {
		text, err := os.ReadFile(c.StringsFile)
		if err != nil {
			return fmt.Errorf("io: %w", err)
		}
		store, err := uwstrings.ImportText(string(text))
		if err != nil {
			return fmt.Errorf("strings: %w", err)
		}
		blocks := store.Blocks()
		var block uint16
		if len(blocks) > 0 {
			block = blocks[0]
		}
		cfg.Strings = &stringSource{store: store, block: block}
	}

	vm := machine.New(cfg)
	host := console.NewHost(vm)

	reader := bufio.NewReader(os.Stdin)
	frameDelay := time.Second / time.Duration(c.FPS)

	for vm.State != machine.Finished {
		n, err := host.RunFrame()
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if c.Debug {
			fmt.Fprintf(stdio.Stdout, "frame: %d steps, state=%s\n", n, vm.State)
		}
		host.Present()

		if vm.State == machine.WaitingResponse {
			fmt.Fprint(stdio.Stdout, "> ")
			line, _ := reader.ReadString('\n')
			reply, _ := strconv.Atoi(strings.TrimSpace(line))
			if err := vm.Resume(uint16(reply)); err != nil {
				return fmt.Errorf("resume: %w", err)
			}
			continue
		}
		if !host.Headless {
			time.Sleep(frameDelay)
		}
	}

	fmt.Fprintln(stdio.Stdout, "program finished")
	return nil
}

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
