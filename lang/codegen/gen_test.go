package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/console"
	"github.com/uwconv/toolchain/lang/codegen"
	"github.com/uwconv/toolchain/lang/compiler"
	"github.com/uwconv/toolchain/lang/machine"
	"github.com/uwconv/toolchain/lang/parser"
	"github.com/uwconv/toolchain/lang/resolver"
)

// compileAndRun parses, resolves, and generates src, assembles the result,
// and runs it to completion (or suspension) against a fresh VM.
func compileAndRun(t *testing.T, src string, strs machine.StringSource) (*machine.VM, *resolver.Table, *codegen.Result) {
	t.Helper()
	prog, err := parser.Parse("test.uws", []byte(src))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)

	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)

	vm := machine.New(machine.Config{
		Code:        asmProg.Code,
		GlobalCells: 0,
		MemorySlots: 64,
		Strings:     strs,
	})
	_, err = vm.Run(0)
	require.NoError(t, err)
	return vm, table, result
}

func global(t *testing.T, vm *machine.VM, table *resolver.Table, name string) uint16 {
	t.Helper()
	sym, ok := table.Globals[name]
	require.True(t, ok, "no global named %q", name)
	return vm.Mem[vm.BP+sym.Offset]
}

func TestGenArithmeticAndAssign(t *testing.T) {
	vm, table, _ := compileAndRun(t, `
let a = 2
let b = 3
let c = a + b * 2
c += 1
`, nil)
	require.Equal(t, machine.Finished, vm.State)
	require.EqualValues(t, 9, global(t, vm, table, "c"))
}

type fakeStrings map[uint16]string

func (f fakeStrings) String(id uint16) (string, bool) {
	s, ok := f[id]
	return s, ok
}

func stringsOf(result *codegen.Result) fakeStrings {
	strs := make(fakeStrings, len(result.Strings))
	for i, s := range result.Strings {
		strs[uint16(i)] = s
	}
	return strs
}

func TestGenIfElseIfElse(t *testing.T) {
	prog, err := parser.Parse("test.uws", []byte(`
let n = 2
if n == 1
  say "one"
elseif n == 2
  say "two"
else
  say "other"
endif
`))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)

	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)
	vm := machine.New(machine.Config{Code: asmProg.Code, GlobalCells: 0, MemorySlots: 64, Strings: stringsOf(result)})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, []string{"two"}, vm.Transcript)
}

func TestGenArrayDeclAccessAndMutation(t *testing.T) {
	vm, table, _ := compileAndRun(t, `
let a = [10, 20, 30]
let v = a[1]
a[2] = 99
`, nil)
	sym := table.Globals["a"]
	require.Equal(t, resolver.TypeArray, sym.Type)
	require.EqualValues(t, 20, global(t, vm, table, "v"))
	require.EqualValues(t, 99, vm.Mem[vm.BP+sym.Offset+2])
}

func TestGenFunctionCallRoundTrip(t *testing.T) {
	vm, table, _ := compileAndRun(t, `
function double(x)
  return x * 2 + 1
endfunction
let r = double(5)
`, nil)
	require.EqualValues(t, 11, global(t, vm, table, "r"))
}

func TestGenWhileLoop(t *testing.T) {
	vm, table, _ := compileAndRun(t, `
let i = 0
let s = 0
while i < 5
  s += i
  i += 1
endwhile
`, nil)
	require.EqualValues(t, 5, global(t, vm, table, "i"))
	require.EqualValues(t, 10, global(t, vm, table, "s"))
}

func TestGenStringSubstitution(t *testing.T) {
	_, _, result := compileAndRun(t, `
let hp = 75
say "HP: " + hp
`, nil)
	prog, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)
	vm := machine.New(machine.Config{Code: prog.Code, GlobalCells: 0, MemorySlots: 64, Strings: stringsOf(result)})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, []string{"HP: 75"}, vm.Transcript)
}

func TestGenAskSuspendsAndResumes(t *testing.T) {
	prog, err := parser.Parse("test.uws", []byte(`
let r = 0
ask r
`))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)
	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)

	vm := machine.New(machine.Config{Code: asmProg.Code, GlobalCells: 0, MemorySlots: 64})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.WaitingResponse, vm.State)

	require.NoError(t, vm.Resume(7))
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.Finished, vm.State)
	require.EqualValues(t, 7, global(t, vm, table, "r"))
}

func TestGenMenuBuildsOptionArray(t *testing.T) {
	prog, err := parser.Parse("test.uws", []byte(`
let choice = 0
menu choice [ "go north", "go south" ]
`))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)
	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)

	vm := machine.New(machine.Config{Code: asmProg.Code, GlobalCells: 0, MemorySlots: 64})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.WaitingResponse, vm.State)

	require.NoError(t, vm.Resume(1))
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.Finished, vm.State)
	require.EqualValues(t, 1, global(t, vm, table, "choice"))
}

func TestGenHostClearScreen(t *testing.T) {
	prog, err := parser.Parse("test.uws", []byte(`clear_screen(3)
exit
`))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)
	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)

	vm := machine.New(machine.Config{Code: asmProg.Code, GlobalCells: 0, MemorySlots: 64})
	host := console.NewHost(vm)
	_, err = host.RunFrame()
	require.NoError(t, err)
	require.Equal(t, machine.Finished, vm.State)

	for y := 0; y < console.Height; y++ {
		for x := 0; x < console.Width; x++ {
			require.EqualValuesf(t, 3, host.Display.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestGenHostSetPixel(t *testing.T) {
	prog, err := parser.Parse("test.uws", []byte(`clear_screen(0)
set_pixel(10, 20, 5)
exit
`))
	require.NoError(t, err)
	table, err := resolver.Resolve(prog)
	require.NoError(t, err)
	result, err := codegen.Generate(prog, table)
	require.NoError(t, err)
	asmProg, err := compiler.Assemble(result.Asm)
	require.NoError(t, err)

	vm := machine.New(machine.Config{Code: asmProg.Code, GlobalCells: 0, MemorySlots: 64})
	host := console.NewHost(vm)
	_, err = host.RunFrame()
	require.NoError(t, err)
	require.Equal(t, machine.Finished, vm.State)

	require.EqualValues(t, 5, host.Display.At(10, 20))
	require.EqualValues(t, 0, host.Display.At(0, 0))
}
