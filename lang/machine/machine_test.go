package machine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/lang/compiler"
	"github.com/uwconv/toolchain/lang/machine"
)

type fakeStrings map[uint16]string

func (f fakeStrings) String(id uint16) (string, bool) {
	s, ok := f[id]
	return s, ok
}

func run(t *testing.T, asm string, strs fakeStrings) *machine.VM {
	t.Helper()
	prog, err := compiler.Assemble(asm)
	require.NoError(t, err)
	vm := machine.New(machine.Config{
		Code:        prog.Code,
		GlobalCells: 8,
		MemorySlots: 8,
		Strings:     strs,
	})
	_, err = vm.Run(0)
	require.NoError(t, err)
	return vm
}

func TestArithmetic(t *testing.T) {
	vm := run(t, `
		PUSHI 5
		PUSHI 3
		OPADD
		SAVE_REG
		EXIT_OP
	`, nil)
	require.Equal(t, machine.Finished, vm.State)
	require.EqualValues(t, 8, vm.ResultRegister)
}

func TestIfElseIfElse(t *testing.T) {
	// STO pops the value off the top, then the address below it: the
	// address must be pushed first.
	vm := run(t, `
		PUSHI_EFF 0
		PUSHI 2
		STO
		PUSHI_EFF 0
		FETCHM
		PUSHI 1
		TSTEQ
		BEQ elseif1
		PUSHI 100
		SAY_OP
		JMP end
	elseif1:
		PUSHI_EFF 0
		FETCHM
		PUSHI 2
		TSTEQ
		BEQ elseblock
		PUSHI 101
		SAY_OP
		JMP end
	elseblock:
		PUSHI 102
		SAY_OP
	end:
		EXIT_OP
	`, fakeStrings{100: "A", 101: "B", 102: "C"})
	require.Equal(t, []string{"B"}, vm.Transcript)
}

func TestArrayAccessAndMutation(t *testing.T) {
	// Array [10,20,30] lives at absolute cells 20,21,22; v at global 1.
	vm := run(t, `
		PUSHI 20
		PUSHI 10
		STO
		PUSHI 21
		PUSHI 20
		STO
		PUSHI 22
		PUSHI 30
		STO
		PUSHI 21
		PUSHI 25
		STO
		PUSHI_EFF 1
		PUSHI 21
		FETCHM
		STO
		EXIT_OP
	`, nil)
	require.EqualValues(t, 25, vm.Mem[21])
	require.EqualValues(t, 25, vm.Mem[vm.BP+1])
}

func TestFunctionCallWithParameters(t *testing.T) {
	// function f(x,y) return x*2+y endfunction ; r = f(3,4)
	// Return values flow through the result register: BPTOSP discards
	// whatever sits above the frame pointer, so the return expression is
	// saved to the register before the frame is torn down, and the caller
	// retrieves it with PUSH_REG after CALL returns.
	vm := run(t, `
		PUSHI 3
		PUSHI 4
		CALL f
		PUSHI_EFF 2
		PUSH_REG
		STO
		JMP done
	f:
		PUSHBP
		SPTOBP
		PUSHI 0
		ADDSP
		PUSHI_EFF -3
		FETCHM
		PUSHI 2
		OPMUL
		PUSHI_EFF -2
		FETCHM
		OPADD
		SAVE_REG
		BPTOSP
		POPBP
		RET
	done:
		EXIT_OP
	`, nil)
	require.EqualValues(t, 10, vm.Mem[vm.BP+2])
}

func TestWhileLoop(t *testing.T) {
	// let i=0; let s=0; while i<5 s+=i; i+=1 endwhile
	vm := run(t, `
		PUSHI_EFF 0
		PUSHI 0
		STO
		PUSHI_EFF 1
		PUSHI 0
		STO
	top:
		PUSHI_EFF 0
		FETCHM
		PUSHI 5
		TSTLT
		BEQ end
		PUSHI_EFF 1
		PUSHI_EFF 1
		FETCHM
		PUSHI_EFF 0
		FETCHM
		OPADD
		STO
		PUSHI_EFF 0
		PUSHI_EFF 0
		FETCHM
		PUSHI 1
		OPADD
		STO
		JMP top
	end:
		EXIT_OP
	`, nil)
	require.EqualValues(t, 10, vm.Mem[vm.BP+1])
	require.EqualValues(t, 5, vm.Mem[vm.BP])
}

func TestStringSubstitution(t *testing.T) {
	vm := run(t, `
		PUSHI_EFF 0
		PUSHI 75
		STO
		PUSHI 200
		SAY_OP
		EXIT_OP
	`, fakeStrings{200: "HP: @SI0"})
	require.Equal(t, []string{"HP: 75"}, vm.Transcript)
}

func TestCALLIRegisteredImport(t *testing.T) {
	imports := machine.NewImportTable()
	imports.Register(5, func(vm *machine.VM, args []uint16) (uint16, error) {
		return args[0] + args[1], nil
	})
	prog, err := compiler.Assemble(`
		PUSHI_EFF 0
		PUSHI 3
		STO
		PUSHI_EFF 1
		PUSHI 4
		STO
		PUSHI_EFF 0
		PUSHI_EFF 1
		PUSHI 2
		CALLI 5
		SAVE_REG
		EXIT_OP
	`)
	require.NoError(t, err)
	vm := machine.New(machine.Config{Code: prog.Code, GlobalCells: 8, MemorySlots: 8, Imports: imports})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.EqualValues(t, 7, vm.ResultRegister)
}

func TestSuspendOnBablMenuAndResume(t *testing.T) {
	prog, err := compiler.Assemble(`
		PUSHI 0
		CALLI 0
		SAVE_REG
		EXIT_OP
	`)
	require.NoError(t, err)
	vm := machine.New(machine.Config{Code: prog.Code, GlobalCells: 8, MemorySlots: 8})
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.WaitingResponse, vm.State)

	require.NoError(t, vm.Resume(2))
	_, err = vm.Run(0)
	require.NoError(t, err)
	require.Equal(t, machine.Finished, vm.State)
	require.EqualValues(t, 2, vm.ResultRegister)
}
