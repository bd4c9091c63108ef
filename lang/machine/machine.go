// Package machine implements the stack-based virtual machine that executes
// assembled conversation bytecode: a flat 65,536-cell memory, an explicit
// base/stack pointer pair, a result register fed by imported functions, and
// a cooperative Running/WaitingResponse/Finished state machine.
package machine

import (
	"strings"

	"github.com/uwconv/toolchain/lang/compiler"
)

// StringSource resolves a string-block-local ID to its text, for SAY_OP,
// STRCMP, and @SS/@PS substitution.
type StringSource interface {
	String(id uint16) (string, bool)
}

// Config configures a new VM instance.
type Config struct {
	Code        []uint16
	GlobalCells int // G: imported-global cell count (32 for the game, 0 for the console)
	MemorySlots int // per-conversation memory reserved above the globals
	Headroom    int // stack headroom between BP and the initial SP; floors to 512
	Imports     *ImportTable
	Strings     StringSource
}

const memSize = 65536

// VM is one running (or suspended, or finished) conversation.
type VM struct {
	Mem [memSize]uint16

	BP, SP, PC     int
	ResultRegister uint16
	CallLevel      int

	Code    []uint16
	Imports *ImportTable
	Strings StringSource

	State      State
	Transcript []string

	awaitingPush bool
	steps        int
}

// New builds a VM ready to run from the start of cfg.Code, with BP at
// cfg.GlobalCells+cfg.MemorySlots and SP offset from BP by at least 512
// cells of headroom.
func New(cfg Config) *VM {
	headroom := cfg.Headroom
	if headroom < 512 {
		headroom = 512
	}
	m := cfg.GlobalCells + cfg.MemorySlots
	vm := &VM{
		Code:    cfg.Code,
		Imports: cfg.Imports,
		Strings: cfg.Strings,
		BP:      m,
		SP:      m + headroom,
		State:   Running,
	}
	if vm.Imports == nil {
		vm.Imports = NewImportTable()
	}
	return vm
}

func wrap16(v int) uint16 { return uint16(uint32(v) % memSize) }

func (vm *VM) push(v uint16) error {
	if vm.SP >= memSize {
		return errOutOfCode(vm.PC)
	}
	vm.Mem[vm.SP] = v
	vm.SP++
	return nil
}

func (vm *VM) pop() (uint16, error) {
	if vm.SP <= 0 {
		return 0, errUnderflow(vm.PC)
	}
	vm.SP--
	return vm.Mem[vm.SP], nil
}

// Run steps the VM until it reaches WaitingResponse, Finished, or the step
// budget is exhausted (budget<=0 means unbounded). It returns the number of
// steps actually executed.
func (vm *VM) Run(budget int) (int, error) {
	n := 0
	for vm.State == Running {
		if budget > 0 && n >= budget {
			break
		}
		if err := vm.Step(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Resume supplies a host response (a menu choice index, a yes/no flag, or
// the result of a suspended CALLI) and returns the VM to Running.
func (vm *VM) Resume(reply uint16) error {
	vm.ResultRegister = reply
	if vm.awaitingPush {
		vm.awaitingPush = false
		if err := vm.push(vm.ResultRegister); err != nil {
			return err
		}
	}
	vm.State = Running
	return nil
}

// Step executes exactly one instruction.
func (vm *VM) Step() error {
	if vm.State != Running {
		return nil
	}
	if vm.PC < 0 || vm.PC >= len(vm.Code) {
		vm.State = Finished
		return errOutOfCode(vm.PC)
	}

	op := compiler.Opcode(vm.Code[vm.PC])
	pc := vm.PC

	operand := func() (uint16, error) {
		if pc+1 >= len(vm.Code) {
			return 0, errOutOfCode(pc)
		}
		return vm.Code[pc+1], nil
	}

	switch op {
	case compiler.NOP, compiler.START:
		vm.PC++

	case compiler.OPADD, compiler.OPMUL, compiler.OPSUB, compiler.OPDIV, compiler.OPMOD:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(arith(op, a, b)); err != nil {
			return err
		}
		vm.PC++

	case compiler.OPOR, compiler.OPAND:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		var r uint16
		if op == compiler.OPOR {
			r = a | b
		} else {
			r = a & b
		}
		if err := vm.push(r); err != nil {
			return err
		}
		vm.PC++

	case compiler.OPNOT:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(boolCell(v == 0)); err != nil {
			return err
		}
		vm.PC++

	case compiler.OPNEG:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(wrap16(-int(int16(v)))); err != nil {
			return err
		}
		vm.PC++

	case compiler.TSTGT, compiler.TSTGE, compiler.TSTLT, compiler.TSTLE, compiler.TSTEQ, compiler.TSTNE:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(compareCell(op, a, b)); err != nil {
			return err
		}
		vm.PC++

	case compiler.JMP:
		target, err := operand()
		if err != nil {
			return err
		}
		vm.PC = int(target)

	case compiler.BEQ, compiler.BNE:
		off, err := operand()
		if err != nil {
			return err
		}
		v, err := vm.pop()
		if err != nil {
			return err
		}
		next := pc + 2
		take := (op == compiler.BEQ && v == 0) || (op == compiler.BNE && v != 0)
		if take {
			vm.PC = next + int(int16(off))
		} else {
			vm.PC = next
		}

	case compiler.BRA:
		off, err := operand()
		if err != nil {
			return err
		}
		vm.PC = pc + 2 + int(int16(off))

	case compiler.CALL:
		target, err := operand()
		if err != nil {
			return err
		}
		if err := vm.push(wrap16(pc + 2)); err != nil {
			return err
		}
		vm.CallLevel++
		vm.PC = int(target)

	case compiler.CALLI:
		id, err := operand()
		if err != nil {
			return err
		}
		if err := vm.execCALLI(id); err != nil {
			return err
		}
		if vm.State != Running {
			// Suspended: PC still advances past the instruction so Resume
			// continues at the instruction after CALLI.
			vm.PC = pc + 2
			return nil
		}
		vm.PC = pc + 2

	case compiler.RET:
		ret, err := vm.pop()
		if err != nil {
			return err
		}
		vm.CallLevel--
		if vm.CallLevel < 0 {
			vm.State = Finished
			return nil
		}
		vm.PC = int(ret)

	case compiler.PUSHI:
		v, err := operand()
		if err != nil {
			return err
		}
		if err := vm.push(v); err != nil {
			return err
		}
		vm.PC = pc + 2

	case compiler.PUSHI_EFF:
		off, err := operand()
		if err != nil {
			return err
		}
		signed := int(int16(off))
		addr := vm.BP + signed
		if signed < 0 {
			addr--
		}
		if err := vm.push(wrap16(addr)); err != nil {
			return err
		}
		vm.PC = pc + 2

	case compiler.POP:
		if _, err := vm.pop(); err != nil {
			return err
		}
		vm.PC++

	case compiler.SWAP:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(b); err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		vm.PC++

	case compiler.PUSHBP:
		if err := vm.push(wrap16(vm.BP)); err != nil {
			return err
		}
		vm.PC++

	case compiler.POPBP:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.BP = int(v)
		vm.PC++

	case compiler.SPTOBP:
		vm.BP = vm.SP
		vm.PC++

	case compiler.BPTOSP:
		vm.SP = vm.BP
		vm.PC++

	case compiler.ADDSP:
		n, err := vm.pop()
		if err != nil {
			return err
		}
		for i := 0; i <= int(n); i++ {
			if err := vm.push(0); err != nil {
				return err
			}
		}
		vm.PC++

	case compiler.FETCHM:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(vm.Mem[addr]); err != nil {
			return err
		}
		vm.PC++

	case compiler.STO:
		value, err := vm.pop()
		if err != nil {
			return err
		}
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Mem[addr] = value
		vm.PC++

	case compiler.OFFSET:
		index, err := vm.pop()
		if err != nil {
			return err
		}
		base, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(wrap16(int(base) + int(index) - 1)); err != nil {
			return err
		}
		vm.PC++

	case compiler.SAVE_REG:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.ResultRegister = v
		vm.PC++

	case compiler.PUSH_REG:
		if err := vm.push(vm.ResultRegister); err != nil {
			return err
		}
		vm.PC++

	case compiler.STRCMP:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		as, _ := vm.stringFor(a)
		bs, _ := vm.stringFor(b)
		if err := vm.push(boolCell(strings.EqualFold(as, bs))); err != nil {
			return err
		}
		vm.PC++

	case compiler.EXIT_OP:
		vm.State = Finished

	case compiler.SAY_OP:
		id, err := vm.pop()
		if err != nil {
			return err
		}
		text, _ := vm.stringFor(id)
		vm.Transcript = append(vm.Transcript, vm.Substitute(text))
		vm.PC++

	case compiler.RESPOND_OP:
		vm.State = WaitingResponse
		vm.PC++

	default:
		return errInvalidOpcode(pc, uint16(op))
	}
	return nil
}

func (vm *VM) execCALLI(id uint16) error {
	n, err := vm.pop()
	if err != nil {
		return err
	}
	addrs := make([]uint16, n)
	for i := int(n) - 1; i >= 0; i-- {
		a, err := vm.pop()
		if err != nil {
			return err
		}
		addrs[i] = a
	}
	args := make([]uint16, n)
	for i, a := range addrs {
		args[i] = vm.Mem[a]
	}

	if IsSuspending(id) {
		vm.State = WaitingResponse
		vm.awaitingPush = true
		return nil
	}

	fn, ok := vm.Imports.Lookup(id)
	if !ok {
		return errUnknownImport(vm.PC, int(id))
	}
	result, err := fn(vm, args)
	if err != nil {
		return err
	}
	vm.ResultRegister = result
	return vm.push(vm.ResultRegister)
}

func arith(op compiler.Opcode, a, b uint16) uint16 {
	switch op {
	case compiler.OPADD:
		return wrap16(int(a) + int(b))
	case compiler.OPMUL:
		return wrap16(int(int16(a)) * int(int16(b)))
	case compiler.OPSUB:
		return wrap16(int(a) - int(b))
	case compiler.OPDIV:
		if b == 0 {
			return 0
		}
		return wrap16(int(int16(a)) / int(int16(b)))
	case compiler.OPMOD:
		if b == 0 {
			return 0
		}
		return wrap16(int(int16(a)) % int(int16(b)))
	}
	return 0
}

func compareCell(op compiler.Opcode, a, b uint16) uint16 {
	sa, sb := int16(a), int16(b)
	var r bool
	switch op {
	case compiler.TSTGT:
		r = sa > sb
	case compiler.TSTGE:
		r = sa >= sb
	case compiler.TSTLT:
		r = sa < sb
	case compiler.TSTLE:
		r = sa <= sb
	case compiler.TSTEQ:
		r = sa == sb
	case compiler.TSTNE:
		r = sa != sb
	}
	return boolCell(r)
}

func boolCell(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
