// Package compiler implements the two-pass text assembler/disassembler for
// the conversation bytecode, and the opcode table shared by the assembler
// and the virtual machine.
package compiler

import "fmt"

// Opcode is one conversation VM instruction.
type Opcode uint8

//nolint:revive
const (
	NOP Opcode = 0x00

	OPADD Opcode = 0x01
	OPMUL Opcode = 0x02
	OPSUB Opcode = 0x03
	OPDIV Opcode = 0x04
	OPMOD Opcode = 0x05

	OPOR  Opcode = 0x06
	OPAND Opcode = 0x07
	OPNOT Opcode = 0x08

	TSTGT Opcode = 0x09
	TSTGE Opcode = 0x0A
	TSTLT Opcode = 0x0B
	TSTLE Opcode = 0x0C
	TSTEQ Opcode = 0x0D
	TSTNE Opcode = 0x0E

	JMP  Opcode = 0x0F
	BEQ  Opcode = 0x10
	BNE  Opcode = 0x11
	BRA  Opcode = 0x12
	CALL Opcode = 0x13
	CALLI Opcode = 0x14
	RET  Opcode = 0x15

	PUSHI     Opcode = 0x16
	PUSHI_EFF Opcode = 0x17
	POP       Opcode = 0x18
	SWAP      Opcode = 0x19
	PUSHBP    Opcode = 0x1A
	POPBP     Opcode = 0x1B
	SPTOBP    Opcode = 0x1C
	BPTOSP    Opcode = 0x1D
	ADDSP     Opcode = 0x1E
	FETCHM    Opcode = 0x1F
	STO       Opcode = 0x20
	OFFSET    Opcode = 0x21
	START     Opcode = 0x22
	SAVE_REG  Opcode = 0x23
	PUSH_REG  Opcode = 0x24
	STRCMP    Opcode = 0x25
	EXIT_OP   Opcode = 0x26
	SAY_OP    Opcode = 0x27
	RESPOND_OP Opcode = 0x28
	OPNEG     Opcode = 0x29
)

var opcodeNames = map[Opcode]string{
	NOP:        "NOP",
	OPADD:      "OPADD",
	OPMUL:      "OPMUL",
	OPSUB:      "OPSUB",
	OPDIV:      "OPDIV",
	OPMOD:      "OPMOD",
	OPOR:       "OPOR",
	OPAND:      "OPAND",
	OPNOT:      "OPNOT",
	TSTGT:      "TSTGT",
	TSTGE:      "TSTGE",
	TSTLT:      "TSTLT",
	TSTLE:      "TSTLE",
	TSTEQ:      "TSTEQ",
	TSTNE:      "TSTNE",
	JMP:        "JMP",
	BEQ:        "BEQ",
	BNE:        "BNE",
	BRA:        "BRA",
	CALL:       "CALL",
	CALLI:      "CALLI",
	RET:        "RET",
	PUSHI:      "PUSHI",
	PUSHI_EFF:  "PUSHI_EFF",
	POP:        "POP",
	SWAP:       "SWAP",
	PUSHBP:     "PUSHBP",
	POPBP:      "POPBP",
	SPTOBP:     "SPTOBP",
	BPTOSP:     "BPTOSP",
	ADDSP:      "ADDSP",
	FETCHM:     "FETCHM",
	STO:        "STO",
	OFFSET:     "OFFSET",
	START:      "START",
	SAVE_REG:   "SAVE_REG",
	PUSH_REG:   "PUSH_REG",
	STRCMP:     "STRCMP",
	EXIT_OP:    "EXIT_OP",
	SAY_OP:     "SAY_OP",
	RESPOND_OP: "RESPOND_OP",
	OPNEG:      "OPNEG",
}

var reverseOpcodeNames = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("illegal opcode (0x%02X)", uint8(op))
}

// Lookup returns the Opcode named by s (case-insensitive via the caller) or
// false if s is not a known mnemonic.
func Lookup(s string) (Opcode, bool) {
	op, ok := reverseOpcodeNames[s]
	return op, ok
}

// HasOperand reports whether op is encoded with a 16-bit operand word.
func HasOperand(op Opcode) bool {
	switch op {
	case JMP, BEQ, BNE, BRA, CALL, CALLI, PUSHI, PUSHI_EFF:
		return true
	}
	return false
}

// IsBranch reports whether op's operand is a signed relative word offset
// from the instruction following it, rather than an absolute address.
func IsBranch(op Opcode) bool {
	return op == BEQ || op == BNE || op == BRA
}

// IsAbsoluteJump reports whether op's operand is an absolute word offset
// into the code vector.
func IsAbsoluteJump(op Opcode) bool {
	return op == JMP || op == CALL
}
