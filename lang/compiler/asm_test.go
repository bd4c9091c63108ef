package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/lang/compiler"
)

func TestAssembleSimple(t *testing.T) {
	p, err := compiler.Assemble(`
		PUSHI 5
		PUSHI 3
		OPADD
		EXIT_OP
	`)
	require.NoError(t, err)
	require.Equal(t, []uint16{
		uint16(compiler.PUSHI), 5,
		uint16(compiler.PUSHI), 3,
		uint16(compiler.OPADD),
		uint16(compiler.EXIT_OP),
	}, p.Code)
}

func TestAssembleLabelsAbsoluteAndRelative(t *testing.T) {
	p, err := compiler.Assemble(`
	start:
		PUSHI 0
		BEQ done
		JMP start
	done:
		EXIT_OP
	`)
	require.NoError(t, err)
	// PUSHI 0 @0,1 ; BEQ done @2,3 ; JMP start @4,5 ; EXIT_OP @6
	require.Equal(t, []uint16{
		uint16(compiler.PUSHI), 0,
		uint16(compiler.BEQ), uint16(int16(6 - 4)),
		uint16(compiler.JMP), 0,
		uint16(compiler.EXIT_OP),
	}, p.Code)
}

func TestAssembleErrors(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string
	}{
		{"unknown opcode", "FROB 1", "unknown opcode"},
		{"missing operand", "PUSHI", "requires an operand"},
		{"extra operand", "NOP 1", "takes no operand"},
		{"undefined label", "JMP nowhere", "undefined label"},
		{"duplicate label", "a:\na:\nEXIT_OP", "duplicate label"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := compiler.Assemble(c.in)
			require.Error(t, err)
			require.Contains(t, err.Error(), c.err)
		})
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	src := `
	start:
		PUSHI 1
		TSTGT
		BNE start
		CALL start
		RET
	`
	p, err := compiler.Assemble(src)
	require.NoError(t, err)

	text, err := compiler.Disassemble(p.Code)
	require.NoError(t, err)

	p2, err := compiler.Assemble(text)
	require.NoError(t, err)
	require.Equal(t, p.Code, p2.Code)
}

func TestAssembleHexOperand(t *testing.T) {
	p, err := compiler.Assemble("PUSHI 0x10")
	require.NoError(t, err)
	require.Equal(t, []uint16{uint16(compiler.PUSHI), 16}, p.Code)
}
