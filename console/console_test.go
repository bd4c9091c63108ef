package console_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/console"
	"github.com/uwconv/toolchain/lang/compiler"
	"github.com/uwconv/toolchain/lang/machine"
)

func newHost(t *testing.T, asm string) *console.Host {
	t.Helper()
	prog, err := compiler.Assemble(asm)
	require.NoError(t, err)
	vm := machine.New(machine.Config{Code: prog.Code, GlobalCells: 8, MemorySlots: 32})
	return console.NewHost(vm)
}

func TestGfxClearFillsWholeBuffer(t *testing.T) {
	h := newHost(t, `
		PUSHI 0
		PUSHI 3
		STO
		PUSHI 0
		PUSHI 1
		CALLI 100
		POP
		EXIT_OP
	`)
	_, err := h.RunFrame()
	require.NoError(t, err)
	for y := 0; y < console.Height; y++ {
		for x := 0; x < console.Width; x++ {
			require.EqualValues(t, 3, h.Display.At(x, y))
		}
	}
}

func TestGfxPixel(t *testing.T) {
	h := newHost(t, `
		PUSHI 0
		PUSHI 0
		STO
		PUSHI 0
		PUSHI 1
		CALLI 100
		POP

		PUSHI 0
		PUSHI 10
		STO
		PUSHI 1
		PUSHI 20
		STO
		PUSHI 2
		PUSHI 5
		STO
		PUSHI 0
		PUSHI 1
		PUSHI 2
		PUSHI 3
		CALLI 101
		POP
		EXIT_OP
	`)
	_, err := h.RunFrame()
	require.NoError(t, err)
	require.EqualValues(t, 5, h.Display.At(10, 20))
	require.EqualValues(t, 0, h.Display.At(0, 0))
}

func TestSoundPlayToneRecordsChannel(t *testing.T) {
	h := newHost(t, `
		PUSHI 0
		PUSHI 440
		STO
		PUSHI 1
		PUSHI 250
		STO
		PUSHI 2
		PUSHI 1
		STO
		PUSHI 0
		PUSHI 1
		PUSHI 2
		PUSHI 3
		CALLI 200
		POP
		EXIT_OP
	`)
	_, err := h.RunFrame()
	require.NoError(t, err)
	require.Equal(t, 440, h.Sound.Channels[1].FreqHz)
	require.Equal(t, 250, h.Sound.Channels[1].DurationMs)
}

func TestInputKeyPressedAndReleased(t *testing.T) {
	h := newHost(t, `EXIT_OP`)
	h.Keyboard.Press(console.KeySpace)

	pressed, ok := h.VM.Imports.Lookup(300)
	require.True(t, ok)
	r, err := pressed(h.VM, []uint16{uint16(console.KeySpace)})
	require.NoError(t, err)
	require.EqualValues(t, 1, r)

	h.Keyboard.EndFrame()
	h.Keyboard.Release(console.KeySpace)
	released, ok := h.VM.Imports.Lookup(301)
	require.True(t, ok)
	r, err = released(h.VM, []uint16{uint16(console.KeySpace)})
	require.NoError(t, err)
	require.EqualValues(t, 1, r)
}

func TestMathSinCosSqrt(t *testing.T) {
	h := newHost(t, `EXIT_OP`)
	sin, _ := h.VM.Imports.Lookup(501)
	r, err := sin(h.VM, []uint16{90})
	require.NoError(t, err)
	require.EqualValues(t, 100, r)

	cos, _ := h.VM.Imports.Lookup(502)
	r, err = cos(h.VM, []uint16{0})
	require.NoError(t, err)
	require.EqualValues(t, 100, r)

	sqrt, _ := h.VM.Imports.Lookup(503)
	r, err = sqrt(h.VM, []uint16{16})
	require.NoError(t, err)
	require.EqualValues(t, 4, r)
}

func TestRunFrameStopsOnStepBudget(t *testing.T) {
	h := newHost(t, `
	loop:
		JMP loop
	`)
	h.StepBudget = 100
	n, err := h.RunFrame()
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.Equal(t, machine.Running, h.VM.State)
}

func TestRunFrameStopsOnFlip(t *testing.T) {
	h := newHost(t, `
		PUSHI 0
		CALLI 109
		POP
		PUSHI 99
		SAVE_REG
		EXIT_OP
	`)
	h.StepBudget = 1000
	n, err := h.RunFrame()
	require.NoError(t, err)
	require.True(t, h.Display.FlipRequested)
	require.Less(t, n, 1000)
	require.Equal(t, machine.Running, h.VM.State)
}
