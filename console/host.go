// Package console implements the reference fantasy-console host: a
// framebuffer, a 4-channel tone generator, keyboard polling, and the
// per-frame step-budget pacing that drives a machine.VM through the
// imported-function IDs 100-999 the bytecode host interface reserves.
package console

import (
	"math"
	"os"
	"time"

	"github.com/uwconv/toolchain/lang/machine"
)

// DefaultStepBudget is the number of instructions a frame executes before
// it is forced to yield, preventing a runaway or buggy program from
// starving the host loop.
const DefaultStepBudget = 5000

// Host wires a machine.VM to a Display, ToneGenerator, and Keyboard via the
// console's reserved import range, and drives it one frame at a time.
type Host struct {
	VM       *machine.VM
	Display  *Display
	Sound    *ToneGenerator
	Keyboard *Keyboard

	// Headless is true when SDL_VIDEODRIVER or SDL_AUDIODRIVER is set to
	// "dummy", matching the reference host's env-based test toggle: frame
	// pacing still runs, but delay_ms does not block wall-clock time.
	Headless bool

	StepBudget int
}

// NewHost builds a Host around vm, registering the graphics/sound/input/
// math/system imports. Headless mode is detected from the environment the
// way the spec's runner does, so automated tests never block on delay_ms.
func NewHost(vm *machine.VM) *Host {
	h := &Host{
		VM:         vm,
		Display:    &Display{},
		Sound:      &ToneGenerator{},
		Keyboard:   NewKeyboard(),
		StepBudget: DefaultStepBudget,
		Headless:   os.Getenv("SDL_VIDEODRIVER") == "dummy" || os.Getenv("SDL_AUDIODRIVER") == "dummy",
	}
	h.register()
	return h
}

func (h *Host) register() {
	vm := h.VM
	vm.Imports.Register(machine.HostGraphicsStart+0, h.gfxClear)
	vm.Imports.Register(machine.HostGraphicsStart+1, h.gfxPixel)
	vm.Imports.Register(machine.HostGraphicsStart+2, h.gfxLine)
	vm.Imports.Register(machine.HostGraphicsStart+3, h.gfxRect)
	vm.Imports.Register(machine.HostGraphicsStart+4, h.gfxFillRect)
	vm.Imports.Register(machine.HostGraphicsStart+5, h.gfxCircle)
	vm.Imports.Register(machine.HostGraphicsStart+6, h.gfxSprite)
	vm.Imports.Register(machine.HostGraphicsStart+7, h.gfxPrint)
	vm.Imports.Register(machine.HostGraphicsStart+9, h.gfxFlip)

	vm.Imports.Register(machine.HostSoundStart+0, h.sndPlayTone)

	vm.Imports.Register(machine.HostInputStart+0, h.inputKeyPressed)
	vm.Imports.Register(machine.HostInputStart+1, h.inputKeyReleased)

	vm.Imports.Register(machine.HostMathStart+1, h.mathSin)
	vm.Imports.Register(machine.HostMathStart+2, h.mathCos)
	vm.Imports.Register(machine.HostMathStart+3, h.mathSqrt)

	vm.Imports.Register(machine.HostSystemStart, h.sysDelay)
}

func ok() (uint16, error)   { return 1, nil }
func fail() (uint16, error) { return 0, nil }

func (h *Host) gfxClear(vm *machine.VM, args []uint16) (uint16, error) {
	color := 0
	if len(args) >= 1 {
		color = int(args[0])
	}
	h.Display.Clear(uint8(color))
	return ok()
}

func (h *Host) gfxPixel(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 3 {
		return fail()
	}
	h.Display.Pixel(int(args[0]), int(args[1]), int(args[2]))
	return ok()
}

func (h *Host) gfxLine(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 5 {
		return fail()
	}
	h.Display.Line(int(args[0]), int(args[1]), int(args[2]), int(args[3]), int(args[4]))
	return ok()
}

func (h *Host) gfxRect(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 5 {
		return fail()
	}
	h.Display.Rect(int(args[0]), int(args[1]), int(args[2]), int(args[3]), int(args[4]))
	return ok()
}

func (h *Host) gfxFillRect(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 5 {
		return fail()
	}
	h.Display.FillRect(int(args[0]), int(args[1]), int(args[2]), int(args[3]), int(args[4]))
	return ok()
}

func (h *Host) gfxCircle(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 4 {
		return fail()
	}
	h.Display.Circle(int(args[0]), int(args[1]), int(args[2]), int(args[3]))
	return ok()
}

// gfxSprite reads {width, height, pixels...} starting at the address given
// in args[2], mirroring the reference host's sprite-data layout.
func (h *Host) gfxSprite(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 3 {
		return fail()
	}
	x, y, addr := int(args[0]), int(args[1]), int(args[2])
	if addr < 0 || addr >= len(vm.Mem) {
		return fail()
	}
	w, hgt := int(vm.Mem[addr]), int(vm.Mem[addr+1])
	if w <= 0 || hgt <= 0 || w > 64 || hgt > 64 {
		return fail()
	}
	n := 2 + w*hgt
	end := addr + n
	if end > len(vm.Mem) {
		end = len(vm.Mem)
	}
	h.Display.Sprite(x, y, vm.Mem[addr:end])
	return ok()
}

func (h *Host) gfxPrint(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 4 {
		return fail()
	}
	x, y, textID, color := int(args[0]), int(args[1]), args[2], int(args[3])
	text := ""
	if vm.Strings != nil {
		if s, found := vm.Strings.String(textID); found {
			text = s
		}
	}
	h.Display.Print(x, y, text, color)
	return ok()
}

func (h *Host) gfxFlip(vm *machine.VM, args []uint16) (uint16, error) {
	h.Display.Flip()
	return ok()
}

func (h *Host) sndPlayTone(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 3 {
		return fail()
	}
	h.Sound.Play(int(args[0]), int(args[1]), int(args[2]))
	return ok()
}

func (h *Host) inputKeyPressed(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	if h.Keyboard.IsPressed(int(args[0])) {
		return ok()
	}
	return fail()
}

func (h *Host) inputKeyReleased(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	if h.Keyboard.WasReleased(int(args[0])) {
		return ok()
	}
	return fail()
}

func (h *Host) mathSin(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	rad := float64(int16(args[0])) * math.Pi / 180
	return uint16(int16(math.Sin(rad) * 100)), nil
}

func (h *Host) mathCos(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	rad := float64(int16(args[0])) * math.Pi / 180
	return uint16(int16(math.Cos(rad) * 100)), nil
}

func (h *Host) mathSqrt(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	v := int16(args[0])
	if v < 0 {
		return 0, nil
	}
	return uint16(int(math.Sqrt(float64(v)))), nil
}

func (h *Host) sysDelay(vm *machine.VM, args []uint16) (uint16, error) {
	if len(args) < 1 {
		return fail()
	}
	if !h.Headless {
		time.Sleep(time.Duration(args[0]) * time.Millisecond)
	}
	return ok()
}

// RunFrame steps the VM up to StepBudget instructions, stopping early if a
// flip is requested (so the host presents promptly) or the VM leaves the
// Running state. It returns the number of steps executed.
func (h *Host) RunFrame() (int, error) {
	n := 0
	for h.VM.State == machine.Running && n < h.StepBudget {
		if err := h.VM.Step(); err != nil {
			return n, err
		}
		n++
		if h.Display.FlipRequested {
			break
		}
	}
	h.Keyboard.EndFrame()
	return n, nil
}

// Present clears the pending flip flag once a caller has drawn the frame.
func (h *Host) Present() {
	h.Display.FlipRequested = false
}
