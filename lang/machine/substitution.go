package machine

import (
	"fmt"
	"regexp"
	"strconv"
)

// substRe matches the runtime interpolation directives `@XY<num>`: X
// selects the addressing mode (Global/Stack/Pointer), Y selects the
// rendering (Integer/String), num is a signed decimal offset.
var substRe = regexp.MustCompile(`@([GSP])([SI])(-?\d+)`)

// Substitute expands every `@XY<num>` directive in s against the VM's
// current memory and base pointer. Malformed directives (caught by the
// regex not matching) are left verbatim. String substitution does not
// recurse: the looked-up string is emitted as-is even if it itself
// contains `@` directives.
func (vm *VM) Substitute(s string) string {
	return substRe.ReplaceAllStringFunc(s, func(m string) string {
		groups := substRe.FindStringSubmatch(m)
		mode, kind, numStr := groups[1], groups[2], groups[3]
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return m
		}

		var addr int
		switch mode {
		case "G":
			addr = num
		case "S", "P":
			addr = vm.BP + num
		}
		addr = wrapAddr(addr)

		var cell uint16
		switch mode {
		case "G", "S":
			cell = vm.Mem[addr]
		case "P":
			cell = vm.Mem[wrapAddr(int(vm.Mem[addr]))]
		}

		switch kind {
		case "I":
			return strconv.FormatInt(int64(int16(cell)), 10)
		case "S":
			if str, ok := vm.stringFor(cell); ok {
				return str
			}
			return fmt.Sprintf("<str#%d>", cell)
		default:
			return m
		}
	})
}

func wrapAddr(a int) int {
	const size = 65536
	a %= size
	if a < 0 {
		a += size
	}
	return a
}

func (vm *VM) stringFor(id uint16) (string, bool) {
	if vm.Strings == nil {
		return "", false
	}
	return vm.Strings.String(id)
}
