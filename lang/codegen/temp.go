package codegen

// tempBase is the first cell of the scratch region: high enough to never
// collide with a real conversation's global or local variables.
const tempBase = 1000

// tempAllocator hands out scratch memory cells for built-in argument
// marshalling and temp arrays (menu/filtermenu option lists). Single cells
// are allocated lowest-free-first from a freelist, and released back to it
// at the end of the expression or statement that needed them; blocks from
// AllocBlock are never returned to the freelist.
type tempAllocator struct {
	next uint16
	free []uint16
}

func newTempAllocator() *tempAllocator {
	return &tempAllocator{next: tempBase}
}

// Alloc reserves one scratch cell.
func (a *tempAllocator) Alloc() uint16 {
	if len(a.free) > 0 {
		v := a.free[0]
		a.free = a.free[1:]
		return v
	}
	v := a.next
	a.next++
	return v
}

// AllocBlock reserves n contiguous scratch cells (used for temp arrays),
// always carved from the never-allocated region since the freelist cannot
// be relied on to hold a contiguous run.
func (a *tempAllocator) AllocBlock(n int) uint16 {
	base := a.next
	a.next += uint16(n)
	return base
}

// Free returns addr to the freelist, keeping it sorted so Alloc can always
// take the lowest free cell.
func (a *tempAllocator) Free(addr uint16) {
	i := 0
	for i < len(a.free) && a.free[i] < addr {
		i++
	}
	a.free = append(a.free, 0)
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = addr
}
