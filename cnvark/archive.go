// Package cnvark implements the CNV.ARK conversation archive codec: the
// slot directory, per-slot header and import table, the optional RLE-ish
// compression scheme, and the disassembler/compiler round-trip that maps
// slot code to and from assembly text.
package cnvark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/uwconv/toolchain/lang/compiler"
)

// Error reports a malformed CNV.ARK archive.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "cnvark: " + e.Msg }

// Archive is a decoded CNV.ARK: raw slot bytes indexed by slot number, with
// a 0-length entry marking an empty slot.
type Archive struct {
	Slots      [][]byte
	compressed bool
}

// Decode parses a CNV.ARK image: the slot directory, transparently
// decompressing the image first if the compression heuristic fires.
func Decode(data []byte) (*Archive, error) {
	compressed := IsCompressed(data)
	raw := data
	if compressed {
		var err error
		raw, err = Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("cnvark: decompressing archive: %w", err)
		}
	}

	r := bytes.NewReader(raw)
	var numSlots uint16
	if err := binary.Read(r, binary.LittleEndian, &numSlots); err != nil {
		return nil, &Error{Msg: "truncated slot directory"}
	}
	offsets := make([]uint32, numSlots)
	if err := binary.Read(r, binary.LittleEndian, &offsets); err != nil {
		return nil, &Error{Msg: "truncated slot directory"}
	}

	slots := make([][]byte, numSlots)
	for i, off := range offsets {
		if off == 0 {
			continue
		}
		if int(off) >= len(raw) {
			return nil, &Error{Msg: fmt.Sprintf("slot %d: offset out of range", i)}
		}
		end := len(raw)
		for _, other := range offsets {
			if other > off && int(other) < end {
				end = int(other)
			}
		}
		slots[i] = raw[off:end]
	}
	return &Archive{Slots: slots, compressed: compressed}, nil
}

// Encode re-serializes the archive: a fresh directory followed by each
// non-empty slot's bytes, re-compressing only if the source archive was
// itself compressed.
func (a *Archive) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(a.Slots))); err != nil {
		return nil, err
	}
	dirPos := buf.Len()
	buf.Write(make([]byte, 4*len(a.Slots)))

	offsets := make([]uint32, len(a.Slots))
	for i, s := range a.Slots {
		if len(s) == 0 {
			continue
		}
		offsets[i] = uint32(buf.Len())
		buf.Write(s)
	}

	out := buf.Bytes()
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(out[dirPos+4*i:], off)
	}

	if a.compressed {
		return Compress(out), nil
	}
	return out, nil
}

// DecodeSlot decodes the slot at index i, or nil if it is empty.
func (a *Archive) DecodeSlot(i int) (*Slot, error) {
	if i < 0 || i >= len(a.Slots) || len(a.Slots[i]) == 0 {
		return nil, nil
	}
	return DecodeSlot(a.Slots[i])
}

// DisassembleSlot decodes slot i and renders its code vector as assembly
// text, or "" if the slot is empty.
func (a *Archive) DisassembleSlot(i int) (string, error) {
	s, err := a.DecodeSlot(i)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return compiler.Disassemble(s.Code)
}

// UpdateSlot installs a new compiled conversation into slot i: it assembles
// asmText, builds the slot bytes with the given metadata, and stores them as
// a.Slots[i], growing the slot list if i is past its end. Other slots'
// bytes are left bit-identical. The directory and any re-compression are
// produced later by Encode.
func (a *Archive) UpdateSlot(i int, asmText string, stringBlock, memorySlots uint16, imports []ImportRecord) error {
	if i < 0 {
		return &Error{Msg: fmt.Sprintf("slot index %d out of range", i)}
	}
	prog, err := compiler.Assemble(asmText)
	if err != nil {
		return fmt.Errorf("cnvark: assembling slot %d: %w", i, err)
	}
	slot := &Slot{
		StringBlock: stringBlock,
		MemorySlots: memorySlots,
		Imports:     imports,
		Code:        prog.Code,
	}
	data, err := slot.Encode()
	if err != nil {
		return err
	}
	for len(a.Slots) <= i {
		a.Slots = append(a.Slots, nil)
	}
	a.Slots[i] = data
	return nil
}

// WriteFileAtomic serializes a and writes it to path, first renaming any
// existing file at path to path+".bak".
func WriteFileAtomic(path string, a *Archive) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("cnvark: backing up %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cnvark: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cnvark: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

// LoadFile reads and decodes the archive at path.
func LoadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
