package cnvark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// headerMarker is the fixed first word of every slot header.
const headerMarker = 0x0828

// Import value/return types as encoded in an import record.
const (
	ImportTypeFunction uint16 = 0x0111
	ImportTypeVariable uint16 = 0x010F

	ReturnTypeVoid   uint16 = 0x0000
	ReturnTypeInt    uint16 = 0x0129
	ReturnTypeString uint16 = 0x012B
)

// ImportRecord binds a name used by a slot's code to either an imported
// function ID or a variable address, along with its declared type.
type ImportRecord struct {
	Name       string
	IDOrAddr   uint16
	Type       uint16
	ReturnType uint16
}

// Slot is one decoded conversation: its header fields, import table, and
// code vector.
type Slot struct {
	StringBlock uint16
	MemorySlots uint16
	Imports     []ImportRecord
	Code        []uint16
}

// DecodeSlot parses one slot's bytes: the 8-word header, the import
// records, then the code vector.
func DecodeSlot(data []byte) (*Slot, error) {
	r := bytes.NewReader(data)

	var header [8]uint16
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &Error{Msg: "truncated slot header"}
	}
	if header[0] != headerMarker {
		return nil, &Error{Msg: fmt.Sprintf("bad slot marker 0x%04X", header[0])}
	}
	codeWords := int(header[2])
	stringBlock := header[5]
	memorySlots := header[6]
	importCount := header[7]

	imports := make([]ImportRecord, importCount)
	for i := range imports {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, &Error{Msg: "truncated import name length"}
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, &Error{Msg: "truncated import name"}
		}
		var rest [4]uint16
		if err := binary.Read(r, binary.LittleEndian, &rest); err != nil {
			return nil, &Error{Msg: "truncated import record"}
		}
		// rest = [id_or_addr, 1 (reserved), type, return_type]
		imports[i] = ImportRecord{
			Name:       string(name),
			IDOrAddr:   rest[0],
			Type:       rest[2],
			ReturnType: rest[3],
		}
	}

	code := make([]uint16, codeWords)
	if err := binary.Read(r, binary.LittleEndian, &code); err != nil {
		return nil, &Error{Msg: "truncated code section"}
	}

	return &Slot{
		StringBlock: stringBlock,
		MemorySlots: memorySlots,
		Imports:     imports,
		Code:        code,
	}, nil
}

// Encode serializes s back to its binary slot layout.
func (s *Slot) Encode() ([]byte, error) {
	var buf bytes.Buffer

	header := [8]uint16{
		headerMarker,
		0,
		uint16(len(s.Code)),
		0,
		0,
		s.StringBlock,
		s.MemorySlots,
		uint16(len(s.Imports)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	for _, im := range s.Imports {
		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(im.Name))); err != nil {
			return nil, err
		}
		buf.WriteString(im.Name)
		rest := [4]uint16{im.IDOrAddr, 1, im.Type, im.ReturnType}
		if err := binary.Write(&buf, binary.LittleEndian, rest); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, s.Code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
