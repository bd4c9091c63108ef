package strings

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/uwconv/toolchain/huffman"
)

// Error reports a malformed STRINGS archive.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "strings: " + e.Msg }

// Pak bundles a decoded strings store with the Huffman tree it was packed
// with, so the same tree shape can be reused when re-encoding.
type Pak struct {
	Tree  huffman.Tree
	Store *Store
}

// Decode parses a STRINGS archive per the binary layout: a node table, a
// block directory, and per-block string-offset tables over a Huffman
// bitstream.
func Decode(data []byte) (*Pak, error) {
	r := bytes.NewReader(data)

	var nodeCount uint16
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, &Error{Msg: "truncated node count"}
	}
	tree := make(huffman.Tree, nodeCount)
	for i := range tree {
		var n [4]byte
		if _, err := r.Read(n[:]); err != nil {
			return nil, &Error{Msg: "truncated node table"}
		}
		tree[i] = huffman.Node{Symbol: n[0], Parent: n[1], Left: n[2], Right: n[3]}
	}
	if err := huffman.Validate(tree); err != nil {
		return nil, err
	}

	var blockCount uint16
	if err := binary.Read(r, binary.LittleEndian, &blockCount); err != nil {
		return nil, &Error{Msg: "truncated block count"}
	}
	type dirEntry struct {
		id     uint16
		offset uint32
	}
	dir := make([]dirEntry, blockCount)
	for i := range dir {
		if err := binary.Read(r, binary.LittleEndian, &dir[i].id); err != nil {
			return nil, &Error{Msg: "truncated block directory"}
		}
		if err := binary.Read(r, binary.LittleEndian, &dir[i].offset); err != nil {
			return nil, &Error{Msg: "truncated block directory"}
		}
	}

	store := NewStore()
	for _, e := range dir {
		if e.offset == 0 {
			continue
		}
		if int(e.offset) >= len(data) {
			return nil, &Error{Msg: fmt.Sprintf("block %d: offset out of range", e.id)}
		}
		br := bytes.NewReader(data[e.offset:])
		var stringCount uint16
		if err := binary.Read(br, binary.LittleEndian, &stringCount); err != nil {
			return nil, &Error{Msg: fmt.Sprintf("block %d: truncated string count", e.id)}
		}
		offsets := make([]uint16, stringCount)
		for i := range offsets {
			if err := binary.Read(br, binary.LittleEndian, &offsets[i]); err != nil {
				return nil, &Error{Msg: fmt.Sprintf("block %d: truncated offset table", e.id)}
			}
		}
		stringDataStart := int(e.offset) + 2 + 2*int(stringCount)
		for i, off := range offsets {
			start := stringDataStart + int(off)
			if start > len(data) {
				return nil, &Error{Msg: fmt.Sprintf("block %d string %d: offset out of range", e.id, i)}
			}
			text, err := huffman.Decode(tree, data[start:])
			if err != nil {
				return nil, fmt.Errorf("block %d string %d: %w", e.id, i, err)
			}
			if err := store.Set(e.id, i, text); err != nil {
				return nil, err
			}
		}
	}
	return &Pak{Tree: tree, Store: store}, nil
}

// Encode serializes p back to the binary STRINGS layout, reusing p.Tree
// so the re-encoded archive decodes to logically identical text even
// though byte offsets are recomputed from scratch.
func (p *Pak) Encode() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(p.Tree))); err != nil {
		return nil, err
	}
	for _, n := range p.Tree {
		buf.WriteByte(n.Symbol)
		buf.WriteByte(n.Parent)
		buf.WriteByte(n.Left)
		buf.WriteByte(n.Right)
	}

	blocks := p.Store.Blocks()
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(blocks))); err != nil {
		return nil, err
	}
	dirPos := buf.Len()
	for range blocks {
		buf.Write(make([]byte, 6)) // placeholder: u16 id, u32 offset
	}

	offsets := make([]uint32, len(blocks))
	for bi, block := range blocks {
		offsets[bi] = uint32(buf.Len())
		strs := p.Store.Strings(block)

		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(strs))); err != nil {
			return nil, err
		}
		offTablePos := buf.Len()
		buf.Write(make([]byte, 2*len(strs)))

		dataStart := buf.Len()
		strOffsets := make([]uint16, len(strs))
		for si, s := range strs {
			strOffsets[si] = uint16(buf.Len() - dataStart)
			enc, err := huffman.Encode(p.Tree, s)
			if err != nil {
				return nil, fmt.Errorf("block %d string %d: %w", block, si, err)
			}
			buf.Write(enc)
		}

		out := buf.Bytes()
		for si, off := range strOffsets {
			binary.LittleEndian.PutUint16(out[offTablePos+2*si:], off)
		}
	}

	out := buf.Bytes()
	for bi, block := range blocks {
		pos := dirPos + 6*bi
		binary.LittleEndian.PutUint16(out[pos:], block)
		binary.LittleEndian.PutUint32(out[pos+2:], offsets[bi])
	}
	return out, nil
}
