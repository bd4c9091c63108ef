package huffman

import "fmt"

// Error reports a malformed Huffman tree or a truncated bitstream.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "huffman: " + e.Msg }

// Decode walks t from the root for every bit of data, emitting the symbol
// at each leaf reached and restarting from the root, until the `|`
// terminator leaf is reached (consumed, not emitted) or the bitstream is
// exhausted, which is an error.
func Decode(t Tree, data []byte) (string, error) {
	if len(t) == 0 {
		return "", &Error{Msg: "empty tree"}
	}
	r := NewBitReader(data)
	var out []byte
	cur := t.Root()
	for {
		if t.IsLeaf(cur) {
			sym := t[cur].Symbol
			if sym == '|' {
				return string(out), nil
			}
			out = append(out, sym)
			cur = t.Root()
		}
		bit, ok := r.ReadBit()
		if !ok {
			return "", &Error{Msg: "truncated bitstream before terminator"}
		}
		if bit {
			cur = int(t[cur].Right)
		} else {
			cur = int(t[cur].Left)
		}
		if cur == noChild {
			return "", &Error{Msg: "invalid node reference while decoding"}
		}
	}
}

// Encode packs s into a Huffman bitstream using t's codes, appending the
// `|` terminator if s does not already end with one. A character with no
// code in t falls back to the space character's code (the original
// packer's documented behaviour); if space itself has no code, the
// character is silently dropped.
func Encode(t Tree, s string) ([]byte, error) {
	codes := t.Codes()
	if len(codes) == 0 {
		return nil, &Error{Msg: "empty tree"}
	}
	if len(s) == 0 || s[len(s)-1] != '|' {
		s += "|"
	}

	w := NewBitWriter()
	for i := 0; i < len(s); i++ {
		c := s[i]
		code, ok := codes[c]
		if !ok {
			code, ok = codes[' ']
			if !ok {
				continue
			}
		}
		w.WriteBits(code.Bits)
	}
	return w.Bytes(), nil
}

// Validate reports a structural error in t: a node's Left/Right pointing
// outside the array. Parent links and the shape of the root are not
// checked.
func Validate(t Tree) error {
	for i, n := range t {
		for _, child := range []uint8{n.Left, n.Right} {
			if child != noChild && int(child) >= len(t) {
				return &Error{Msg: fmt.Sprintf("node %d: child index %d out of range", i, child)}
			}
		}
	}
	return nil
}
