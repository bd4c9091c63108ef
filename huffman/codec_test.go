package huffman_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/huffman"
)

// exampleTree builds the tree from the canonical worked example: leaves
// {a->01, b->10, |->11, space->00}.
func exampleTree() huffman.Tree {
	return huffman.Tree{
		{Symbol: ' ', Parent: 2, Left: 255, Right: 255},  // 0
		{Symbol: 'a', Parent: 2, Left: 255, Right: 255},  // 1
		{Symbol: 0, Parent: 6, Left: 0, Right: 1},         // 2
		{Symbol: 'b', Parent: 5, Left: 255, Right: 255},  // 3
		{Symbol: '|', Parent: 5, Left: 255, Right: 255},  // 4
		{Symbol: 0, Parent: 6, Left: 3, Right: 4},         // 5
		{Symbol: 0, Parent: 255, Left: 2, Right: 5},       // 6 (root)
	}
}

func TestEncodeMatchesWorkedExample(t *testing.T) {
	tree := exampleTree()
	data, err := huffman.Encode(tree, "a b|")
	require.NoError(t, err)
	require.Equal(t, []byte{0x4B}, data)
}

func TestDecodeRoundTrip(t *testing.T) {
	tree := exampleTree()
	data, err := huffman.Encode(tree, "a b")
	require.NoError(t, err)

	s, err := huffman.Decode(tree, data)
	require.NoError(t, err)
	require.Equal(t, "a b", s)
}

func TestDecodeTruncatedBitstreamErrors(t *testing.T) {
	tree := exampleTree()
	// Eight zero bits decode to four spaces (code 00) and then run out
	// before the terminator is ever reached.
	_, err := huffman.Decode(tree, []byte{0x00})
	require.Error(t, err)
}

func TestEncodeFallsBackToSpaceForUnknownChar(t *testing.T) {
	tree := exampleTree()
	data, err := huffman.Encode(tree, "ab\tb|")
	require.NoError(t, err)

	spaceCode, _ := tree.Codes()[' ']
	_ = spaceCode
	s, err := huffman.Decode(tree, data)
	require.NoError(t, err)
	require.Equal(t, "ab b", s) // tab falls back to the space code
}

func TestValidateCatchesBadChildIndex(t *testing.T) {
	bad := huffman.Tree{
		{Symbol: 'a', Parent: 1, Left: 255, Right: 255},
		{Symbol: 0, Parent: 255, Left: 0, Right: 9},
	}
	require.Error(t, huffman.Validate(bad))
}

func TestBitReaderWriterRoundTrip(t *testing.T) {
	w := huffman.NewBitWriter()
	bits := []bool{true, false, true, true, false, false, true, false, true}
	w.WriteBits(bits)
	data := w.Bytes()
	require.Len(t, data, 2)

	r := huffman.NewBitReader(data)
	for _, want := range bits {
		got, ok := r.ReadBit()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}
