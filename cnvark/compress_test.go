package cnvark_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/cnvark"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x01},
		bytes.Repeat([]byte{0x42}, 200),
		[]byte("the quick brown fox jumps over the lazy dog"),
		append(bytes.Repeat([]byte{0xAA}, 5), append([]byte("hi"), bytes.Repeat([]byte{0x00}, 10)...)...),
	}
	for _, x := range cases {
		compressed := cnvark.Compress(x)
		got, err := cnvark.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, x, got)
	}
}

func TestDecompressRunToken(t *testing.T) {
	// control byte 0x80 (run, count-3=0 -> 3 repeats) then value byte 0x09.
	got, err := cnvark.Decompress([]byte{0x80, 0x09})
	require.NoError(t, err)
	require.Equal(t, []byte{0x09, 0x09, 0x09}, got)
}

func TestDecompressLiteralBlock(t *testing.T) {
	// control byte 0x02 (literal, count-1=2 -> 3 bytes) then the 3 bytes.
	got, err := cnvark.Decompress([]byte{0x02, 'a', 'b', 'c'})
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestDecompressTruncatedRunErrors(t *testing.T) {
	_, err := cnvark.Decompress([]byte{0x80})
	require.Error(t, err)
}

func TestDecompressTruncatedLiteralErrors(t *testing.T) {
	_, err := cnvark.Decompress([]byte{0x05, 'a'})
	require.Error(t, err)
}

func TestIsCompressedHeuristic(t *testing.T) {
	plain := bytes.Repeat([]byte{0x01}, 256)
	require.False(t, cnvark.IsCompressed(plain))

	highBit := bytes.Repeat([]byte{0xFF}, 256)
	require.True(t, cnvark.IsCompressed(highBit))
}
