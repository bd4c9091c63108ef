package strings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	uwstrings "github.com/uwconv/toolchain/strings"
)

func TestStoreSetGrowsBlock(t *testing.T) {
	s := uwstrings.NewStore()
	require.NoError(t, s.Set(1, 2, "hello"))

	got, ok := s.Get(1, 2)
	require.True(t, ok)
	require.Equal(t, "hello", got)

	// indices 0 and 1 were implicitly created as empty strings.
	require.Equal(t, []string{"", "", "hello"}, s.Strings(1))
}

func TestStoreGetMissing(t *testing.T) {
	s := uwstrings.NewStore()
	_, ok := s.Get(5, 0)
	require.False(t, ok)
}

func TestStoreBlocksSorted(t *testing.T) {
	s := uwstrings.NewStore()
	require.NoError(t, s.Set(9, 0, "a"))
	require.NoError(t, s.Set(1, 0, "b"))
	require.NoError(t, s.Set(4, 0, "c"))

	require.Equal(t, []uint16{1, 4, 9}, s.Blocks())
}

func TestStoreSetNegativeIndexErrors(t *testing.T) {
	s := uwstrings.NewStore()
	require.Error(t, s.Set(0, -1, "x"))
}
