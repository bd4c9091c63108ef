package strings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	uwstrings "github.com/uwconv/toolchain/strings"
)

func TestExportImportTextRoundTrip(t *testing.T) {
	store := uwstrings.NewStore()
	require.NoError(t, store.Set(1, 0, "Hello, traveler."))
	require.NoError(t, store.Set(1, 1, "Line one\nLine two"))
	require.NoError(t, store.Set(7, 0, "Another block"))

	text := uwstrings.ExportText(store)
	require.Contains(t, text, "STRINGS.PAK: 2 string blocks.")
	require.Contains(t, text, "block: 0001; 2 strings.")
	require.Contains(t, text, `1: Line one\nLine two`)

	got, err := uwstrings.ImportText(text)
	require.NoError(t, err)
	require.Equal(t, store.Strings(1), got.Strings(1))
	require.Equal(t, store.Strings(7), got.Strings(7))
}

func TestImportTextRejectsEntryBeforeBlockHeader(t *testing.T) {
	_, err := uwstrings.ImportText("0: stray entry\n")
	require.Error(t, err)
}

func TestEscapeUnescapeBackslash(t *testing.T) {
	store := uwstrings.NewStore()
	require.NoError(t, store.Set(0, 0, `back\slash`))

	text := uwstrings.ExportText(store)
	got, err := uwstrings.ImportText(text)
	require.NoError(t, err)
	require.Equal(t, `back\slash`, got.Strings(0)[0])
}
