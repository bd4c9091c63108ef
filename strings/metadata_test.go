package strings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	uwstrings "github.com/uwconv/toolchain/strings"
)

func TestMetadataRoundTrip(t *testing.T) {
	pak := samplePak(t)
	meta := uwstrings.ExportMetadata(pak)

	data, err := uwstrings.EncodeMetadata(meta)
	require.NoError(t, err)

	back, err := uwstrings.DecodeMetadata(data)
	require.NoError(t, err)
	require.Equal(t, len(pak.Tree), len(back.Tree()))

	for i, n := range pak.Tree {
		require.Equal(t, n, back.Tree()[i])
	}
}

func TestMetadataPadRestoresTrailingEmptyStrings(t *testing.T) {
	pak := samplePak(t)
	require.NoError(t, pak.Store.Set(0, 2, ""))
	meta := uwstrings.ExportMetadata(pak)

	trimmed := uwstrings.NewStore()
	require.NoError(t, trimmed.Set(0, 0, "hello|"))

	require.NoError(t, meta.Pad(trimmed))
	require.Len(t, trimmed.Strings(0), 3)
}
