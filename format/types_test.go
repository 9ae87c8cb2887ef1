package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTag_Reserved(t *testing.T) {
	require.True(t, TagSGapBit.Reserved())
	require.True(t, TagSGapGap.Reserved())
	require.True(t, TagGapBit.Reserved())
	require.False(t, TagBit.Reserved())
	require.False(t, TagEnd.Reserved())
}

func TestTag_Known(t *testing.T) {
	require.True(t, TagEnd.Known())
	require.True(t, TagBitDigest0.Known())
	require.False(t, Tag(35).Known())
	require.False(t, Tag(255).Known())
}

func TestTag_String_CoversTable(t *testing.T) {
	for tg := TagEnd; tg <= TagBitDigest0; tg++ {
		require.NotEqual(t, "unknown", tg.String(), "tag %d should have a name", tg)
	}

	require.Equal(t, "unknown", Tag(200).String())
}

func TestHighBitShortcut(t *testing.T) {
	runLen, ok := HighBitShortcut(0x85)
	require.True(t, ok)
	require.Equal(t, uint8(5), runLen)

	_, ok = HighBitShortcut(0x05)
	require.False(t, ok)

	runLen, ok = HighBitShortcut(0xFF)
	require.True(t, ok)
	require.Equal(t, uint8(0x7F), runLen)
}

func TestFlags_HasWithWithout(t *testing.T) {
	f := FlagDefault
	require.True(t, f.Has(FlagDefault))
	require.False(t, f.Has(FlagResize))

	f = f.With(FlagResize)
	require.True(t, f.Has(FlagResize))

	f = f.Without(FlagDefault)
	require.False(t, f.Has(FlagDefault))
	require.True(t, f.Has(FlagResize))
}

func TestCompressionType_String(t *testing.T) {
	require.Equal(t, "Zstd", CompressionZstd.String())
	require.Equal(t, "Unknown", CompressionType(99).String())
}
