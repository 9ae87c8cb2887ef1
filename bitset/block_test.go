package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopCount(t *testing.T) {
	words := make([]uint32, BlockWords)
	words[0] = 0b1011
	words[5] = 0xFFFFFFFF

	require.Equal(t, 3+32, PopCount(words))
}

func TestDigest0_EmptyAndSparse(t *testing.T) {
	words := make([]uint32, BlockWords)
	require.Zero(t, Digest0(words))

	words[0] = 1 // wave 0
	words[waveWords*3+1] = 1 // wave 3

	d := Digest0(words)
	require.Equal(t, uint64(1)<<0|uint64(1)<<3, d)
}

func TestIsAllZeroAndAllOne(t *testing.T) {
	words := make([]uint32, BlockWords)
	require.True(t, IsAllZero(words))
	require.False(t, IsAllOne(words))

	for i := range words {
		words[i] = 0xFFFFFFFF
	}
	require.True(t, IsAllOne(words))
	require.False(t, IsAllZero(words))
}

func TestSetBitGetBit(t *testing.T) {
	words := make([]uint32, BlockWords)
	SetBit(words, 0)
	SetBit(words, 65535)
	SetBit(words, 1000)

	require.True(t, GetBit(words, 0))
	require.True(t, GetBit(words, 65535))
	require.True(t, GetBit(words, 1000))
	require.False(t, GetBit(words, 1))
}

func TestBitGaps(t *testing.T) {
	words := make([]uint32, BlockWords)
	// 0/1 transitions: [0,9]=1 (set), 10..19=0, 20..: 0 -> one run of ones then zero -> 2 transitions (1->0 at 10, then stays 0)
	for p := 0; p < 10; p++ {
		SetBit(words, uint16(p))
	}
	require.Equal(t, 2, BitGaps(words)) // 0->1 at pos0, 1->0 at pos10
}

func TestToSortedIndices(t *testing.T) {
	words := make([]uint32, BlockWords)
	SetBit(words, 3)
	SetBit(words, 40)
	SetBit(words, 65000)

	got := ToSortedIndices(words, nil)
	require.Equal(t, []uint16{3, 40, 65000}, got)
}

func TestToSortedIndicesInv(t *testing.T) {
	words := make([]uint32, BlockWords)
	for i := range words {
		words[i] = 0xFFFFFFFF
	}
	SetBit(words, 100) // no-op, already set
	ClearWord(words, 0)

	got := ToSortedIndicesInv(words, nil)
	require.Equal(t, []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31}, got)
}

// ClearWord is a tiny test helper, not part of the package's public API.
func ClearWord(words []uint32, idx int) { words[idx] = 0 }

func TestGapBlock_RoundTrip(t *testing.T) {
	words := make([]uint32, BlockWords)
	for p := 100; p < 200; p++ {
		SetBit(words, uint16(p))
	}
	for p := 300; p < 305; p++ {
		SetBit(words, uint16(p))
	}

	gb := ToGapBlock(words, nil)
	require.False(t, gb.StartsSet)
	require.Equal(t, uint16(65535), gb.Ends[len(gb.Ends)-1])

	back := make([]uint32, BlockWords)
	FromGapBlock(gb, back)

	require.Equal(t, words, back)
}

func TestGapBlock_StartsSet(t *testing.T) {
	words := make([]uint32, BlockWords)
	for p := 0; p < 50; p++ {
		SetBit(words, uint16(p))
	}

	gb := ToGapBlock(words, nil)
	require.True(t, gb.StartsSet)

	back := make([]uint32, BlockWords)
	FromGapBlock(gb, back)
	require.Equal(t, words, back)
}
