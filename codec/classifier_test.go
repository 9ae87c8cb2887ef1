package codec

import (
	"testing"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/stretchr/testify/require"
)

func TestClassify_AllZeroAllOne(t *testing.T) {
	zero := make([]uint32, bitset.BlockWords)
	st := ComputeStats(zero)
	require.Equal(t, format.TagAZero, Classify(zero, st, 5))

	one := make([]uint32, bitset.BlockWords)
	for i := range one {
		one[i] = 0xFFFFFFFF
	}
	st = ComputeStats(one)
	require.Equal(t, format.TagAOne, Classify(one, st, 5))
}

func TestClassify_LevelOneOnlyBit(t *testing.T) {
	block := make([]uint32, bitset.BlockWords)
	bitset.SetBit(block, 3)
	st := ComputeStats(block)
	require.Equal(t, format.TagBit, Classify(block, st, 1))
}

func TestClassify_SingleBit(t *testing.T) {
	block := make([]uint32, bitset.BlockWords)
	bitset.SetBit(block, 1234)
	st := ComputeStats(block)
	require.Equal(t, format.TagBit1Bit, Classify(block, st, 5))
}

func TestClassify_SparseBlockPrefersCompactForm(t *testing.T) {
	block := make([]uint32, bitset.BlockWords)
	for _, p := range []uint16{10, 200, 3000, 40000, 65000} {
		bitset.SetBit(block, p)
	}
	st := ComputeStats(block)
	tag := Classify(block, st, 5)
	require.NotEqual(t, format.TagBit, tag)
}

func TestClassify_AlternatingBitsPrefersPlainBit(t *testing.T) {
	block := make([]uint32, bitset.BlockWords)
	for p := 0; p < bitset.BlockBits; p += 2 {
		bitset.SetBit(block, uint16(p))
	}
	st := ComputeStats(block)
	require.Equal(t, bitset.BlockBits/2, st.Popcount)
	require.Equal(t, format.TagBit, Classify(block, st, 5))
}

func TestNonzeroRunsSize(t *testing.T) {
	block := make([]uint32, bitset.BlockWords)
	block[5] = 1
	block[6] = 1

	size := nonzeroRunsSize(block)
	// start flag (1) + zero run header (2) + nonzero run header (2) + 2 words (8) + zero run header (2)
	require.Equal(t, 1+2+2+8+2, size)
}
