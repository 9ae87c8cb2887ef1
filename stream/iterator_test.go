package stream

import (
	"testing"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/codec"
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/wire"
	"github.com/stretchr/testify/require"
)

func encodeVector(t *testing.T, bv *bitset.BitVector) []byte {
	t.Helper()

	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	enc := codec.NewBlockEncoder(5, format.DefaultGapLevels)
	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())

	return out
}

func TestIterator_SingleBitBlock(t *testing.T) {
	// Six isolated bits: at level 5 an array-shaped token costs less than
	// gap_bienc here, so the block is coded as a bit-block-shaped token
	// (with only two bits, gap_bienc would win).
	bv := bitset.NewBitVector()
	for _, pos := range []uint64{5, 9000, 20000, 30000, 40000, 50000} {
		bv.SetBit(pos)
	}

	data := encodeVector(t, bv)
	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateBitBlock, it.State())
	require.Equal(t, uint64(0), it.BlockIndex())

	dst := make([]uint32, bitset.BlockWords)
	tmp := make([]uint32, bitset.BlockWords)
	cnt, err := it.GetBitBlock(dst, tmp, Or)
	require.NoError(t, err)
	require.Equal(t, uint64(6), cnt)
	require.Equal(t, uint64(1), it.BlockIndex())

	ok, err = it.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIterator_AllOneRun(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetAllSetBlock(0)
	bv.SetAllSetBlock(1)
	bv.SetAllSetBlock(2)

	data := encodeVector(t, bv)
	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateOneBlocks, it.State())
	require.Equal(t, uint64(3), it.MonoBlockCount())

	nb := it.SkipMonoBlocks(it.MonoBlockCount())
	require.Equal(t, uint64(3), nb)
	require.Equal(t, StateBlocks, it.State())
}

func TestIterator_ZeroRunShortcut(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetBit(0)
	bv.SetBit(10 * bitset.BlockBits)

	data := encodeVector(t, bv)
	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateBitBlock, it.State())

	dst := make([]uint32, bitset.BlockWords)
	tmp := make([]uint32, bitset.BlockWords)
	_, err = it.GetBitBlock(dst, tmp, Assign)
	require.NoError(t, err)

	ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateZeroBlocks, it.State())
	require.Equal(t, uint64(9), it.MonoBlockCount())
}

func TestIterator_GapBlock(t *testing.T) {
	bv := bitset.NewBitVector()
	for i := uint64(0); i < 40; i += 2 {
		bv.SetBit(i)
	}

	data := encodeVector(t, bv)
	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	if it.State() == StateGapBlock {
		gb, err := it.GetGapBlock()
		require.NoError(t, err)
		require.NotEmpty(t, gb.Ends)
	} else {
		dst := make([]uint32, bitset.BlockWords)
		tmp := make([]uint32, bitset.BlockWords)
		_, err := it.GetBitBlock(dst, tmp, Or)
		require.NoError(t, err)
		require.Equal(t, uint32(0b0101010101), dst[0]&0x3FF)
	}
}

func TestIterator_EmptyVector(t *testing.T) {
	bv := bitset.NewBitVector()

	data := encodeVector(t, bv)
	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIterator_ReservedTag(t *testing.T) {
	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()
	e.PutU8(uint8(format.TagSGapBit))

	d := wire.NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	it := New(d)

	ok, err := it.Next()
	require.Error(t, err)
	require.False(t, ok)
}
