package codec

import (
	"testing"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/wire"
	"github.com/stretchr/testify/require"
)

func roundTripBlock(t *testing.T, level int, positions []uint16) {
	t.Helper()

	block := make([]uint32, bitset.BlockWords)
	for _, p := range positions {
		bitset.SetBit(block, p)
	}

	enc := NewBlockEncoder(level, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	enc.encodeBitBlock(e, block)

	d := wire.NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	tagByte, ok := d.GetU8()
	require.True(t, ok)

	dec := NewBlockDecoder()
	bv := bitset.NewBitVector()
	err := dec.decodeBitBlock(d, bv, 0, format.Tag(tagByte))
	require.NoError(t, err)

	for _, p := range positions {
		require.True(t, bv.GetBit(uint64(p)), "position %d should be set", p)
	}
	require.Equal(t, uint64(len(uniq(positions))), bv.Cardinality())
}

func uniq(vs []uint16) []uint16 {
	seen := map[uint16]bool{}
	var out []uint16
	for _, v := range vs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func TestRoundTrip_SingleBit(t *testing.T) {
	roundTripBlock(t, 5, []uint16{1234})
}

func TestRoundTrip_SparseBlock_Level5(t *testing.T) {
	roundTripBlock(t, 5, []uint16{10, 200, 3000, 40000, 65000})
}

func TestRoundTrip_SparseBlock_Level3(t *testing.T) {
	roundTripBlock(t, 3, []uint16{10, 200, 3000, 40000, 65000})
}

func TestRoundTrip_DenseAlternating(t *testing.T) {
	positions := make([]uint16, 0, bitset.BlockBits/2)
	for p := 0; p < bitset.BlockBits; p += 2 {
		positions = append(positions, uint16(p))
	}
	roundTripBlock(t, 5, positions)
}

func TestRoundTrip_ManyRandomLikePositions(t *testing.T) {
	positions := []uint16{0, 1, 2, 100, 101, 500, 501, 502, 999, 1000, 50000, 50001, 65535}
	roundTripBlock(t, 5, positions)
	roundTripBlock(t, 2, positions)
}

func TestRoundTrip_TwoHalfRuns(t *testing.T) {
	// forces a bit_gaps-heavy GAP encoding: a handful of wide runs.
	positions := make([]uint16, 0)
	for p := 0; p < 100; p++ {
		positions = append(positions, uint16(p))
	}
	for p := 40000; p < 40050; p++ {
		positions = append(positions, uint16(p))
	}
	roundTripBlock(t, 5, positions)
	roundTripBlock(t, 2, positions)
}

func TestEncodeAll_EmptyVector(t *testing.T) {
	bv := bitset.NewBitVector()
	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())

	enc.EncodeAll(e, bv, 0, false)

	require.Equal(t, []byte{uint8(format.TagAZero)}, e.Bytes())
}

func TestEncodeAll_FullBlockRange(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetAllSetBlock(0)

	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())

	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	// Beyond the vector's own content everything is implicitly zero, so
	// even a one-run that reaches the end terminates on azero, never
	// the unbounded aone sentinel.
	require.Equal(t, []byte{uint8(format.Tag1One), uint8(format.TagAZero)}, e.Bytes())
}

func TestEncodeAll_SingleBitFarOut(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetBit(1000000)

	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())

	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	d := wire.NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	dec := NewBlockDecoder()
	out := bitset.NewBitVector()
	require.NoError(t, dec.DecodeAll(d, out))

	require.True(t, out.GetBit(1000000))
	require.Equal(t, uint64(1), out.Cardinality())
}

func TestEncodeAll_DestructiveClearsSource(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetBit(5)
	bv.SetAllSetBlock(1)
	bv.SetBit(2*bitset.BlockBits + 7)

	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())

	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), true)

	require.True(t, bv.IsEmpty())
}

func TestEncodeAll_RoundTripMultiBlock(t *testing.T) {
	bv := bitset.NewBitVector()
	bv.SetBit(5)
	bv.SetAllSetBlock(1)
	for _, p := range []uint16{10, 500, 60000} {
		bv.SetBit(2*bitset.BlockBits + uint64(p))
	}

	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	d := wire.NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	dec := NewBlockDecoder()
	out := bitset.NewBitVector()
	require.NoError(t, dec.DecodeAll(d, out))

	require.True(t, out.GetBit(5))
	require.True(t, out.IsBlockAllOne(1))
	require.True(t, out.GetBit(2*bitset.BlockBits+10))
	require.True(t, out.GetBit(2*bitset.BlockBits+500))
	require.True(t, out.GetBit(2*bitset.BlockBits+60000))
}

func TestDecodeAll_DryRunSkipsWithoutTarget(t *testing.T) {
	bv := bitset.NewBitVector()
	for _, p := range []uint16{1, 2, 3, 40000} {
		bv.SetBit(uint64(p))
	}

	enc := NewBlockEncoder(5, format.DefaultGapLevels)
	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	enc.EncodeAll(e, bv, bv.MaxBlockIndex(), false)

	d := wire.NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	dec := NewBlockDecoder()
	require.NoError(t, dec.DecodeAll(d, nil))
}
