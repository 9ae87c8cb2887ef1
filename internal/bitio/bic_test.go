package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBIC_Array_SmallSet(t *testing.T) {
	arr := []uint16{3, 7, 8, 100, 4000, 65000}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 65535)
	w.Flush()

	r := NewReader(sink)
	got := DecodeBICArray[uint16](r, len(arr), 0, 65535)

	require.Equal(t, arr, got)
}

func TestEncodeDecodeBIC_Array_SingleValue(t *testing.T) {
	arr := []uint16{42}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 65535)
	w.Flush()

	r := NewReader(sink)
	got := DecodeBICArray[uint16](r, len(arr), 0, 65535)

	require.Equal(t, arr, got)
}

func TestEncodeDecodeBIC_Array_FullRangeDense(t *testing.T) {
	arr := make([]uint16, 0, 100)
	for i := uint16(0); i < 200; i += 2 {
		arr = append(arr, i)
	}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 199)
	w.Flush()

	r := NewReader(sink)
	got := DecodeBICArray[uint16](r, len(arr), 0, 199)

	require.Equal(t, arr, got)
}

func TestEncodeDecodeBIC_Array_TightRange(t *testing.T) {
	// sz equals the full range width: every possible value is present,
	// so every recursive step has r == 0 and writes no bits at all.
	arr := []uint16{10, 11, 12, 13, 14}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 10, 14)
	w.Flush()

	require.Empty(t, sink.words)

	r := NewReader(sink)
	got := DecodeBICArray[uint16](r, len(arr), 10, 14)

	require.Equal(t, arr, got)
}

func TestDecodeBICBits_SetsCorrectBits(t *testing.T) {
	arr := []uint16{0, 1, 31, 32, 33, 65535}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 65535)
	w.Flush()

	blk := make([]uint32, 65536/32)
	r := NewReader(sink)
	DecodeBICBits(r, blk, len(arr), 0, 65535)

	for _, v := range arr {
		require.NotZero(t, blk[v>>5]&(1<<(v&31)), "bit %d should be set", v)
	}

	// No bits set beyond the encoded positions.
	var total int
	for _, word := range blk {
		for word != 0 {
			total++
			word &= word - 1
		}
	}
	require.Equal(t, len(arr), total)
}

func TestDecodeBICDry_ConsumesSameBitsAsArray(t *testing.T) {
	arr := []uint16{5, 9, 200, 201, 65000}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 65535)
	// Encode a sentinel value afterward to detect misaligned consumption.
	w.PutBits(0xABCD, 16)
	w.Flush()

	r := NewReader(sink)
	DecodeBICDry[uint16](r, len(arr), 0, 65535)

	sentinel, ok := r.GetBits(16)
	require.True(t, ok)
	require.Equal(t, uint32(0xABCD), sentinel)
}

func TestEncodeDecodeBIC_U32Variant(t *testing.T) {
	arr := []uint32{100, 200000, 3000000, 4000000000}

	sink := &wordSlice{}
	w := NewWriter(sink)
	EncodeBIC(w, arr, 0, 4294967295)
	w.Flush()

	r := NewReader(sink)
	got := DecodeBICArray[uint32](r, len(arr), 0, uint32(4294967295))

	require.Equal(t, arr, got)
}
