package wire

import (
	"testing"

	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/stretchr/testify/require"
)

func TestEncoderDecoder_ScalarRoundTrip(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU8(0xAB)
	e.PutU16(0x1234)
	e.PutU32(0xDEADBEEF)
	e.PutU64(0x0102030405060708)

	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())

	u8, ok := d.GetU8()
	require.True(t, ok)
	require.Equal(t, uint8(0xAB), u8)

	u16, ok := d.GetU16()
	require.True(t, ok)
	require.Equal(t, uint16(0x1234), u16)

	u32, ok := d.GetU32()
	require.True(t, ok)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	u64, ok := d.GetU64()
	require.True(t, ok)
	require.Equal(t, uint64(0x0102030405060708), u64)
}

func TestEncoderDecoder_Arrays(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	shorts := []uint16{1, 2, 3, 65535}
	words := []uint32{10, 20, 30, 0xFFFFFFFF}

	e.PutU16Array(shorts)
	e.PutU32Array(words)

	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())

	gotShorts := make([]uint16, len(shorts))
	require.True(t, d.GetU16Array(gotShorts))
	require.Equal(t, shorts, gotShorts)

	gotWords := make([]uint32, len(words))
	require.True(t, d.GetU32Array(gotWords))
	require.Equal(t, words, gotWords)
}

func TestEncoderDecoder_PrefixedU16Array_NoCountPrefix(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	shorts := []uint16{4, 5, 6}
	e.PutPrefixedU16Array(0x09, shorts, false)

	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())

	tag, ok := d.GetU8()
	require.True(t, ok)
	require.Equal(t, uint8(0x09), tag)

	got := make([]uint16, 3)
	require.True(t, d.GetU16Array(got))
	require.Equal(t, shorts, got)
}

func TestEncoder_PosAndSetPos_Rollback(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32(1)
	mark := e.Pos()
	e.PutU32(2)
	e.PutU32(3)

	e.SetPos(mark)
	require.Equal(t, mark, e.Size())

	e.PutU32(99)
	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())

	first, _ := d.GetU32()
	second, _ := d.GetU32()
	require.Equal(t, uint32(1), first)
	require.Equal(t, uint32(99), second)
	require.Equal(t, 8, d.Pos())
}

func TestEncoder_Memcpy(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.Memcpy([]byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, e.Bytes())
}

func TestEncoderDecoder_BigEndian(t *testing.T) {
	e := NewEncoder(endian.GetBigEndianEngine())
	defer e.Finish()

	e.PutU32(0x01020304)

	d := NewDecoder(e.Bytes(), endian.GetBigEndianEngine())
	v, ok := d.GetU32()
	require.True(t, ok)
	require.Equal(t, uint32(0x01020304), v)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, e.Bytes())
}

func TestDecoder_TruncatedStream(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3}, endian.GetLittleEndianEngine())

	_, ok := d.GetU32()
	require.False(t, ok)
}

func TestGetU32AND_DryReadSkipsBytes(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32Array([]uint32{1, 2, 3})
	e.PutU8(0xFF)

	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	require.True(t, d.GetU32AND(nil, 3))

	b, ok := d.GetU8()
	require.True(t, ok)
	require.Equal(t, uint8(0xFF), b)
}

func TestGetU32AND_MergesInPlace(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32Array([]uint32{0xFF00FF00, 0x0000FFFF})

	dst := []uint32{0xFFFFFFFF, 0xFFFF0000}
	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	require.True(t, d.GetU32AND(dst, 2))

	require.Equal(t, uint32(0xFF00FF00), dst[0])
	require.Equal(t, uint32(0x00000000), dst[1])
}

func TestGetU32OR_DetectsAllOnes(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32Array([]uint32{0xFFFFFFFF, 0xFFFFFFFF})

	dst := make([]uint32, 2)
	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	allOnes, ok := d.GetU32OR(dst, 2)

	require.True(t, ok)
	require.True(t, allOnes)
}

func TestGetU32OR_NotAllOnes(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32Array([]uint32{0xFFFFFFFF, 0x7FFFFFFF})

	dst := make([]uint32, 2)
	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	allOnes, ok := d.GetU32OR(dst, 2)

	require.True(t, ok)
	require.False(t, allOnes)
}

func TestGetU32OR_DryReadReturnsFalse(t *testing.T) {
	e := NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU32Array([]uint32{0xFFFFFFFF})

	d := NewDecoder(e.Bytes(), endian.GetLittleEndianEngine())
	allOnes, ok := d.GetU32OR(nil, 1)

	require.True(t, ok)
	require.False(t, allOnes)
	require.Equal(t, 4, d.Pos())
}
