// Package format defines the wire-level vocabulary shared by the block
// codec, serializer, and stream iterator: the header flag bits and the
// exhaustive block tag table.
package format

// Flags is the header's single flags byte.
type Flags uint8

const (
	FlagDefault Flags = 1 << 0 // no-resize fixed-size target
	FlagResize  Flags = 1 << 1 // bv_size field follows, target is resized on load
	FlagIDList  Flags = 1 << 2 // legacy ID_LIST framing
	FlagNoBO    Flags = 1 << 3 // byte_order byte omitted, native order assumed
	FlagNoGAPL  Flags = 1 << 4 // gap_levels array omitted, defaults used
	Flag64Bit   Flags = 1 << 5 // bv_size (when present) is u64, not u32
)

// Has reports whether f sets bit.
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// With returns f with bit set.
func (f Flags) With(bit Flags) Flags { return f | bit }

// Without returns f with bit cleared.
func (f Flags) Without(bit Flags) Flags { return f &^ bit }

// ByteOrderTag is the header's byte_order byte, present iff !NO_BO.
type ByteOrderTag uint8

const (
	ByteOrderBig    ByteOrderTag = 0
	ByteOrderLittle ByteOrderTag = 1
)

// Tag identifies a block token's encoding on the wire. Values are never
// renumbered; new encodings append new values, and tags 12, 13, and 15
// are permanently reserved.
type Tag uint8

const (
	TagEnd             Tag = 0
	Tag1Zero           Tag = 1
	Tag1One            Tag = 2
	Tag8Zero           Tag = 3
	Tag8One            Tag = 4
	Tag16Zero          Tag = 5
	Tag16One           Tag = 6
	Tag32Zero          Tag = 7
	Tag32One           Tag = 8
	TagAZero           Tag = 9
	TagAOne            Tag = 10
	TagBit             Tag = 11
	TagSGapBit         Tag = 12 // reserved
	TagSGapGap         Tag = 13 // reserved
	TagGap             Tag = 14
	TagGapBit          Tag = 15 // reserved
	TagArrBit          Tag = 16
	TagBitInterval     Tag = 17
	TagArrGap          Tag = 18
	TagBit1Bit         Tag = 19
	TagGapEGamma       Tag = 20
	TagArrGapEGamma    Tag = 21
	TagBit0Runs        Tag = 22
	TagArrGapEGammaInv Tag = 23
	TagArrGapInv       Tag = 24
	Tag64Zero          Tag = 25
	Tag64One           Tag = 26
	TagGapBienc        Tag = 27
	TagArrGapBienc     Tag = 28
	TagArrGapBiencInv  Tag = 29
	TagArrBitInv       Tag = 30
	TagArrBienc        Tag = 31
	TagArrBiencInv     Tag = 32
	TagBitGapBienc     Tag = 33
	TagBitDigest0      Tag = 34
)

// reservedTags holds tags permanently set aside and never emitted.
var reservedTags = map[Tag]bool{
	TagSGapBit: true,
	TagSGapGap: true,
	TagGapBit:  true,
}

// Reserved reports whether t is a reserved tag that a decoder must
// reject rather than treat as unknown.
func (t Tag) Reserved() bool {
	return reservedTags[t]
}

// Known reports whether t falls within the exhaustive tag table, tags 0
// through 34 inclusive. It does not distinguish reserved tags.
func (t Tag) Known() bool {
	return t <= TagBitDigest0
}

// HighBitShortcut reports whether the byte is the single-byte zero-run
// shortcut (top bit set, low 7 bits = run length), rather than a tag.
func HighBitShortcut(b uint8) (runLen uint8, ok bool) {
	if b&0x80 == 0 {
		return 0, false
	}

	return b & 0x7F, true
}

func (t Tag) String() string {
	switch t {
	case TagEnd:
		return "end"
	case Tag1Zero:
		return "1zero"
	case Tag1One:
		return "1one"
	case Tag8Zero:
		return "8zero"
	case Tag8One:
		return "8one"
	case Tag16Zero:
		return "16zero"
	case Tag16One:
		return "16one"
	case Tag32Zero:
		return "32zero"
	case Tag32One:
		return "32one"
	case TagAZero:
		return "azero"
	case TagAOne:
		return "aone"
	case TagBit:
		return "bit"
	case TagSGapBit:
		return "sgapbit(reserved)"
	case TagSGapGap:
		return "sgapgap(reserved)"
	case TagGap:
		return "gap"
	case TagGapBit:
		return "gapbit(reserved)"
	case TagArrBit:
		return "arrbit"
	case TagBitInterval:
		return "bit_interval"
	case TagArrGap:
		return "arrgap"
	case TagBit1Bit:
		return "bit_1bit"
	case TagGapEGamma:
		return "gap_egamma"
	case TagArrGapEGamma:
		return "arrgap_egamma"
	case TagBit0Runs:
		return "bit_0runs"
	case TagArrGapEGammaInv:
		return "arrgap_egamma_inv"
	case TagArrGapInv:
		return "arrgap_inv"
	case Tag64Zero:
		return "64zero"
	case Tag64One:
		return "64one"
	case TagGapBienc:
		return "gap_bienc"
	case TagArrGapBienc:
		return "arrgap_bienc"
	case TagArrGapBiencInv:
		return "arrgap_bienc_inv"
	case TagArrBitInv:
		return "arrbit_inv"
	case TagArrBienc:
		return "arr_bienc"
	case TagArrBiencInv:
		return "arr_bienc_inv"
	case TagBitGapBienc:
		return "bitgap_bienc"
	case TagBitDigest0:
		return "bit_digest0"
	default:
		return "unknown"
	}
}

// CompressionType identifies the optional outer envelope compression
// applied to a fully-serialized stream, independent of the block codec.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionZstd CompressionType = 1
	CompressionS2   CompressionType = 2
	CompressionLZ4  CompressionType = 3
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
