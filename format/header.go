package format

import (
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/wire"
)

// DefaultGapLevels are the GAP length-class thresholds used when a
// stream's header sets NO_GAPL.
var DefaultGapLevels = GapLevels{128, 256, 512, 65535}

// GapLevels holds the four GAP length-class thresholds serialized in the
// header when !NO_GAPL. The levels travel with the stream only: the
// classifier does not consult them, and the decoder materializes every
// GAP-family token to a dense block whatever its length.
type GapLevels [4]uint16

// CalcLevel returns the index (0-3) of the smallest threshold that gapLen
// fits under, or 3 if it exceeds every configured level.
func (g GapLevels) CalcLevel(gapLen int) int {
	for i, threshold := range g {
		if gapLen <= int(threshold) {
			return i
		}
	}

	return len(g) - 1
}

// Header is the fixed preamble of a serialized stream.
type Header struct {
	Flags     Flags
	ByteOrder ByteOrderTag
	GapLevels GapLevels
	BVSize    uint64
}

// Encode appends the header to e using e's own byte order for the
// multi-byte fields that follow the flags byte.
func (h Header) Encode(e *wire.Encoder) {
	e.PutU8(uint8(h.Flags))

	if !h.Flags.Has(FlagNoBO) {
		e.PutU8(uint8(h.ByteOrder))
	}

	if !h.Flags.Has(FlagNoGAPL) {
		e.PutU16Array(h.GapLevels[:])
	}

	if h.Flags.Has(FlagResize) {
		if h.Flags.Has(Flag64Bit) {
			e.PutU64(h.BVSize)
		} else {
			e.PutU32(uint32(h.BVSize))
		}
	}
}

// DecodeHeader reads a header from d. d must already be configured with
// the reader's assumed byte order; if the stream's recorded byte_order
// byte disagrees, the caller is responsible for re-creating d with the
// swapped engine before reading the remaining fields (the flags and
// byte_order bytes themselves are order-independent single bytes).
func DecodeHeader(d *wire.Decoder) (Header, error) {
	var h Header

	flagByte, ok := d.GetU8()
	if !ok {
		return h, errs.ErrTruncatedStream
	}
	h.Flags = Flags(flagByte)

	if !h.Flags.Has(FlagNoBO) {
		boByte, ok := d.GetU8()
		if !ok {
			return h, errs.ErrTruncatedStream
		}

		if boByte != uint8(ByteOrderBig) && boByte != uint8(ByteOrderLittle) {
			return h, errs.ErrInvalidByteOrder
		}
		h.ByteOrder = ByteOrderTag(boByte)
	} else {
		h.ByteOrder = nativeByteOrderTag()
	}

	if !h.Flags.Has(FlagNoGAPL) {
		if !d.GetU16Array(h.GapLevels[:]) {
			return h, errs.ErrTruncatedStream
		}
	} else {
		h.GapLevels = DefaultGapLevels
	}

	if h.Flags.Has(FlagResize) {
		if h.Flags.Has(Flag64Bit) {
			v, ok := d.GetU64()
			if !ok {
				return h, errs.ErrTruncatedStream
			}
			h.BVSize = v
		} else {
			v, ok := d.GetU32()
			if !ok {
				return h, errs.ErrTruncatedStream
			}
			h.BVSize = uint64(v)
		}
	}

	return h, nil
}

func nativeByteOrderTag() ByteOrderTag {
	if endian.IsNativeLittleEndian() {
		return ByteOrderLittle
	}

	return ByteOrderBig
}

// EndianEngine returns the endian.EndianEngine matching h's recorded
// byte order.
func (h Header) EndianEngine() endian.EndianEngine {
	if h.ByteOrder == ByteOrderLittle {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

const knownFlagBits = FlagDefault | FlagResize | FlagIDList | FlagNoBO | FlagNoGAPL | Flag64Bit

// Validate reports errs.ErrInvalidHeaderFlags if h.Flags sets any bit
// outside the six defined flag bits.
func (h Header) Validate() error {
	if h.Flags&^knownFlagBits != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}
