// Package errs defines the sentinel errors returned by the codec.
//
// Callers match against these with errors.Is; call sites wrap them with
// fmt.Errorf("%w: ...", errs.ErrXxx) to add context without losing the
// sentinel identity.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrSerialFormat is matched (via errors.Is) by ErrUnknownBlockTag,
	// ErrReservedBlockTag, ErrAddressWidthMismatch and ErrInvalidByteOrder,
	// which all wrap it.
	ErrSerialFormat = errors.New("serial format error")

	// ErrUnknownBlockTag is returned when a block token's tag byte does
	// not match any entry in the block-type table.
	ErrUnknownBlockTag = fmt.Errorf("%w: unknown block tag", ErrSerialFormat)

	// ErrReservedBlockTag is returned when a reserved tag (sgapbit,
	// sgapgap, gapbit) is encountered on read.
	ErrReservedBlockTag = fmt.Errorf("%w: reserved block tag", ErrSerialFormat)

	// ErrAddressWidthMismatch marks a 64-bit-addressed stream read into a
	// 32-bit bit-vector, or the reverse. serial.Deserializer does not
	// return it: bitset.BitVector has no fixed address width, and the
	// header's 64_BIT flag is not compared against the target.
	ErrAddressWidthMismatch = fmt.Errorf("%w: address width mismatch", ErrSerialFormat)

	// ErrInvalidByteOrder is returned when the header's byte-order byte
	// is neither 0 (big) nor 1 (little).
	ErrInvalidByteOrder = fmt.Errorf("%w: invalid byte order byte", ErrSerialFormat)

	// ErrInvalidHeaderFlags is returned by format.Header.Validate when the
	// header's flag byte sets any bit outside the defined flags.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrBufferTooSmall is returned by the raw Serialize entry point when
	// the caller-supplied buffer is smaller than the pre-sized contract
	// requires.
	ErrBufferTooSmall = errors.New("buffer too small for serialize")

	// ErrSequenceTooLarge marks a BIC-coded sequence longer than the
	// 16-bit length the block format can represent. The block encoder
	// does not check for this case and does not return it.
	ErrSequenceTooLarge = errors.New("sequence too large for BIC encoding")

	// ErrTruncatedStream is returned when the stream ends in the middle
	// of a token's fixed-size payload.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrInvalidCompressionLevel is returned when a compression level
	// outside [0, 5] is passed to SetCompressionLevel.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")

	// ErrUnsupportedCompression is returned when an envelope's
	// compression type byte does not match any registered codec.
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrChecksumMismatch is returned when the xxHash64 checksum in an
	// envelope's header does not match the decompressed payload.
	ErrChecksumMismatch = errors.New("envelope checksum mismatch")

	// ErrEnvelopeTruncated is returned when an envelope is shorter than
	// its fixed header requires.
	ErrEnvelopeTruncated = errors.New("truncated envelope")
)
