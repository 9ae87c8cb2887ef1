package envelope

import (
	"fmt"

	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/internal/hash"
	"github.com/Aurora-Community/BitMagic/internal/options"
	"github.com/Aurora-Community/BitMagic/wire"
)

// headerSize is the envelope's fixed prefix: 1 byte compression type, 8
// bytes uncompressed length, 8 bytes xxHash64 checksum.
const headerSize = 1 + 8 + 8

// Wrap compresses payload with the codec opts select (CompressionNone by
// default) and prepends a fixed header recording the codec, the
// uncompressed length, and an xxHash64 checksum of the uncompressed
// bytes. The checksum covers payload as given, not the compressed body,
// so Unwrap can detect corruption introduced anywhere after Wrap ran,
// including within the compression codec itself.
func Wrap(payload []byte, opts ...Option) ([]byte, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("envelope: compress with %s: %w", cfg.compression, err)
	}

	e := wire.NewEncoder(endian.GetLittleEndianEngine())
	defer e.Finish()

	e.PutU8(uint8(cfg.compression))
	e.PutU64(uint64(len(payload)))
	e.PutU64(hash.Sum(payload))
	e.Memcpy(compressed)

	out := make([]byte, e.Size())
	copy(out, e.Bytes())

	return out, nil
}

// Unwrap validates and strips the header Wrap produced, decompresses the
// body with the codec the header names, and verifies the result against
// the header's checksum before returning it.
func Unwrap(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errs.ErrEnvelopeTruncated
	}

	d := wire.NewDecoder(data, endian.GetLittleEndianEngine())

	compressionByte, _ := d.GetU8()
	wantLen, _ := d.GetU64()
	wantSum, _ := d.GetU64()

	codec, err := GetCodec(CompressionType(compressionByte))
	if err != nil {
		return nil, err
	}

	body := data[d.Pos():]

	payload, err := codec.Decompress(body)
	if err != nil {
		return nil, fmt.Errorf("envelope: decompress with %s: %w", CompressionType(compressionByte), err)
	}

	if uint64(len(payload)) != wantLen {
		return nil, fmt.Errorf("%w: length %d, want %d", errs.ErrChecksumMismatch, len(payload), wantLen)
	}

	if got := hash.Sum(payload); got != wantSum {
		return nil, fmt.Errorf("%w: checksum %x, want %x", errs.ErrChecksumMismatch, got, wantSum)
	}

	return payload, nil
}
