package envelope

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec compresses with Zstandard via pooled encoders/decoders; the
// klauspost/compress/zstd package is designed for reuse across calls once
// warmed up, so a sync.Pool amortizes that warmup across many Wrap/Unwrap
// calls rather than paying it per call.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("envelope: failed to create zstd encoder: %v", err))
		}

		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("envelope: failed to create zstd decoder: %v", err))
		}

		return dec
	},
}

// NewZstdCodec creates a ZstdCodec.
func NewZstdCodec() *ZstdCodec { return &ZstdCodec{} }

// Compress compresses data with Zstandard.
func (c *ZstdCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstandard-compressed data.
func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("envelope: zstd decompress: %w", err)
	}

	return out, nil
}
