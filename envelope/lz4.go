package envelope

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec compresses with LZ4 block compression, trading ratio for very
// fast decompression.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// NewLZ4Codec creates an LZ4Codec.
func NewLZ4Codec() *LZ4Codec { return &LZ4Codec{} }

// Compress compresses data with LZ4.
func (c *LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses LZ4-compressed data. The decompressed size is
// not carried in the LZ4 block format itself, so this grows an output
// buffer geometrically (starting at 4x the compressed size) until
// lz4.UncompressBlock stops reporting ErrInvalidSourceShortBuffer.
func (c *LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	const maxSize = 128 * 1024 * 1024 // 128MiB safety limit
	bufSize := len(data) * 4

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
