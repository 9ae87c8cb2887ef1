package pool

import "sync"

// Slice pools for the fixed-shape scratch buffers the codec needs while
// encoding and decoding a single 65536-bit block.
var (
	bitBlockPool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
	gapBlockPool = sync.Pool{
		New: func() any { return &[]uint16{} },
	}
	bicIndexPool = sync.Pool{
		New: func() any { return &[]uint16{} },
	}
)

// BitWords is the word count of one dense bit-block: 65536 bits / 32.
const BitWords = 65536 / 32

// GapWords is the minimum length of the run-endpoint scratch slices
// handed out below; longer GAP sequences get a larger slice.
const GapWords = 1024

// GetBitBlock retrieves a zeroed [BitWords]uint32 scratch slice from the
// pool, used to materialize a block's dense bitmap during encode or a
// set-algebra merge.
//
// The caller must call the returned cleanup function to return the slice
// to the pool.
func GetBitBlock() ([]uint32, func()) {
	ptr, _ := bitBlockPool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < BitWords {
		slice = make([]uint32, BitWords)
		*ptr = slice
	} else {
		slice = slice[:BitWords]
		for i := range slice {
			slice[i] = 0
		}
		*ptr = slice
	}

	return slice, func() { bitBlockPool.Put(ptr) }
}

// GetGapBlock retrieves a uint16 scratch slice of length size, or
// GapWords if size is smaller, for a GAP-block run-endpoint sequence.
func GetGapBlock(size int) ([]uint16, func()) {
	if size < GapWords {
		size = GapWords
	}

	ptr, _ := gapBlockPool.Get().(*[]uint16)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint16, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { gapBlockPool.Put(ptr) }
}

// GetBICIndexArray retrieves a uint16 scratch slice used by the binary
// interpolative decoder to hold the recovered index sequence for one
// block before it is folded into the destination bit-block or GAP-block.
//
// The returned slice has length equal to size; the block's bit count
// (65536) bounds the worst case.
func GetBICIndexArray(size int) ([]uint16, func()) {
	ptr, _ := bicIndexPool.Get().(*[]uint16)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint16, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { bicIndexPool.Put(ptr) }
}
