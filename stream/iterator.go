// Package stream implements the forward stream iterator (C8): a state
// machine over the block-token sequence that exposes typed, op-fused
// accessors without forcing every block through a bit-vector merge.
package stream

import (
	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/codec"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/wire"
)

// State identifies what the iterator is currently positioned on.
type State uint8

const (
	StateUnknown State = iota
	StateListIDs
	StateBlocks
	StateZeroBlocks
	StateOneBlocks
	StateBitBlock
	StateGapBlock
)

// Iterator walks a stream's block-token sequence one token at a time,
// tracking the logical block index and exposing typed accessors for
// the token currently under the cursor.
type Iterator struct {
	d   *wire.Decoder
	dec *codec.BlockDecoder

	state State
	nb    uint64

	monoBlockCnt uint64 // StateZeroBlocks/StateOneBlocks: run length
	curTag       format.Tag
	done         bool
}

// New creates an Iterator over d, starting at block 0. The caller
// should defer Close once the iterator goes out of use, to return its
// decoder's scratch buffers to their pools.
func New(d *wire.Decoder) *Iterator {
	return &Iterator{d: d, dec: codec.NewBlockDecoder(), state: StateUnknown}
}

// Close returns the iterator's underlying decoder scratch to its pools.
// Safe to call once per iterator; the iterator must not be used
// afterward.
func (it *Iterator) Close() {
	it.dec.Close()
}

// BlockIndex returns the logical block index the cursor is on.
func (it *Iterator) BlockIndex() uint64 { return it.nb }

// State returns the iterator's current state.
func (it *Iterator) State() State { return it.state }

// MonoBlockCount returns the run length of a zero_blocks/one_blocks
// token, valid only right after Next() set that state.
func (it *Iterator) MonoBlockCount() uint64 { return it.monoBlockCnt }

// Next reads the next tag byte and updates state plus auxiliary
// fields. Returns false once the stream ends (set_block_end, the
// azero "all remaining are zero" sentinel, or truncation). The aone
// sentinel is reported once as a StateOneBlocks run; the call after it
// returns false.
func (it *Iterator) Next() (bool, error) {
	if it.done {
		return false, nil
	}

	tagByte, ok := it.d.GetU8()
	if !ok {
		it.done = true

		return false, errs.ErrTruncatedStream
	}

	if runLen, ok := format.HighBitShortcut(tagByte); ok {
		it.state = StateZeroBlocks
		it.monoBlockCnt = uint64(runLen)

		return true, nil
	}

	tag := format.Tag(tagByte)
	if tag.Reserved() {
		it.done = true

		return false, errs.ErrReservedBlockTag
	}

	switch tag {
	case format.TagEnd, format.TagAZero:
		it.done = true

		return false, nil
	case format.TagAOne:
		// Terminal, like azero: there is no further token to read, but
		// unlike azero the caller still has an all-one run to apply
		// before the stream is considered exhausted, so done is set now
		// while still reporting this token to the caller.
		it.state = StateOneBlocks
		it.monoBlockCnt = ^uint64(0)
		it.done = true

		return true, nil
	case format.Tag1Zero, format.Tag8Zero, format.Tag16Zero, format.Tag32Zero, format.Tag64Zero:
		run, err := codec.ReadRunLength(it.d, tag)
		if err != nil {
			it.done = true

			return false, err
		}
		it.state = StateZeroBlocks
		it.monoBlockCnt = run

		return true, nil
	case format.Tag1One, format.Tag8One, format.Tag16One, format.Tag32One, format.Tag64One:
		run, err := codec.ReadRunLength(it.d, tag)
		if err != nil {
			it.done = true

			return false, err
		}
		it.state = StateOneBlocks
		it.monoBlockCnt = run

		return true, nil
	case format.TagGap, format.TagGapEGamma, format.TagGapBienc, format.TagBitGapBienc:
		it.state = StateGapBlock
		it.curTag = tag

		return true, nil
	default:
		it.state = StateBitBlock
		it.curTag = tag

		return true, nil
	}
}

// SkipMonoBlocks advances the logical block index past a zero_blocks
// or one_blocks run without materializing it, re-entering the blocks
// state, and returns the new block index. count is the number of
// blocks the caller actually consumed (it may stop short of
// MonoBlockCount when bounding a range).
func (it *Iterator) SkipMonoBlocks(count uint64) uint64 {
	it.nb += count
	it.state = StateBlocks

	return it.nb
}

// GetBitBlock decodes the current bit-block-shaped token (state ==
// StateBitBlock) into dst fused with op, returning the resulting
// popcount. dst may be nil for a pure counting dry read matching the
// current block's cardinality.
func (it *Iterator) GetBitBlock(dst []uint32, tmp []uint32, op Op) (uint64, error) {
	if err := it.dec.DecodeBlockDense(it.d, it.curTag, tmp); err != nil {
		return 0, err
	}
	it.nb++

	return combine(dst, tmp, op), nil
}

// GetGapBlock materializes the current GAP-family token (state ==
// StateGapBlock) into its bitset.GapBlock representation.
func (it *Iterator) GetGapBlock() (bitset.GapBlock, error) {
	gb, err := it.dec.DecodeGapBlock(it.d, it.curTag)
	if err != nil {
		return gb, err
	}
	it.nb++

	return gb, nil
}

// GetArrBit is GetBitBlock for tags whose natural representation is a
// sparse array (arr_bit/arr_bit_inv and their GAP/BIC/egamma-framed
// cousins): it returns no index list, but decodes the token to a full
// dense block and fuses it into dst with op, like GetBitBlock.
func (it *Iterator) GetArrBit(dst []uint32, tmp []uint32, op Op) (uint64, error) {
	return it.GetBitBlock(dst, tmp, op)
}
