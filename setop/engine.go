package setop

import (
	"math/bits"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/endian"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/stream"
	"github.com/Aurora-Community/BitMagic/wire"
)

// Engine drives the stream iterator against a target bit-vector,
// fusing each decoded block with a set-algebra operation rather than
// always OR-merging like the plain deserializer.
type Engine struct {
	dst []uint32
	tmp []uint32

	// aoneLimit bounds a "set_block_aone" (all remaining blocks are
	// one) run for the stream currently being driven: the header's
	// declared bv_size when RESIZE was set at serialize time, or
	// unboundedRun when the stream carries no declared size, in which
	// case the target's own current extent is used.
	aoneLimit uint64
}

// NewEngine creates an operation engine with its own reusable
// per-block scratch.
func NewEngine() *Engine {
	return &Engine{
		dst: make([]uint32, bitset.BlockWords),
		tmp: make([]uint32, bitset.BlockWords),
	}
}

// Deserialize runs op over buf's stream against bv, returning the
// accumulated count. Only counting ops accumulate; for mutating ops the
// returned count is 0. ASSIGN clears bv first and continues as OR. If
// exitOnOne is set, Deserialize returns as soon as the running count
// becomes non-zero, so it only cuts a counting op short.
func (eng *Engine) Deserialize(bv *bitset.BitVector, buf []byte, op Op, exitOnOne bool) (uint64, error) {
	d, h, err := decoderFor(buf)
	if err != nil {
		return 0, err
	}
	eng.aoneLimit = aoneLimitFromHeader(h)

	effective := op
	if op == Assign {
		bv.Clear()
		effective = Or
	}

	return eng.run(bv, d, effective, exitOnOne, nil)
}

// DeserializeRange runs a forced AND against bv, stopping once the
// block index passes hi's block (hi >> 16).
func (eng *Engine) DeserializeRange(bv *bitset.BitVector, buf []byte, lo, hi uint64) (uint64, error) {
	d, h, err := decoderFor(buf)
	if err != nil {
		return 0, err
	}
	eng.aoneLimit = aoneLimitFromHeader(h)

	stopBlock := hi / bitset.BlockBits

	return eng.run(bv, d, And, false, &stopBlock)
}

func decoderFor(buf []byte) (*wire.Decoder, format.Header, error) {
	d := wire.NewDecoder(buf, endian.GetLittleEndianEngine())
	h, err := format.DecodeHeader(d)
	if err != nil {
		return nil, h, err
	}

	if h.ByteOrder == format.ByteOrderBig {
		d = wire.NewDecoder(buf, endian.GetBigEndianEngine())
		if h, err = format.DecodeHeader(d); err != nil {
			return nil, h, err
		}
	}

	return d, h, nil
}

// unboundedRun is the shared ^uint64(0) sentinel meaning "no explicit
// bound": stream.Iterator reports it as a set_block_aone run's length,
// and aoneLimitFromHeader reports it back when the stream declared no
// bv_size to bound such a run by.
const unboundedRun = ^uint64(0)

// aoneLimitFromHeader returns the block count a set_block_aone run may
// extend to, taken from the header's declared bv_size when RESIZE was
// set at serialize time, or unboundedRun otherwise (the target's own
// current extent is used as a fallback in that case).
func aoneLimitFromHeader(h format.Header) uint64 {
	if !h.Flags.Has(format.FlagResize) {
		return unboundedRun
	}

	return h.BVSize / bitset.BlockBits
}

// run iterates the stream body, dispatching by (iterator state, op)
// per block. stopAtBlock, when non-nil, ends iteration (without
// consuming further tokens) once the cursor passes that block index —
// used by DeserializeRange.
func (eng *Engine) run(bv *bitset.BitVector, d *wire.Decoder, op Op, exitOnOne bool, stopAtBlock *uint64) (uint64, error) {
	it := stream.New(d)
	defer it.Close()

	var running uint64

	for {
		if stopAtBlock != nil && it.BlockIndex() > *stopAtBlock {
			break
		}

		ok, err := it.Next()
		if err != nil {
			return running, err
		}
		if !ok {
			break
		}

		switch it.State() {
		case stream.StateBitBlock:
			n, err := eng.applyBitBlock(bv, it, op)
			if err != nil {
				return running, err
			}
			if op.IsCounting() {
				running += n
			}
		case stream.StateGapBlock:
			n, err := eng.applyGapBlock(bv, it, op)
			if err != nil {
				return running, err
			}
			if op.IsCounting() {
				running += n
			}
		case stream.StateZeroBlocks:
			run := boundedRun(it.BlockIndex(), it.MonoBlockCount(), stopAtBlock)
			running += eng.applyMonoRunBounded(bv, it.BlockIndex(), run, false, op)
			it.SkipMonoBlocks(run)
		case stream.StateOneBlocks:
			// "all remaining blocks are one" (set_block_aone) carries no
			// sized count on the wire; it extends to the stream's declared
			// bv_size when present, else to the target's own current
			// extent (there is nothing else to bound it by).
			cnt := it.MonoBlockCount()
			if cnt == unboundedRun {
				limit := eng.aoneLimit
				if limit == unboundedRun {
					cnt = capToTargetExtent(bv, it.BlockIndex())
				} else if it.BlockIndex() < limit {
					cnt = limit - it.BlockIndex()
				} else {
					cnt = 0
				}
			}
			run := boundedRun(it.BlockIndex(), cnt, stopAtBlock)
			running += eng.applyMonoRunBounded(bv, it.BlockIndex(), run, true, op)
			it.SkipMonoBlocks(run)
		}

		if exitOnOne && running != 0 {
			return running, nil
		}
	}

	eng.finalize(bv, it.BlockIndex(), op, stopAtBlock, &running)

	return running, nil
}

// capToTargetExtent bounds an unsized "all remaining" run to what's
// left of the target's own occupied block space, since bv carries no
// separate declared capacity to fill out to.
func capToTargetExtent(bv *bitset.BitVector, nb uint64) uint64 {
	maxNb := bv.MaxBlockIndex()
	if bv.IsEmpty() || nb > maxNb {
		return 0
	}

	return maxNb + 1 - nb
}

// boundedRun clamps a mono-block run so it never advances the cursor
// past stopAtBlock when DeserializeRange is in effect.
func boundedRun(nb, run uint64, stopAtBlock *uint64) uint64 {
	if stopAtBlock == nil || nb+run <= *stopAtBlock+1 {
		return run
	}

	return *stopAtBlock + 1 - nb
}

// applyBitBlock fuses a decoded bit-block-shaped token into bv at the
// iterator's current block index, writing the result back for
// mutating ops and returning the op's contribution to a running count.
func (eng *Engine) applyBitBlock(bv *bitset.BitVector, it *stream.Iterator, op Op) (uint64, error) {
	nb := it.BlockIndex()

	for i := range eng.dst {
		eng.dst[i] = 0
	}
	bv.MaterializeBlock(nb, eng.dst)

	n, err := it.GetBitBlock(eng.dst, eng.tmp, op)
	if err != nil {
		return 0, err
	}

	if !op.IsCounting() {
		bv.ReplaceBlock(nb, eng.dst)
	}

	return n, nil
}

// applyGapBlock decodes a GAP-family token to its run-length form,
// materializes it dense, then shares applyBitBlock's combine/writeback
// path. The wire format's GAP representation is purely a storage
// optimization; once decoded it behaves exactly like any other block.
func (eng *Engine) applyGapBlock(bv *bitset.BitVector, it *stream.Iterator, op Op) (uint64, error) {
	nb := it.BlockIndex()

	gb, err := it.GetGapBlock()
	if err != nil {
		return 0, err
	}

	for i := range eng.tmp {
		eng.tmp[i] = 0
	}
	materializeGapBlock(gb, eng.tmp)

	for i := range eng.dst {
		eng.dst[i] = 0
	}
	bv.MaterializeBlock(nb, eng.dst)

	n := combineDense(eng.dst, eng.tmp, op)

	if !op.IsCounting() {
		bv.ReplaceBlock(nb, eng.dst)
	}

	return n, nil
}

func materializeGapBlock(gb bitset.GapBlock, dst []uint32) {
	cur := gb.StartsSet
	pos := 0

	for _, end := range gb.Ends {
		if cur {
			for p := pos; p <= int(end); p++ {
				dst[p>>5] |= 1 << uint(p&31)
			}
		}
		pos = int(end) + 1
		cur = !cur
	}
}

// applyMonoRunBounded applies op across [nb, nb+run) of a zero_blocks
// or one_blocks token without decoding anything: the stream's
// contribution at every block in the run is the constant all-zero or
// all-one block, so each step is resolved by formula against the
// target's existing popcount rather than materializing 2048 constant
// words per block. run is assumed already clamped to any active range
// bound.
func (eng *Engine) applyMonoRunBounded(bv *bitset.BitVector, nb, run uint64, allOne bool, op Op) uint64 {
	var total uint64
	for i := uint64(0); i < run; i++ {
		total += eng.applyMonoBlock(bv, nb+i, allOne, op)
	}

	return total
}

func (eng *Engine) applyMonoBlock(bv *bitset.BitVector, nb uint64, allOne bool, op Op) uint64 {
	targetCard := bv.BlockCardinality(nb)

	switch op {
	case Assign, Or:
		if allOne {
			bv.SetAllSetBlock(nb)
		}
		// zero run: OR with 0 leaves target unchanged.
	case And:
		if !allOne {
			bv.ClearBlock(nb)
		}
		// one run: AND with all-ones leaves target unchanged.
	case Xor:
		if allOne {
			bv.InvertBlock(nb)
		}
		// zero run: XOR with 0 leaves target unchanged.
	case Sub:
		if allOne {
			bv.ClearBlock(nb)
		}
		// zero run: A - 0 leaves target unchanged.
	case Count, CountB:
		if allOne {
			return bitset.BlockBits
		}

		return 0
	case CountA:
		return uint64(targetCard)
	case CountAnd:
		if allOne {
			return uint64(targetCard)
		}

		return 0
	case CountOr:
		if allOne {
			return bitset.BlockBits
		}

		return uint64(targetCard)
	case CountXor:
		if allOne {
			return bitset.BlockBits - uint64(targetCard)
		}

		return uint64(targetCard)
	case CountSubAB:
		if allOne {
			return 0
		}

		return uint64(targetCard)
	case CountSubBA:
		if allOne {
			return bitset.BlockBits - uint64(targetCard)
		}

		return 0
	}

	return 0
}

// finalize applies the tail rule when the stream ends before the
// target's occupied block space: AND/ASSIGN zero the remainder,
// COUNT_A/COUNT_OR/COUNT_XOR/COUNT_SUB_AB count the remaining target
// bits, everything else leaves the target untouched.
func (eng *Engine) finalize(bv *bitset.BitVector, lastNb uint64, op Op, stopAtBlock *uint64, running *uint64) {
	if stopAtBlock != nil {
		return
	}

	maxNb := bv.MaxBlockIndex()
	if bv.IsEmpty() || lastNb > maxNb {
		return
	}

	switch op {
	case And, Assign:
		for nb := lastNb; nb <= maxNb; nb++ {
			bv.ClearBlock(nb)
		}
	case CountA, CountOr, CountXor, CountSubAB:
		for nb := lastNb; nb <= maxNb; nb++ {
			*running += uint64(bv.BlockCardinality(nb))
		}
	}
}

// combineDense is the plain-Go word-by-word combine used by
// applyGapBlock once its run-length form is dense. The stream package's
// GetBitBlock fusion uses its own combine, not this one.
func combineDense(dst, src []uint32, op Op) uint64 {
	switch op {
	case Assign, Or:
		for i := range dst {
			dst[i] |= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case And:
		for i := range dst {
			dst[i] &= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Xor:
		for i := range dst {
			dst[i] ^= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Sub:
		for i := range dst {
			dst[i] &^= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Count, CountB:
		return uint64(bitset.PopCount(src))
	case CountA:
		return uint64(bitset.PopCount(dst))
	default:
		return uint64(countOpDense(dst, src, op))
	}
}

func countOpDense(a, b []uint32, op Op) int {
	n := 0
	for i := range a {
		switch op {
		case CountAnd:
			n += bits.OnesCount32(a[i] & b[i])
		case CountOr:
			n += bits.OnesCount32(a[i] | b[i])
		case CountXor:
			n += bits.OnesCount32(a[i] ^ b[i])
		case CountSubAB:
			n += bits.OnesCount32(a[i] &^ b[i])
		case CountSubBA:
			n += bits.OnesCount32(b[i] &^ a[i])
		}
	}

	return n
}
