package codec

import (
	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/internal/bitio"
	"github.com/Aurora-Community/BitMagic/internal/pool"
	"github.com/Aurora-Community/BitMagic/wire"
)

// BlockEncoder emits the tag-framed block-token sequence for a
// bit-vector: zero/one run detection, the high-bit zero-run shortcut,
// and per-block classification and dispatch (C4).
type BlockEncoder struct {
	Level     int
	GapLevels format.GapLevels

	scratchBlock []uint32
	indexScratch []uint16

	releaseBlock func()
	releaseIndex func()
}

// NewBlockEncoder creates a block encoder at the given compression
// level, used to choose between BIC and Elias-gamma candidate families.
// Its scratch buffers come from internal/pool; callers should defer
// Close once the encoder goes out of use to return them.
func NewBlockEncoder(level int, gapLevels format.GapLevels) *BlockEncoder {
	scratchBlock, releaseBlock := pool.GetBitBlock()
	indexScratch, releaseIndex := pool.GetGapBlock(0)

	return &BlockEncoder{
		Level:        level,
		GapLevels:    gapLevels,
		scratchBlock: scratchBlock,
		indexScratch: indexScratch[:0],
		releaseBlock: releaseBlock,
		releaseIndex: releaseIndex,
	}
}

// Close returns the encoder's scratch buffers to their pools. Safe to
// call once per encoder; the encoder must not be used afterward.
func (c *BlockEncoder) Close() {
	c.releaseBlock()
	c.releaseIndex()
}

// EncodeAll walks blocks 0..maxBlock of bv in increasing order, emitting
// run tokens for uniform stretches and a classified token for every
// mixed block. Beyond maxBlock a BitVector's content is implicitly zero
// forever, so the stream always terminates with set_block_azero rather
// than set_block_end — a one-run that reaches maxBlock is still only
// "one up to here", never "one forever", so it is emitted as a sized
// run like any other and never collapses to set_block_aone (that tag
// is reserved for streams that genuinely claim an unbounded one-tail,
// which plain serialization of a finite bit-vector never does). In
// destructive mode each block's source bits are cleared right after its
// token is emitted.
func (c *BlockEncoder) EncodeAll(e *wire.Encoder, bv *bitset.BitVector, maxBlock uint64, destructive bool) {
	nb := uint64(0)

	for nb <= maxBlock {
		if bv.IsBlockEmpty(nb) {
			run, reachesEnd := countRun(nb, maxBlock, bv.IsBlockEmpty)
			if reachesEnd {
				e.PutU8(uint8(format.TagAZero))
				return
			}

			emitRun(e, run, true)
			nb += run

			continue
		}

		if bv.IsBlockAllOne(nb) {
			run, _ := countRun(nb, maxBlock, bv.IsBlockAllOne)
			if destructive {
				for i := uint64(0); i < run; i++ {
					bv.ClearBlock(nb + i)
				}
			}

			emitRun(e, run, false)
			nb += run

			continue
		}

		for i := range c.scratchBlock {
			c.scratchBlock[i] = 0
		}
		bv.MaterializeBlock(nb, c.scratchBlock)
		c.encodeBitBlock(e, c.scratchBlock)

		if destructive {
			bv.ClearBlock(nb)
		}
		nb++
	}

	e.PutU8(uint8(format.TagAZero))
}

// countRun extends a run starting at nb for as long as pred holds,
// bounded by maxBlock, reporting whether the run reaches (or passes)
// the highest block index with any set bit — the "all remaining"
// condition that lets the caller emit azero instead of a sized zero-run
// token (one-runs are always emitted with their sized token).
func countRun(nb, maxBlock uint64, pred func(uint64) bool) (runLen uint64, reachesEnd bool) {
	start := nb
	for nb <= maxBlock && pred(nb) {
		nb++
	}

	return nb - start, nb > maxBlock
}

func emitRun(e *wire.Encoder, runLen uint64, zero bool) {
	if zero && runLen > 1 && runLen < 128 {
		e.PutU8(0x80 | uint8(runLen))
		return
	}

	tag1, tag8, tag16, tag32, tag64 := runTags(zero)

	switch {
	case runLen == 1:
		e.PutU8(uint8(tag1))
	case runLen <= 0xFF:
		e.PutU8(uint8(tag8))
		e.PutU8(uint8(runLen))
	case runLen <= 0xFFFF:
		e.PutU8(uint8(tag16))
		e.PutU16(uint16(runLen))
	case runLen <= 0xFFFFFFFF:
		e.PutU8(uint8(tag32))
		e.PutU32(uint32(runLen))
	default:
		e.PutU8(uint8(tag64))
		e.PutU64(runLen)
	}
}

func runTags(zero bool) (tag1, tag8, tag16, tag32, tag64 format.Tag) {
	if zero {
		return format.Tag1Zero, format.Tag8Zero, format.Tag16Zero, format.Tag32Zero, format.Tag64Zero
	}

	return format.Tag1One, format.Tag8One, format.Tag16One, format.Tag32One, format.Tag64One
}

// encodeBitBlock classifies and emits one mixed (non-uniform) block.
func (c *BlockEncoder) encodeBitBlock(e *wire.Encoder, block []uint32) {
	st := ComputeStats(block)
	tag := Classify(block, st, c.Level)

	switch tag {
	case format.TagBit1Bit:
		idx := c.indexArray(block, false)
		e.PutU8(uint8(format.TagBit1Bit))
		e.PutU16(idx[0])
	case format.TagBit0Runs:
		encodeBit0Runs(e, block)
	case format.TagBitDigest0:
		encodeBitDigest0(e, block, st.Digest0)
	case format.TagArrBit:
		idx := c.indexArray(block, false)
		e.PutPrefixedU16Array(uint8(format.TagArrBit), idx, true)
	case format.TagArrBitInv:
		idx := c.indexArray(block, true)
		e.PutPrefixedU16Array(uint8(format.TagArrBitInv), idx, true)
	case format.TagGapBienc:
		c.encodeGapBienc(e, block, st)
	case format.TagGapEGamma:
		c.encodeGapEGamma(e, block, st)
	case format.TagArrGapBienc:
		c.encodeArrBienc(e, block, false, true)
	case format.TagArrGapBiencInv:
		c.encodeArrBienc(e, block, true, true)
	case format.TagArrBienc:
		c.encodeArrBienc(e, block, false, false)
	case format.TagArrBiencInv:
		c.encodeArrBienc(e, block, true, false)
	case format.TagArrGapEGamma:
		c.encodeArrEGamma(e, block, false)
	case format.TagArrGapEGammaInv:
		c.encodeArrEGamma(e, block, true)
	case format.TagBitGapBienc:
		c.encodeBitGapBienc(e, block, st)
	default: // format.TagBit, or any fallback
		e.PutU8(uint8(format.TagBit))
		e.PutU32Array(block)
	}
}

func (c *BlockEncoder) indexArray(block []uint32, inv bool) []uint16 {
	c.indexScratch = c.indexScratch[:0]
	if inv {
		c.indexScratch = bitset.ToSortedIndicesInv(block, c.indexScratch)
	} else {
		c.indexScratch = bitset.ToSortedIndices(block, c.indexScratch)
	}

	return c.indexScratch
}

func encodeBit0Runs(e *wire.Encoder, block []uint32) {
	startNonzero := block[0] != 0
	e.PutU8(uint8(format.TagBit0Runs))
	e.PutU8(boolByte(startNonzero))

	runLen := 0
	curNonzero := startNonzero
	runStart := 0

	flush := func(end int) {
		if runLen == 0 {
			return
		}
		e.PutU16(uint16(runLen))
		if curNonzero {
			e.PutU32Array(block[runStart:end])
		}
	}

	for i, w := range block {
		nz := w != 0
		if nz != curNonzero {
			flush(i)
			curNonzero = nz
			runStart = i
			runLen = 0
		}
		runLen++
	}
	flush(len(block))
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}

func encodeBitDigest0(e *wire.Encoder, block []uint32, digest uint64) {
	e.PutU8(uint8(format.TagBitDigest0))
	e.PutU64(digest)

	const waveWords = bitset.BlockWords / 64
	for wave := range 64 {
		if digest&(uint64(1)<<uint(wave)) == 0 {
			continue
		}
		start := wave * waveWords
		e.PutU32Array(block[start : start+waveWords])
	}
}

// gapHeaderWord packs the GapBlock's start-bit flag in bit 0 and the
// encoded body length (run-endpoint count excluding the always-implied
// final 65535 sentinel, capped to 15 bits) in bits 1..15.
func gapHeaderWord(g bitset.GapBlock) uint16 {
	bodyLen := g.Len() - 1
	if bodyLen > 0x7FFF {
		bodyLen = 0x7FFF
	}

	h := uint16(bodyLen) << 1
	if g.StartsSet {
		h |= 1
	}

	return h
}

func unpackGapHeader(h uint16) (startsSet bool, bodyLen int) {
	return h&1 != 0, int(h >> 1)
}

func (c *BlockEncoder) encodeGapBienc(e *wire.Encoder, block []uint32, _ Stats) {
	ends := bitset.ToGapBlock(block, c.indexScratch[:0])
	c.indexScratch = ends.Ends
	body := ends.Ends[:len(ends.Ends)-1] // final 65535 sentinel is implied

	startPos := e.Pos()
	e.PutU8(uint8(format.TagGapBienc))
	e.PutU16(gapHeaderWord(ends))
	e.PutU16(0) // min

	w := bitio.NewWriter(e)
	bitio.EncodeBIC[uint16](w, body, 0, bitset.BlockBits-2)
	w.Flush()

	if e.Pos()-startPos > plainGapBytes(len(body)) {
		e.SetPos(startPos)
		encodePlainGap(e, ends, body)
	}
}

func (c *BlockEncoder) encodeGapEGamma(e *wire.Encoder, block []uint32, _ Stats) {
	ends := bitset.ToGapBlock(block, c.indexScratch[:0])
	c.indexScratch = ends.Ends
	body := ends.Ends[:len(ends.Ends)-1]

	startPos := e.Pos()
	e.PutU8(uint8(format.TagGapEGamma))
	e.PutU16(gapHeaderWord(ends))

	w := bitio.NewWriter(e)
	encodeDeltaGamma(w, body)
	w.Flush()

	if e.Pos()-startPos > plainGapBytes(len(body)) {
		e.SetPos(startPos)
		encodePlainGap(e, ends, body)
	}
}

// plainGapBytes is the byte cost of the plain gap fallback (tag +
// header word + raw u16 run endpoints), the baseline gap_bienc and
// gap_egamma must beat or be rolled back per the spec's cost-monotonicity
// property.
func plainGapBytes(n int) int {
	return 1 + 2 + n*2
}

func encodePlainGap(e *wire.Encoder, g bitset.GapBlock, body []uint16) {
	e.PutU8(uint8(format.TagGap))
	e.PutU16(gapHeaderWord(g))
	e.PutU16Array(body)
}

func (c *BlockEncoder) encodeBitGapBienc(e *wire.Encoder, block []uint32, _ Stats) {
	ends := bitset.ToGapBlock(block, c.indexScratch[:0])
	c.indexScratch = ends.Ends
	body := ends.Ends[:len(ends.Ends)-1]

	startPos := e.Pos()
	e.PutU8(uint8(format.TagBitGapBienc))
	e.PutU8(boolByte(ends.StartsSet))
	e.PutU16(uint16(len(body)))
	e.PutU16(0) // min

	w := bitio.NewWriter(e)
	bitio.EncodeBIC[uint16](w, body, 0, bitset.BlockBits-2)
	w.Flush()

	if e.Pos()-startPos > plainGapBytes(len(body)) {
		e.SetPos(startPos)
		encodePlainGap(e, ends, body)
	}
}

// encodeArrBienc BIC-codes the sorted set-bit index array (or its
// complement for inv) relative to its own [min, max] bounds. gapFramed
// selects arrgap_bienc's wire shape (sz stored via gamma) over
// arr_bienc's (sz stored as a fixed u16) — the two classifier paths
// share one BIC payload format and differ only in how sz is framed.
func (c *BlockEncoder) encodeArrBienc(e *wire.Encoder, block []uint32, inv, gapFramed bool) {
	idx := c.indexArray(block, inv)
	minV, maxV := idx[0], idx[len(idx)-1]

	var tag format.Tag
	switch {
	case gapFramed && inv:
		tag = format.TagArrGapBiencInv
	case gapFramed:
		tag = format.TagArrGapBienc
	case inv:
		tag = format.TagArrBiencInv
	default:
		tag = format.TagArrBienc
	}

	startPos := e.Pos()
	e.PutU8(uint8(tag))
	e.PutU16(minV)
	e.PutU16(maxV)

	w := bitio.NewWriter(e)
	if gapFramed {
		w.Gamma(uint32(len(idx)) + 1)
	} else {
		e.PutU16(uint16(len(idx)))
	}

	bitio.EncodeBIC[uint16](w, idx, minV, maxV)
	w.Flush()

	if e.Pos()-startPos > plainArrayBytes(len(idx)) {
		e.SetPos(startPos)
		plainTag := format.TagArrBit
		if inv {
			plainTag = format.TagArrBitInv
		}
		e.PutPrefixedU16Array(uint8(plainTag), idx, true)
	}
}

// plainArrayBytes is the byte cost of the plain arrbit/arrbit_inv
// fallback (tag + u16 count + n u16 positions), the baseline a
// speculative BIC/gamma encoding must beat or be rolled back.
func plainArrayBytes(n int) int {
	return 1 + 2 + n*2
}

func (c *BlockEncoder) encodeArrEGamma(e *wire.Encoder, block []uint32, inv bool) {
	idx := c.indexArray(block, inv)

	tag := format.TagArrGapEGamma
	if inv {
		tag = format.TagArrGapEGammaInv
	}

	startPos := e.Pos()
	e.PutU8(uint8(tag))

	w := bitio.NewWriter(e)
	w.Gamma(uint32(len(idx)) + 1)
	encodeDeltaGamma(w, idx)
	w.Flush()

	if e.Pos()-startPos > plainArrayBytes(len(idx)) {
		e.SetPos(startPos)
		plainTag := format.TagArrBit
		if inv {
			plainTag = format.TagArrBitInv
		}
		e.PutPrefixedU16Array(uint8(plainTag), idx, true)
	}
}

// encodeDeltaGamma gamma-codes a strictly increasing sequence as its
// first value (offset by one, since gamma requires v >= 1) followed by
// successive deltas (already >= 1 by the strictly-increasing invariant).
func encodeDeltaGamma[T ~uint16](w *bitio.Writer, vals []T) {
	if len(vals) == 0 {
		return
	}

	w.Gamma(uint32(vals[0]) + 1)
	for i := 1; i < len(vals); i++ {
		w.Gamma(uint32(vals[i] - vals[i-1]))
	}
}
