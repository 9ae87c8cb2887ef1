package codec

import (
	"fmt"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/errs"
	"github.com/Aurora-Community/BitMagic/format"
	"github.com/Aurora-Community/BitMagic/internal/bitio"
	"github.com/Aurora-Community/BitMagic/internal/pool"
	"github.com/Aurora-Community/BitMagic/wire"
)

// BlockDecoder walks a token-framed block stream and merges each
// decoded block into a target bit-vector (always additive: logical OR
// with any existing content), or performs a dry read when dst is nil
// (C5).
type BlockDecoder struct {
	scratchBlock []uint32
	indexScratch []uint16
	scratchVec   *bitset.BitVector

	releaseBlock func()
	releaseIndex func()
}

// NewBlockDecoder creates a block decoder with its own reusable scratch,
// acquired from internal/pool. Callers should defer Close once the
// decoder goes out of use to return the scratch buffers to their pools.
func NewBlockDecoder() *BlockDecoder {
	scratchBlock, releaseBlock := pool.GetBitBlock()
	indexScratch, releaseIndex := pool.GetBICIndexArray(pool.GapWords)

	return &BlockDecoder{
		scratchBlock: scratchBlock,
		indexScratch: indexScratch[:0],
		scratchVec:   bitset.NewBitVector(),
		releaseBlock: releaseBlock,
		releaseIndex: releaseIndex,
	}
}

// Close returns the decoder's scratch buffers to their pools. Safe to
// call once per decoder; the decoder must not be used afterward.
func (bd *BlockDecoder) Close() {
	bd.releaseBlock()
	bd.releaseIndex()
}

// DecodeBlockDense decodes one non-run, non-GAP token's payload into
// dst (len(dst) == BlockWords), without merging into any bit-vector.
// Used by the stream iterator to fuse a set-algebra operation with
// decode rather than materializing through a bit-vector merge.
func (bd *BlockDecoder) DecodeBlockDense(d *wire.Decoder, tag format.Tag, dst []uint32) error {
	bd.scratchVec.ClearBlock(0)
	if err := bd.decodeBitBlock(d, bd.scratchVec, 0, tag); err != nil {
		return err
	}

	for i := range dst {
		dst[i] = 0
	}
	bd.scratchVec.MaterializeBlock(0, dst)

	return nil
}

// DecodeGapBlock decodes a GAP-family token (gap, gap_egamma,
// gap_bienc, bitgap_bienc) into its bitset.GapBlock representation,
// for callers that need the run endpoints directly.
func (bd *BlockDecoder) DecodeGapBlock(d *wire.Decoder, tag format.Tag) (bitset.GapBlock, error) {
	if tag == format.TagBitGapBienc {
		gb, _, err := bd.parseBitGapBienc(d, false)
		return gb, err
	}

	gb, _, err := bd.parseGapFamily(d, tag, false)

	return gb, err
}

// DecodeAll reads tokens from d until set_block_end or an azero/aone
// sentinel, merging every decoded block into dst at its logical block
// index. If dst is nil, every block is a dry read (skip, no merge).
func (bd *BlockDecoder) DecodeAll(d *wire.Decoder, dst *bitset.BitVector) error {
	nb := uint64(0)

	for {
		tagByte, ok := d.GetU8()
		if !ok {
			return errs.ErrTruncatedStream
		}

		if runLen, ok := format.HighBitShortcut(tagByte); ok {
			nb += uint64(runLen)
			continue
		}

		tag := format.Tag(tagByte)
		if tag.Reserved() {
			return fmt.Errorf("%w: tag %d", errs.ErrReservedBlockTag, tag)
		}

		switch tag {
		case format.TagEnd:
			return nil
		case format.TagAZero:
			return nil
		case format.TagAOne:
			return bd.fillAllOne(dst, nb, ^uint64(0))
		case format.Tag1Zero, format.Tag8Zero, format.Tag16Zero, format.Tag32Zero, format.Tag64Zero:
			run, err := readRunLength(d, tag, true)
			if err != nil {
				return err
			}
			nb += run
		case format.Tag1One, format.Tag8One, format.Tag16One, format.Tag32One, format.Tag64One:
			run, err := readRunLength(d, tag, false)
			if err != nil {
				return err
			}
			if err := bd.fillAllOne(dst, nb, run); err != nil {
				return err
			}
			nb += run
		default:
			if err := bd.decodeBitBlock(d, dst, nb, tag); err != nil {
				return err
			}
			nb++
		}
	}
}

func (bd *BlockDecoder) fillAllOne(dst *bitset.BitVector, from, count uint64) error {
	if dst == nil {
		return nil
	}

	if count == ^uint64(0) {
		dst.SetAllSetBlock(from)
		return nil
	}

	for i := uint64(0); i < count; i++ {
		dst.SetAllSetBlock(from + i)
	}

	return nil
}

// ReadRunLength reads a sized run-length token's payload (tag byte
// already consumed), used by both DecodeAll and the stream iterator's
// Next.
func ReadRunLength(d *wire.Decoder, tag format.Tag) (uint64, error) {
	return readRunLength(d, tag, false)
}

func readRunLength(d *wire.Decoder, tag format.Tag, zero bool) (uint64, error) {
	switch tag {
	case format.Tag1Zero, format.Tag1One:
		return 1, nil
	case format.Tag8Zero, format.Tag8One:
		v, ok := d.GetU8()
		if !ok {
			return 0, errs.ErrTruncatedStream
		}
		return uint64(v), nil
	case format.Tag16Zero, format.Tag16One:
		v, ok := d.GetU16()
		if !ok {
			return 0, errs.ErrTruncatedStream
		}
		return uint64(v), nil
	case format.Tag32Zero, format.Tag32One:
		v, ok := d.GetU32()
		if !ok {
			return 0, errs.ErrTruncatedStream
		}
		return uint64(v), nil
	default: // Tag64Zero, Tag64One
		v, ok := d.GetU64()
		if !ok {
			return 0, errs.ErrTruncatedStream
		}
		return v, nil
	}
}

// decodeBitBlock reads one non-run token's payload and merges it into
// dst at block nb (or dry-reads it when dst is nil).
func (bd *BlockDecoder) decodeBitBlock(d *wire.Decoder, dst *bitset.BitVector, nb uint64, tag format.Tag) error {
	switch tag {
	case format.TagBit:
		return bd.decodeBit(d, dst, nb)
	case format.TagBit1Bit:
		pos, ok := d.GetU16()
		if !ok {
			return errs.ErrTruncatedStream
		}
		if dst != nil {
			dst.MergeBlockPositions(nb, []uint16{pos})
		}
		return nil
	case format.TagBit0Runs:
		return bd.decodeBit0Runs(d, dst, nb)
	case format.TagBitInterval:
		return bd.decodeBitInterval(d, dst, nb)
	case format.TagBitDigest0:
		return bd.decodeBitDigest0(d, dst, nb)
	case format.TagArrBit:
		return bd.decodeArrBit(d, dst, nb, false)
	case format.TagArrBitInv:
		return bd.decodeArrBit(d, dst, nb, true)
	case format.TagGap, format.TagGapEGamma, format.TagGapBienc:
		return bd.decodeGapFamily(d, dst, nb, tag)
	case format.TagArrGap, format.TagArrGapInv:
		return bd.decodeArrBit(d, dst, nb, tag == format.TagArrGapInv)
	case format.TagArrGapEGamma, format.TagArrGapEGammaInv:
		return bd.decodeArrEGamma(d, dst, nb, tag == format.TagArrGapEGammaInv)
	case format.TagArrGapBienc, format.TagArrGapBiencInv:
		return bd.decodeArrBienc(d, dst, nb, tag == format.TagArrGapBiencInv, true)
	case format.TagArrBienc, format.TagArrBiencInv:
		return bd.decodeArrBienc(d, dst, nb, tag == format.TagArrBiencInv, false)
	case format.TagBitGapBienc:
		return bd.decodeBitGapBienc(d, dst, nb)
	default:
		return fmt.Errorf("%w: tag %d", errs.ErrUnknownBlockTag, tag)
	}
}

func (bd *BlockDecoder) decodeBit(d *wire.Decoder, dst *bitset.BitVector, nb uint64) error {
	if dst == nil {
		if !d.GetU32AND(nil, bitset.BlockWords) {
			return errs.ErrTruncatedStream
		}
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}
	if !d.GetU32Array(bd.scratchBlock) {
		return errs.ErrTruncatedStream
	}
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) decodeBit0Runs(d *wire.Decoder, dst *bitset.BitVector, nb uint64) error {
	startByte, ok := d.GetU8()
	if !ok {
		return errs.ErrTruncatedStream
	}
	curNonzero := startByte != 0

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}

	filled := 0
	for filled < bitset.BlockWords {
		runLen16, ok := d.GetU16()
		if !ok {
			return errs.ErrTruncatedStream
		}
		runLen := int(runLen16)

		if curNonzero {
			if dst != nil {
				if !d.GetU32Array(bd.scratchBlock[filled : filled+runLen]) {
					return errs.ErrTruncatedStream
				}
			} else if !d.GetU32AND(nil, runLen) {
				return errs.ErrTruncatedStream
			}
		}

		filled += runLen
		curNonzero = !curNonzero
	}

	if dst != nil {
		dst.MergeBlockOR(nb, bd.scratchBlock)
	}

	return nil
}

func (bd *BlockDecoder) decodeBitInterval(d *wire.Decoder, dst *bitset.BitVector, nb uint64) error {
	head, ok := d.GetU16()
	if !ok {
		return errs.ErrTruncatedStream
	}
	tail, ok := d.GetU16()
	if !ok {
		return errs.ErrTruncatedStream
	}

	n := int(tail) - int(head) + 1
	if n < 0 {
		return fmt.Errorf("%w: bit_interval head > tail", errs.ErrSerialFormat)
	}

	if dst == nil {
		if !d.GetU32AND(nil, n) {
			return errs.ErrTruncatedStream
		}
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}
	if !d.GetU32Array(bd.scratchBlock[head : head+uint16(n)]) {
		return errs.ErrTruncatedStream
	}
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) decodeBitDigest0(d *wire.Decoder, dst *bitset.BitVector, nb uint64) error {
	digest, ok := d.GetU64()
	if !ok {
		return errs.ErrTruncatedStream
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}

	const waveWords = bitset.BlockWords / 64
	for wave := range 64 {
		if digest&(uint64(1)<<uint(wave)) == 0 {
			continue
		}

		start := wave * waveWords
		if dst == nil {
			if !d.GetU32AND(nil, waveWords) {
				return errs.ErrTruncatedStream
			}
			continue
		}

		if !d.GetU32Array(bd.scratchBlock[start : start+waveWords]) {
			return errs.ErrTruncatedStream
		}
	}

	if dst != nil {
		dst.MergeBlockOR(nb, bd.scratchBlock)
	}

	return nil
}

func (bd *BlockDecoder) decodeArrBit(d *wire.Decoder, dst *bitset.BitVector, nb uint64, inv bool) error {
	count, ok := d.GetU16()
	if !ok {
		return errs.ErrTruncatedStream
	}

	bd.indexScratch = ensureLen(bd.indexScratch, int(count))
	if !d.GetU16Array(bd.indexScratch) {
		return errs.ErrTruncatedStream
	}

	if dst == nil {
		return nil
	}

	if !inv {
		dst.MergeBlockPositions(nb, bd.indexScratch)
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0xFFFFFFFF
	}
	for _, p := range bd.indexScratch {
		bd.scratchBlock[p>>5] &^= uint32(1) << uint(p&31)
	}
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) decodeGapFamily(d *wire.Decoder, dst *bitset.BitVector, nb uint64, tag format.Tag) error {
	gb, dry, err := bd.parseGapFamily(d, tag, dst == nil)
	if err != nil {
		return err
	}
	if dry {
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}
	bitset.FromGapBlock(gb, bd.scratchBlock)
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

// parseGapFamily reads a gap/gap_egamma/gap_bienc token's payload into
// a bitset.GapBlock, or performs a dry read (skip, no allocation) when
// dryRead is set — dry is then true and the returned GapBlock is zero.
// Split out from decodeGapFamily so the stream iterator can fetch run
// endpoints directly without going through a bit-vector merge.
func (bd *BlockDecoder) parseGapFamily(d *wire.Decoder, tag format.Tag, dryRead bool) (gb bitset.GapBlock, dry bool, err error) {
	header, ok := d.GetU16()
	if !ok {
		return gb, false, errs.ErrTruncatedStream
	}
	startsSet, sz := unpackGapHeader(header)

	var ends []uint16

	switch tag {
	case format.TagGap:
		bd.indexScratch = ensureLen(bd.indexScratch, sz)
		if !d.GetU16Array(bd.indexScratch) {
			return gb, false, errs.ErrTruncatedStream
		}
		ends = bd.indexScratch
	case format.TagGapEGamma:
		r := bitio.NewReader(d)
		ends = ensureLen(bd.indexScratch, sz)
		if err := decodeDeltaGamma(r, ends); err != nil {
			return gb, false, err
		}
		bd.indexScratch = ends
	case format.TagGapBienc:
		if _, ok := d.GetU16(); !ok { // min, always 0 in this format
			return gb, false, errs.ErrTruncatedStream
		}
		r := bitio.NewReader(d)
		if dryRead {
			bitio.DecodeBICDry[uint16](r, sz, 0, bitset.BlockBits-2)
			return gb, true, nil
		}
		ends = bitio.DecodeBICArray[uint16](r, sz, 0, bitset.BlockBits-2)
	}

	if dryRead {
		return gb, true, nil
	}

	gb = bitset.GapBlock{StartsSet: startsSet, Ends: append(append([]uint16{}, ends...), bitset.BlockBits-1)}

	return gb, false, nil
}

func (bd *BlockDecoder) decodeArrEGamma(d *wire.Decoder, dst *bitset.BitVector, nb uint64, inv bool) error {
	r := bitio.NewReader(d)

	szPlus1, ok := r.Gamma()
	if !ok {
		return errs.ErrTruncatedStream
	}
	sz := int(szPlus1) - 1

	vals := ensureLen(bd.indexScratch, sz)
	if err := decodeDeltaGamma(r, vals); err != nil {
		return err
	}
	bd.indexScratch = vals

	if dst == nil {
		return nil
	}

	if !inv {
		dst.MergeBlockPositions(nb, vals)
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0xFFFFFFFF
	}
	for _, p := range vals {
		bd.scratchBlock[p>>5] &^= uint32(1) << uint(p&31)
	}
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) decodeArrBienc(d *wire.Decoder, dst *bitset.BitVector, nb uint64, inv, gapFramed bool) error {
	minV, ok := d.GetU16()
	if !ok {
		return errs.ErrTruncatedStream
	}
	maxV, ok := d.GetU16()
	if !ok {
		return errs.ErrTruncatedStream
	}

	var sz int
	var r *bitio.Reader

	if gapFramed {
		r = bitio.NewReader(d)
		szPlus1, ok := r.Gamma()
		if !ok {
			return errs.ErrTruncatedStream
		}
		sz = int(szPlus1) - 1
	} else {
		szU16, ok := d.GetU16()
		if !ok {
			return errs.ErrTruncatedStream
		}
		sz = int(szU16)
		r = bitio.NewReader(d)
	}

	if dst == nil {
		bitio.DecodeBICDry[uint16](r, sz, minV, maxV)
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}

	if !inv {
		bitio.DecodeBICBits(r, bd.scratchBlock, sz, minV, maxV)
		dst.MergeBlockOR(nb, bd.scratchBlock)
		return nil
	}

	idx := bitio.DecodeBICArray[uint16](r, sz, minV, maxV)
	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0xFFFFFFFF
	}
	for _, p := range idx {
		bd.scratchBlock[p>>5] &^= uint32(1) << uint(p&31)
	}
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) decodeBitGapBienc(d *wire.Decoder, dst *bitset.BitVector, nb uint64) error {
	gb, dry, err := bd.parseBitGapBienc(d, dst == nil)
	if err != nil {
		return err
	}
	if dry {
		return nil
	}

	for i := range bd.scratchBlock {
		bd.scratchBlock[i] = 0
	}
	bitset.FromGapBlock(gb, bd.scratchBlock)
	dst.MergeBlockOR(nb, bd.scratchBlock)

	return nil
}

func (bd *BlockDecoder) parseBitGapBienc(d *wire.Decoder, dryRead bool) (gb bitset.GapBlock, dry bool, err error) {
	startByte, ok := d.GetU8()
	if !ok {
		return gb, false, errs.ErrTruncatedStream
	}
	sz, ok := d.GetU16()
	if !ok {
		return gb, false, errs.ErrTruncatedStream
	}
	if _, ok := d.GetU16(); !ok { // min, always 0 in this format
		return gb, false, errs.ErrTruncatedStream
	}

	r := bitio.NewReader(d)

	if dryRead {
		bitio.DecodeBICDry[uint16](r, int(sz), 0, bitset.BlockBits-2)
		return gb, true, nil
	}

	ends := bitio.DecodeBICArray[uint16](r, int(sz), 0, bitset.BlockBits-2)
	gb = bitset.GapBlock{StartsSet: startByte != 0, Ends: append(ends, bitset.BlockBits-1)}

	return gb, false, nil
}

func ensureLen(s []uint16, n int) []uint16 {
	if cap(s) >= n {
		return s[:n]
	}

	return make([]uint16, n)
}

// decodeDeltaGamma is the inverse of encodeDeltaGamma: reads len(dst)
// gamma codes and reconstructs the strictly increasing sequence into dst.
func decodeDeltaGamma(r *bitio.Reader, dst []uint16) error {
	if len(dst) == 0 {
		return nil
	}

	first, ok := r.Gamma()
	if !ok {
		return errs.ErrTruncatedStream
	}
	dst[0] = uint16(first - 1)

	for i := 1; i < len(dst); i++ {
		delta, ok := r.Gamma()
		if !ok {
			return errs.ErrTruncatedStream
		}
		dst[i] = dst[i-1] + uint16(delta)
	}

	return nil
}
