// Package codec implements the per-block classifier, encoder, and
// decoder (C3/C4/C5): it chooses one of the block-type table's ~20
// encodings for a 65536-bit block, emits the bit-exact byte stream for
// the chosen encoding, and inverts that process on read.
package codec

import (
	"math/bits"

	"github.com/Aurora-Community/BitMagic/bitset"
	"github.com/Aurora-Community/BitMagic/format"
)

// Stats holds the on-demand block statistics the classifier's cost
// table is built from.
type Stats struct {
	Digest0     uint64
	Popcount    int
	BitGaps     int
	NonzeroSize int // bytes the bit_0runs encoding would need
}

// ComputeStats gathers the statistics a classification at any
// compression level might need. Cheap relative to the encode it guards.
func ComputeStats(block []uint32) Stats {
	return Stats{
		Digest0:     bitset.Digest0(block),
		Popcount:    bitset.PopCount(block),
		BitGaps:     bitset.BitGaps(block),
		NonzeroSize: nonzeroRunsSize(block),
	}
}

// nonzeroRunsSize returns the byte count of the bit_0runs encoding: one
// start-flag byte, then for each alternating zero/nonzero word run a u16
// length, with nonzero runs additionally carrying their raw words.
func nonzeroRunsSize(block []uint32) int {
	size := 1 // start-flag byte

	runLen := 0
	curNonzero := false
	first := true

	flush := func() {
		if runLen == 0 {
			return
		}
		size += 2
		if curNonzero {
			size += runLen * 4
		}
	}

	for _, w := range block {
		nz := w != 0
		if first {
			curNonzero = nz
			first = false
		}

		if nz != curNonzero {
			flush()
			curNonzero = nz
			runLen = 0
		}
		runLen++
	}
	flush()

	return size
}

// candidate pairs a tag with its estimated bit cost. Only eligible
// encodings are ever added to the candidate list that best() scans.
type candidate struct {
	tag  format.Tag
	cost int
}

// Classify picks the minimum-cost model for block at compression level
// in [0, 5], following the insertion-order tie-break: bit is the first
// candidate added, so it wins ties against every later entry.
func Classify(block []uint32, st Stats, level int) format.Tag {
	if st.Digest0 == 0 {
		return format.TagAZero
	}
	if st.Popcount == bitset.BlockBits {
		return format.TagAOne
	}

	cands := make([]candidate, 0, 12)
	cands = append(cands, candidate{format.TagBit, bitset.BlockBits})

	if level <= 1 {
		return best(cands)
	}

	if st.Popcount == 1 {
		cands = append(cands, candidate{format.TagBit1Bit, 16})
	}

	cands = append(cands, candidate{format.TagBit0Runs, 8 * st.NonzeroSize})

	waves := bits.OnesCount64(st.Digest0)
	digestCostBytes := 8 + 32*waves*4
	cands = append(cands, candidate{format.TagBitDigest0, digestCostBytes * 8})

	cands = append(cands, candidate{format.TagArrBit, 8 * (2 + 2*st.Popcount)})
	cands = append(cands, candidate{format.TagArrBitInv, 8 * (2 + 2*(bitset.BlockBits-st.Popcount))})

	invPopcount := bitset.BlockBits - st.Popcount

	if level >= 5 {
		if st.BitGaps >= 1 {
			cands = append(cands, candidate{format.TagGapBienc, 32 + (st.BitGaps-1)*4})
		}
		if st.Popcount < st.BitGaps {
			cands = append(cands, candidate{format.TagArrGapBienc, 48 + st.Popcount*4})
		}
		if invPopcount < st.BitGaps {
			cands = append(cands, candidate{format.TagArrGapBiencInv, 48 + invPopcount*4})
		}
		cands = append(cands, candidate{format.TagArrBienc, 48 + st.Popcount*4})
		cands = append(cands, candidate{format.TagArrBiencInv, 48 + invPopcount*4})
		if st.BitGaps >= 2 {
			cands = append(cands, candidate{format.TagBitGapBienc, 64 + (st.BitGaps-2)*4})
		}
	} else {
		const egammaBitsPerInt = 6
		if st.BitGaps >= 1 {
			cands = append(cands, candidate{format.TagGapEGamma, 32 + (st.BitGaps-1)*egammaBitsPerInt})
		}
		if st.Popcount < st.BitGaps {
			cands = append(cands, candidate{format.TagArrGapEGamma, 48 + st.Popcount*egammaBitsPerInt})
		}
		if invPopcount < st.BitGaps {
			cands = append(cands, candidate{format.TagArrGapEGammaInv, 48 + invPopcount*egammaBitsPerInt})
		}
	}

	return best(cands)
}

func best(cands []candidate) format.Tag {
	bestIdx := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].cost < cands[bestIdx].cost {
			bestIdx = i
		}
	}

	return cands[bestIdx].tag
}
