package bitio

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// EncodeBIC writes a strictly increasing sequence arr using the binary
// interpolative coder, center-minimal variant: given arr[0..sz) with
// lo <= arr[i] <= hi, it picks mid = sz/2, encodes v = arr[mid] relative
// to its range, then recurses on the two halves. The low half is walked
// by an explicit loop (tail-call elimination); the high half uses a real
// recursive call, matching the bounded O(log sz) stack depth of the
// block codec's block size.
func EncodeBIC[T constraints.Unsigned](w *Writer, arr []T, lo, hi T) {
	encodeBIC(w, arr, uint64(lo), uint64(hi))
}

func encodeBIC[T constraints.Unsigned](w *Writer, arr []T, lo, hi uint64) {
	sz := len(arr)

	for sz > 0 {
		mid := sz / 2
		v := uint64(arr[mid])

		nRange := hi - lo + 1
		r := nRange - uint64(sz)
		if r > 0 {
			x := v - lo - uint64(mid)
			putCenteredMinimal(w, x, r)
		}

		if mid+1 < sz {
			encodeBIC(w, arr[mid+1:sz], v+1, hi)
		}

		hi = v - 1
		sz = mid
		arr = arr[:mid]
	}
}

// DecodeBICArray decodes sz values into a freshly-built slice, inverting
// EncodeBIC given the same (lo, hi, sz) triple the caller recovers from
// surrounding block-token context.
func DecodeBICArray[T constraints.Unsigned](r *Reader, sz int, lo, hi T) []T {
	dest := make([]T, sz)
	decodeBICArray(r, dest, uint64(lo), uint64(hi))

	return dest
}

func decodeBICArray[T constraints.Unsigned](r *Reader, dest []T, lo, hi uint64) {
	sz := len(dest)

	for sz > 0 {
		mid := sz / 2
		v := decodeBICStep(r, sz, lo, hi)
		dest[mid] = T(v)

		if mid+1 < sz {
			decodeBICArray(r, dest[mid+1:sz], v+1, hi)
		}

		hi = v - 1
		sz = mid
		dest = dest[:mid]
	}
}

// DecodeBICBits decodes sz values and sets each one's bit directly in a
// dense 2048-word block, skipping the intermediate index array.
func DecodeBICBits(r *Reader, blk []uint32, sz int, lo, hi uint16) {
	decodeBICBits(r, blk, sz, uint64(lo), uint64(hi))
}

func decodeBICBits(r *Reader, blk []uint32, sz int, lo, hi uint64) {
	for sz > 0 {
		mid := sz / 2
		v := decodeBICStep(r, sz, lo, hi)
		blk[v>>5] |= uint32(1) << uint(v&31)

		if mid+1 < sz {
			decodeBICBits(r, blk, sz-mid-1, v+1, hi)
		}

		hi = v - 1
		sz = mid
	}
}

// DecodeBICDry consumes the bits of a BIC-coded sequence without storing
// the recovered values anywhere, used when a caller only needs to skip
// past a block it does not intend to materialize.
func DecodeBICDry[T constraints.Unsigned](r *Reader, sz int, lo, hi T) {
	decodeBICDry(r, sz, uint64(lo), uint64(hi))
}

func decodeBICDry(r *Reader, sz int, lo, hi uint64) {
	for sz > 0 {
		mid := sz / 2
		v := decodeBICStep(r, sz, lo, hi)

		if mid+1 < sz {
			decodeBICDry(r, sz-mid-1, v+1, hi)
		}

		hi = v - 1
		sz = mid
	}
}

// decodeBICStep reads the value at the current recursion's mid position;
// shared by all three decode variants so their traversal stays identical
// to encodeBIC's.
func decodeBICStep(r *Reader, sz int, lo, hi uint64) uint64 {
	mid := sz / 2
	nRange := hi - lo + 1
	rr := nRange - uint64(sz)

	if rr == 0 {
		return lo + uint64(mid)
	}

	x := getCenteredMinimal(r, rr)

	return x + lo + uint64(mid)
}

// putCenteredMinimal writes x in [0, r] using the minimal number of bits
// needed to distinguish n = r+1 possibilities, placing the shorter
// (b-bit) codewords at the center of the range rather than at one edge.
func putCenteredMinimal(w *Writer, x, r uint64) {
	n := r + 1
	b := bits.Len64(n) - 1
	c := (uint64(1) << uint(b+1)) - n
	offset := centerOffset(r, c, n)

	y := (x + n - offset) % n
	putTruncated(w, y, c, b)
}

func getCenteredMinimal(r *Reader, rangeWidth uint64) uint64 {
	n := rangeWidth + 1
	b := bits.Len64(n) - 1
	c := (uint64(1) << uint(b+1)) - n
	offset := centerOffset(rangeWidth, c, n)

	y := getTruncated(r, c, b)

	return (y + offset) % n
}

// centerOffset computes how many values at the low end of [0, r] precede
// the centered short-codeword region, so encode/decode can rotate the
// truncated-binary code into place.
func centerOffset(r, c, n uint64) uint64 {
	halfC := int64(c) / 2
	halfR := int64(r) / 2
	nOdd := int64(n & 1)

	lowCount := halfR - halfC - nOdd + 1
	if lowCount < 0 {
		lowCount = 0
	}
	if uint64(lowCount) > n {
		lowCount = int64(n)
	}

	return uint64(lowCount)
}

// putTruncated writes y in [0, c+longCount) using the classic truncated
// binary code: the first c values take b bits, the rest take b+1.
func putTruncated(w *Writer, y, c uint64, b int) {
	if y < c {
		w.PutBits(uint32(y), b)
		return
	}

	w.PutBits(uint32(y+c), b+1)
}

func getTruncated(r *Reader, c uint64, b int) uint64 {
	first, ok := r.GetBits(b)
	if !ok {
		return 0
	}

	if uint64(first) < c {
		return uint64(first)
	}

	extra, ok := r.GetBits(1)
	if !ok {
		return 0
	}

	code := uint64(first)*2 + uint64(extra)

	return code - c
}
