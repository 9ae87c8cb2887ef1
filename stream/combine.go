package stream

import (
	"math/bits"

	"github.com/Aurora-Community/BitMagic/bitset"
)

// combine fuses a freshly decoded dense block (src) into dst per op,
// returning the popcount a caller accumulates for a COUNT* operation.
// dst == nil is a valid dry read: only src's own popcount (or the
// cross-set popcount against a conceptually absent dst) is computed,
// without writing anywhere.
func combine(dst []uint32, src []uint32, op Op) uint64 {
	switch op {
	case Assign, Or:
		if dst == nil {
			return uint64(bitset.PopCount(src))
		}
		for i := range dst {
			dst[i] |= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case And:
		if dst == nil {
			return 0
		}
		for i := range dst {
			dst[i] &= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Xor:
		if dst == nil {
			return uint64(bitset.PopCount(src))
		}
		for i := range dst {
			dst[i] ^= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Sub:
		if dst == nil {
			return 0
		}
		for i := range dst {
			dst[i] &^= src[i]
		}

		return uint64(bitset.PopCount(dst))
	case Count, CountB:
		return uint64(bitset.PopCount(src))
	case CountA:
		if dst == nil {
			return 0
		}

		return uint64(bitset.PopCount(dst))
	case CountAnd:
		return uint64(popCountAnd(dst, src))
	case CountOr:
		return uint64(popCountOr(dst, src))
	case CountXor:
		return uint64(popCountXor(dst, src))
	case CountSubAB:
		return uint64(popCountSub(dst, src))
	case CountSubBA:
		return uint64(popCountSub(src, dst))
	default:
		return 0
	}
}

func popCountAnd(a, b []uint32) int {
	if a == nil || b == nil {
		return 0
	}
	n := 0
	for i := range a {
		n += bits.OnesCount32(a[i] & b[i])
	}

	return n
}

func popCountOr(a, b []uint32) int {
	if a == nil {
		return bitset.PopCount(b)
	}
	if b == nil {
		return bitset.PopCount(a)
	}
	n := 0
	for i := range a {
		n += bits.OnesCount32(a[i] | b[i])
	}

	return n
}

func popCountXor(a, b []uint32) int {
	if a == nil {
		return bitset.PopCount(b)
	}
	if b == nil {
		return bitset.PopCount(a)
	}
	n := 0
	for i := range a {
		n += bits.OnesCount32(a[i] ^ b[i])
	}

	return n
}

func popCountSub(a, b []uint32) int {
	if a == nil {
		return 0
	}
	if b == nil {
		return bitset.PopCount(a)
	}
	n := 0
	for i := range a {
		n += bits.OnesCount32(a[i] &^ b[i])
	}

	return n
}
