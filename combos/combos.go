// Package combos holds the bit-vector representation shared by outcomes and
// bets, and the deterministic subset enumeration used to build both.
package combos

import (
	"math/bits"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// MaxSelections is the largest number of selections we will enumerate.
// 2^24 outcomes already take a few hundred megabytes once the incidence
// index is built.
const MaxSelections = 24

// Mask is a bit-vector over selections. Bit i is set if selection i is part
// of the bet (or occurred, for an outcome).
type Mask uint64

// FromIndices builds a mask with the given selection indices set.
func FromIndices(idxs []int) Mask {
	var m Mask
	for _, i := range idxs {
		m |= 1 << uint(i)
	}
	return m
}

// Has returns true if selection i is set.
func (m Mask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

// Size is the popcount of the mask.
func (m Mask) Size() int {
	return bits.OnesCount64(uint64(m))
}

// SubsetOf returns true if every bit in m is also set in other.
func (m Mask) SubsetOf(other Mask) bool {
	return m&other == m
}

// Indices returns the set bits in ascending order.
func (m Mask) Indices() []int {
	idxs := make([]int, 0, m.Size())
	for v := uint64(m); v != 0; v &= v - 1 {
		idxs = append(idxs, bits.TrailingZeros64(v))
	}
	return idxs
}

// String renders the mask as n characters of 0/1, selection 0 first.
func (m Mask) String(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		if m.Has(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Count returns the number of masks ForEach visits for sizes lo..hi of n.
func Count(n, lo, hi int) int {
	total := 0
	for k := lo; k <= hi; k++ {
		total += combin.Binomial(n, k)
	}
	return total
}

// ForEach calls fn for every subset of {0..n-1} with size between lo and hi
// inclusive. Subsets are visited by increasing size, and lexicographically
// over selection indices within a size. The idxs slice is reused between
// calls and must not be retained.
func ForEach(n, lo, hi int, fn func(m Mask, idxs []int)) {
	idxs := make([]int, 0, hi)
	for k := lo; k <= hi; k++ {
		gen := combin.NewCombinationGenerator(n, k)
		for gen.Next() {
			idxs = gen.Combination(idxs[:k])
			fn(FromIndices(idxs), idxs)
		}
	}
}
