package kelly

import (
	"slices"
)

// Incidence maps each bet to the ascending list of outcome indices in which
// it pays out. The lists are stored back to back in one arena; offsets[b]
// and offsets[b+1] delimit bet b's list.
type Incidence struct {
	offsets []int
	wins    []int32
}

// BuildIncidence computes the win relation for every (bet, outcome) pair.
// A bet wins iff all of its legs occurred in the outcome.
func BuildIncidence(o *Outcomes, b *Bets) *Incidence {
	if o.n != b.n {
		panic("incidence: outcomes and bets built from different selections")
	}
	// A bet with k legs wins in exactly 2^(n-k) outcomes.
	total := 0
	for _, m := range b.masks {
		total += 1 << uint(o.n-m.Size())
	}
	inc := &Incidence{
		offsets: make([]int, len(b.masks)+1),
		wins:    make([]int32, 0, total),
	}
	for bi, bm := range b.masks {
		for oi, om := range o.masks {
			if bm.SubsetOf(om) {
				inc.wins = append(inc.wins, int32(oi))
			}
		}
		inc.offsets[bi+1] = len(inc.wins)
	}
	return inc
}

// Len is the number of bets covered.
func (inc *Incidence) Len() int {
	return len(inc.offsets) - 1
}

// Size is the total number of (bet, outcome) winning pairs.
func (inc *Incidence) Size() int {
	return len(inc.wins)
}

// Wins returns the outcomes in which bet b pays out. The returned slice
// aliases the index and must not be modified.
func (inc *Incidence) Wins(b int) []int32 {
	return inc.wins[inc.offsets[b]:inc.offsets[b+1]:inc.offsets[b+1]]
}

// Contains returns true if bet b pays out in outcome o.
func (inc *Incidence) Contains(b, o int) bool {
	_, found := slices.BinarySearch(inc.Wins(b), int32(o))
	return found
}
