package kelly

import (
	"github.com/domino14/realkelly/combos"
	"github.com/domino14/realkelly/selection"
)

// Bets is the universe of placeable bets: every subset of the selections
// with between 1 and maxMultiple legs, ordered by leg count then
// lexicographically. A bet pays the product of its legs' book odds.
type Bets struct {
	n           int
	maxMultiple int
	masks       []combos.Mask
	odds        []float64
}

func checkMaxMultiple(n, maxMultiple int) error {
	if maxMultiple < 1 {
		return configErr(ErrMaxMultipleTooSmall, "got %d", maxMultiple)
	}
	if maxMultiple > n {
		return configErr(ErrMaxMultipleTooLarge, "%d > %d", maxMultiple, n)
	}
	return nil
}

// BuildBets enumerates all singles and multiples up to maxMultiple legs.
func BuildBets(sels []selection.Selection, maxMultiple int) (*Bets, error) {
	if err := validateSelections(sels); err != nil {
		return nil, err
	}
	if err := checkMaxMultiple(len(sels), maxMultiple); err != nil {
		return nil, err
	}
	n := len(sels)
	total := combos.Count(n, 1, maxMultiple)
	b := &Bets{
		n:           n,
		maxMultiple: maxMultiple,
		masks:       make([]combos.Mask, 0, total),
		odds:        make([]float64, 0, total),
	}
	combos.ForEach(n, 1, maxMultiple, func(m combos.Mask, idxs []int) {
		prod := 1.0
		for _, i := range idxs {
			prod *= sels[i].OddsBook
		}
		b.masks = append(b.masks, m)
		b.odds = append(b.odds, prod)
	})
	return b, nil
}

func (b *Bets) Len() int {
	return len(b.masks)
}

func (b *Bets) MaxMultiple() int {
	return b.maxMultiple
}

func (b *Bets) Mask(i int) combos.Mask {
	return b.masks[i]
}

func (b *Bets) Odds(i int) float64 {
	return b.odds[i]
}

// AllOdds returns the combined book odds of every bet. Callers must not
// modify it.
func (b *Bets) AllOdds() []float64 {
	return b.odds
}
