package kelly

import (
	"github.com/samber/lo"

	"github.com/domino14/realkelly/combos"
	"github.com/domino14/realkelly/selection"
)

// Outcomes is every joint realization of the selections, with its
// probability under independence. Index order is by number of selections
// that occurred, then lexicographic over selection indices.
type Outcomes struct {
	n     int
	masks []combos.Mask
	probs []float64
}

func validateSelections(sels []selection.Selection) error {
	if len(sels) > combos.MaxSelections {
		return configErr(ErrTooManySelections, "%d > %d", len(sels), combos.MaxSelections)
	}
	if err := selection.ValidateAll(sels); err != nil {
		return configErr(err, "")
	}
	return nil
}

// BuildOutcomes enumerates all 2^n outcomes.
func BuildOutcomes(sels []selection.Selection) (*Outcomes, error) {
	if err := validateSelections(sels); err != nil {
		return nil, err
	}
	n := len(sels)
	total := 1 << uint(n)
	o := &Outcomes{
		n:     n,
		masks: make([]combos.Mask, 0, total),
		probs: make([]float64, 0, total),
	}
	ps := lo.Map(sels, func(s selection.Selection, _ int) float64 { return s.Probability() })

	combos.ForEach(n, 0, n, func(m combos.Mask, _ []int) {
		p := 1.0
		for i, pi := range ps {
			if m.Has(i) {
				p *= pi
			} else {
				p *= 1 - pi
			}
		}
		o.masks = append(o.masks, m)
		o.probs = append(o.probs, p)
	})
	return o, nil
}

// Len is the number of outcomes, 2^n.
func (o *Outcomes) Len() int {
	return len(o.masks)
}

// NumSelections is n.
func (o *Outcomes) NumSelections() int {
	return o.n
}

func (o *Outcomes) Mask(i int) combos.Mask {
	return o.masks[i]
}

func (o *Outcomes) Prob(i int) float64 {
	return o.probs[i]
}

// Probs returns the probability vector. Callers must not modify it.
func (o *Outcomes) Probs() []float64 {
	return o.probs
}
