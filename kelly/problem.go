package kelly

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bound is the closed interval a single stake must stay in.
type Bound struct {
	Lower float64
	Upper float64
}

// Problem is everything a solver needs: the objective, one bound per bet
// and an optional budget on the total stake.
type Problem struct {
	Objective Objective
	Bounds    []Bound
	// Budget caps the sum of stakes. Zero means no cap.
	Budget float64
}

// NewProblem sets the stake bounds. Unbudgeted problems only require stakes
// to be non-negative. Budgeted problems cap each stake and the total stake
// at the bankroll.
func NewProblem(obj Objective, budgeted bool) Problem {
	upper := math.Inf(1)
	budget := 0.0
	if budgeted {
		upper = obj.Bankroll()
		budget = obj.Bankroll()
	}
	bounds := make([]Bound, obj.Dim())
	for i := range bounds {
		bounds[i] = Bound{Lower: 0, Upper: upper}
	}
	return Problem{Objective: obj, Bounds: bounds, Budget: budget}
}

func (p Problem) Dim() int {
	return len(p.Bounds)
}

func (p Problem) Budgeted() bool {
	return p.Budget > 0
}

// Feasible returns true if every stake is within its bound and the total
// is within budget.
func (p Problem) Feasible(stakes []float64) bool {
	if len(stakes) != len(p.Bounds) {
		return false
	}
	for i, s := range stakes {
		if math.IsNaN(s) || s < p.Bounds[i].Lower || s > p.Bounds[i].Upper {
			return false
		}
	}
	return !p.Budgeted() || floats.Sum(stakes) <= p.Budget
}

// Repair maps an arbitrary vector into the feasible region: each entry is
// clamped into its bound, then the whole vector is scaled down if it
// overspends the budget. dst and x may be the same slice.
func (p Problem) Repair(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, v := range x {
		b := p.Bounds[i]
		switch {
		case math.IsNaN(v) || v < b.Lower:
			v = b.Lower
		case v > b.Upper:
			v = b.Upper
		}
		dst[i] = v
	}
	if p.Budgeted() {
		if total := floats.Sum(dst); total > p.Budget {
			floats.Scale(p.Budget/total, dst)
		}
	}
	return dst
}
