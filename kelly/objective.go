package kelly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Objective is the negative expected log bankroll over a model. It holds no
// mutable state, so one value can be evaluated concurrently from many
// goroutines.
type Objective struct {
	model    *Model
	bankroll float64
}

// CheckBankroll returns ErrBankroll unless bankroll is positive and finite.
func CheckBankroll(bankroll float64) error {
	if !(bankroll > 0) || math.IsInf(bankroll, 1) {
		return configErr(ErrBankroll, "got %v", bankroll)
	}
	return nil
}

func NewObjective(m *Model, bankroll float64) (Objective, error) {
	if err := CheckBankroll(bankroll); err != nil {
		return Objective{}, err
	}
	return Objective{model: m, bankroll: bankroll}, nil
}

func (obj Objective) Model() *Model {
	return obj.model
}

func (obj Objective) Bankroll() float64 {
	return obj.bankroll
}

// Dim is the length of the stake vectors this objective accepts.
func (obj Objective) Dim() int {
	return obj.model.NumBets()
}

func (obj Objective) checkDim(stakes []float64) {
	if len(stakes) != obj.Dim() {
		panic(fmt.Sprintf("kelly: stake vector has length %d, want %d", len(stakes), obj.Dim()))
	}
}

// EndBankrolls settles the stakes under every outcome. Every stake is
// deducted up front, and a winning bet returns stake * odds.
func (obj Objective) EndBankrolls(stakes []float64) []float64 {
	obj.checkDim(stakes)
	inc := obj.model.incidence
	odds := obj.model.bets.odds

	end := make([]float64, obj.model.outcomes.Len())
	start := obj.bankroll - floats.Sum(stakes)
	for i := range end {
		end[i] = start
	}
	for b, s := range stakes {
		if s == 0 {
			continue
		}
		payout := s * odds[b]
		for _, o := range inc.Wins(b) {
			end[o] += payout
		}
	}
	return end
}

// Evaluate returns -E[ln(end bankroll)]. This is the value a minimizer
// should drive down. If some outcome that can occur leaves a non-positive
// bankroll, the value is +Inf.
func (obj Objective) Evaluate(stakes []float64) float64 {
	end := obj.EndBankrolls(stakes)
	probs := obj.model.outcomes.probs
	v := 0.0
	for o, e := range end {
		p := probs[o]
		if p == 0 {
			continue
		}
		if !(e > 0) {
			return math.Inf(1)
		}
		v -= p * math.Log(e)
	}
	return v
}

// Gradient stores the derivative of Evaluate with respect to each stake in
// grad:
//
//	d/ds_b = sum_o p_o/E_o - odds_b * sum_{o where b wins} p_o/E_o
//
// At infeasible stakes grad is filled with +Inf.
func (obj Objective) Gradient(grad, stakes []float64) {
	if len(grad) != len(stakes) {
		panic("kelly: gradient and stake vectors differ in length")
	}
	end := obj.EndBankrolls(stakes)
	probs := obj.model.outcomes.probs
	inc := obj.model.incidence
	odds := obj.model.bets.odds

	w := make([]float64, len(end))
	base := 0.0
	for o, e := range end {
		p := probs[o]
		if p == 0 {
			continue
		}
		if !(e > 0) {
			for i := range grad {
				grad[i] = math.Inf(1)
			}
			return
		}
		w[o] = p / e
		base += w[o]
	}
	for b := range grad {
		win := 0.0
		for _, o := range inc.Wins(b) {
			win += w[o]
		}
		grad[b] = base - odds[b]*win
	}
}

// ExpectedBankroll is the probability-weighted mean end bankroll.
func (obj Objective) ExpectedBankroll(stakes []float64) float64 {
	return floats.Dot(obj.model.outcomes.probs, obj.EndBankrolls(stakes))
}

// ExpectedProfit is the expected bankroll less the starting bankroll.
func (obj Objective) ExpectedProfit(stakes []float64) float64 {
	return obj.ExpectedBankroll(stakes) - obj.bankroll
}

// Growth is the certainty equivalent of v as a multiple of the bankroll.
func (obj Objective) Growth(v float64) float64 {
	return CertaintyEquivalent(v) / obj.bankroll
}

// CertaintyEquivalent is the sure bankroll with the same expected log
// utility as the portfolio whose objective value is v.
func CertaintyEquivalent(v float64) float64 {
	return math.Exp(-v)
}
