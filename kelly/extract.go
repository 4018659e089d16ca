package kelly

import (
	"math"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/domino14/realkelly/selection"
)

// DefaultSeparator joins leg names in a multiple's label.
const DefaultSeparator = " / "

// Allocation is a bet with a recommended stake.
type Allocation struct {
	Index int      `json:"index" yaml:"index"`
	Label string   `json:"label" yaml:"label"`
	Legs  []string `json:"legs" yaml:"legs,flow"`
	Odds  float64  `json:"odds" yaml:"odds"`
	Stake float64  `json:"stake" yaml:"stake"`
}

// Extract lists the bets whose stake is strictly above threshold, in bet
// enumeration order.
func Extract(sels []selection.Selection, bets *Bets, stakes []float64, threshold float64, sep string) []Allocation {
	if sep == "" {
		sep = DefaultSeparator
	}
	allocs := []Allocation{}
	for b, s := range stakes {
		if !(s > threshold) {
			continue
		}
		legs := lo.Map(bets.Mask(b).Indices(), func(i int, _ int) string {
			return sels[i].Name
		})
		allocs = append(allocs, Allocation{
			Index: b,
			Label: strings.Join(legs, sep),
			Legs:  legs,
			Odds:  bets.Odds(b),
			Stake: s,
		})
	}
	return allocs
}

// Extract is a shortcut for Extract over this model's selections and bets.
func (m *Model) Extract(stakes []float64, threshold float64, sep string) []Allocation {
	return Extract(m.selections, m.bets, stakes, threshold, sep)
}

// Summary describes a stake vector as a whole.
type Summary struct {
	Bankroll            float64 `json:"bankroll" yaml:"bankroll"`
	Objective           float64 `json:"objective" yaml:"objective"`
	CertaintyEquivalent float64 `json:"certainty_equivalent" yaml:"certainty_equivalent"`
	// Growth is the certainty equivalent as a multiple of the bankroll.
	Growth           float64 `json:"growth" yaml:"growth"`
	ExpectedBankroll float64 `json:"expected_bankroll" yaml:"expected_bankroll"`
	ExpectedProfit   float64 `json:"expected_profit" yaml:"expected_profit"`
	TotalStaked      float64 `json:"total_staked" yaml:"total_staked"`
	WorstCase        float64 `json:"worst_case" yaml:"worst_case"`
}

// Summarize evaluates the objective and a few descriptive numbers at stakes.
func Summarize(obj Objective, stakes []float64) Summary {
	v := obj.Evaluate(stakes)
	end := obj.EndBankrolls(stakes)
	worst := math.Inf(1)
	for o, e := range end {
		if obj.model.outcomes.probs[o] > 0 && e < worst {
			worst = e
		}
	}
	expected := floats.Dot(obj.model.outcomes.probs, end)
	return Summary{
		Bankroll:            obj.bankroll,
		Objective:           v,
		CertaintyEquivalent: CertaintyEquivalent(v),
		Growth:              obj.Growth(v),
		ExpectedBankroll:    expected,
		ExpectedProfit:      expected - obj.bankroll,
		TotalStaked:         floats.Sum(stakes),
		WorstCase:           worst,
	}
}
