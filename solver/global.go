package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/domino14/realkelly/kelly"
)

// solveGlobal searches over bankroll fractions with CMA-ES. Every candidate
// is first repaired into the feasible region (bounds, then budget), so the
// population never wastes samples outside it.
func solveGlobal(p kelly.Problem, s Settings) (*Result, error) {
	obj := p.Objective
	bankroll := obj.Bankroll()
	dim := p.Dim()

	toStakes := func(x []float64) []float64 {
		stakes := make([]float64, len(x))
		floats.ScaleTo(stakes, bankroll, x)
		return p.Repair(stakes, stakes)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return obj.Evaluate(toStakes(x))
		},
	}

	initFraction := s.InitFraction
	if initFraction <= 0 {
		initFraction = 0.01
	}
	x0 := make([]float64, dim)
	for i := range x0 {
		x0[i] = initFraction / float64(dim)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: math.Min(0.1, 0.5/float64(dim)),
		Src:          newSource(s.Seed),
	}
	settings := baseSettings(s)
	settings.Concurrent = concurrency(s)
	settings.Converger = &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 100}

	ores, err := optimize.Minimize(problem, x0, settings, method)
	if ores == nil {
		return nil, err
	}
	return finish(p, Global, toStakes(ores.X), ores, err)
}
