package solver

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/domino14/realkelly/kelly"
)

// transform maps unconstrained variables onto bankroll fractions that
// respect each bet's bounds:
//
//	unbounded above:  f = x^2
//	upper bound u:    f = u * sin^2(x)
//
// Stakes are then bankroll * f. Working in fractions keeps the problem
// scaled the same whatever the bankroll.
type transform struct {
	bankroll float64
	// upper[i] is the upper bound as a fraction of the bankroll, or +Inf.
	upper []float64
}

func newTransform(p kelly.Problem) transform {
	bankroll := p.Objective.Bankroll()
	t := transform{bankroll: bankroll, upper: make([]float64, p.Dim())}
	for i, b := range p.Bounds {
		t.upper[i] = b.Upper / bankroll
	}
	return t
}

func (t transform) stakes(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, v := range x {
		u := t.upper[i]
		if math.IsInf(u, 1) {
			dst[i] = t.bankroll * v * v
		} else {
			sv := math.Sin(v)
			dst[i] = t.bankroll * u * sv * sv
		}
	}
	return dst
}

// deriv stores d(stake_i)/d(x_i) in dst.
func (t transform) deriv(dst, x []float64) {
	for i, v := range x {
		u := t.upper[i]
		if math.IsInf(u, 1) {
			dst[i] = t.bankroll * 2 * v
		} else {
			dst[i] = t.bankroll * u * math.Sin(2*v)
		}
	}
}

// inverse returns an x with stakes(x) = bankroll * f on every bet.
func (t transform) inverse(f float64) []float64 {
	x := make([]float64, len(t.upper))
	for i, u := range t.upper {
		if math.IsInf(u, 1) {
			x[i] = math.Sqrt(f)
		} else {
			x[i] = math.Asin(math.Sqrt(math.Min(f/u, 1)))
		}
	}
	return x
}

func solveLocal(p kelly.Problem, s Settings, method optimize.Method) (*Result, error) {
	obj := p.Objective
	t := newTransform(p)

	initFraction := s.InitFraction
	if initFraction <= 0 {
		initFraction = 0.01
	}
	// Start every bet at the same small stake; x = 0 is a stationary point
	// of the transform, so it cannot be the starting point.
	x0 := t.inverse(initFraction / float64(p.Dim()))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return obj.Evaluate(t.stakes(nil, x))
		},
		Grad: func(grad, x []float64) {
			obj.Gradient(grad, t.stakes(nil, x))
			d := make([]float64, len(x))
			t.deriv(d, x)
			for i := range grad {
				grad[i] *= d[i]
			}
		},
	}

	settings := baseSettings(s)
	settings.GradientThreshold = 1e-10
	settings.Converger = &optimize.FunctionConverge{Absolute: 1e-14, Iterations: 200}

	name := Local
	if _, ok := method.(*optimize.NelderMead); ok {
		name = NelderMead
	}
	ores, err := optimize.Minimize(problem, x0, settings, method)
	if ores == nil {
		return nil, err
	}
	stakes := t.stakes(nil, ores.X)
	if p.Budgeted() {
		p.Repair(stakes, stakes)
	}
	return finish(p, name, stakes, ores, err)
}
