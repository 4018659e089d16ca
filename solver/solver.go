// Package solver finds the stake vector minimizing a kelly.Problem using the
// gonum optimize package. The kelly package only supplies the objective and
// the constraints; everything about search strategy lives here.
package solver

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/optimize"

	"github.com/domino14/realkelly/kelly"
)

type Method string

const (
	// Local runs L-BFGS from a small positive stake on every bet. Stakes
	// are bounded below by zero (and above by the bound, if finite).
	Local Method = "local"
	// Global runs a CMA-ES population search over the budgeted region.
	// Candidates are evaluated concurrently.
	Global Method = "global"
	// NelderMead is a gradient-free local search over the same
	// parametrization as Local.
	NelderMead Method = "neldermead"
)

var (
	ErrUnknownMethod = errors.New("unknown solver method")
	// ErrNonConvergence is reported (not returned) when the optimizer stops
	// before meeting its tolerance. The best stakes found are still used.
	ErrNonConvergence = errors.New("optimizer did not converge")
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Local, Global, NelderMead:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

type Settings struct {
	Method Method
	// MaxEvaluations caps objective evaluations. Zero means no cap.
	MaxEvaluations int
	// MaxRuntime caps wall time. Zero means no cap.
	MaxRuntime time.Duration
	// Seed makes the global search reproducible. Zero picks a random seed.
	Seed uint64
	// Concurrent is the number of parallel evaluations for the global
	// search. Zero uses GOMAXPROCS.
	Concurrent int
	// InitFraction is the starting stake on each bet, as a fraction of the
	// bankroll spread over all bets. Zero uses 0.01.
	InitFraction float64
}

func DefaultSettings() Settings {
	return Settings{Method: Local, MaxEvaluations: 1000000}
}

// Result is the best point the optimizer found.
type Result struct {
	Method      Method        `json:"method" yaml:"method"`
	Stakes      []float64     `json:"stakes" yaml:"stakes,flow"`
	Objective   float64       `json:"objective" yaml:"objective"`
	Status      string        `json:"status" yaml:"status"`
	Converged   bool          `json:"converged" yaml:"converged"`
	Evaluations int           `json:"evaluations" yaml:"evaluations"`
	Runtime     time.Duration `json:"runtime" yaml:"runtime"`
	// Warning is non-nil when the optimizer stopped early; it wraps
	// ErrNonConvergence.
	Warning error `json:"-" yaml:"-"`
}

// Solve minimizes the problem's objective. An error is only returned if no
// candidate could be produced at all; early termination is reported through
// Result.Warning.
func Solve(p kelly.Problem, s Settings) (*Result, error) {
	if p.Dim() == 0 {
		return nil, errors.New("problem has no bets")
	}
	var res *Result
	var err error
	switch s.Method {
	case Local, "":
		res, err = solveLocal(p, s, &optimize.LBFGS{Linesearcher: &optimize.Bisection{}})
	case NelderMead:
		res, err = solveLocal(p, s, &optimize.NelderMead{})
	case Global:
		res, err = solveGlobal(p, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, s.Method)
	}
	if err != nil {
		return nil, err
	}
	if res.Warning != nil {
		log.Warn().Err(res.Warning).Str("status", res.Status).
			Msg("optimizer-stopped-early; using best stakes found")
	}
	log.Debug().Str("method", string(res.Method)).Float64("objective", res.Objective).
		Int("evaluations", res.Evaluations).Dur("runtime", res.Runtime).
		Str("status", res.Status).Msg("solve-done")
	return res, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

func baseSettings(s Settings) *optimize.Settings {
	return &optimize.Settings{
		FuncEvaluations: s.MaxEvaluations,
		Runtime:         s.MaxRuntime,
	}
}

// finish turns a gonum result into ours. stakes must already be feasible.
func finish(p kelly.Problem, method Method, stakes []float64, ores *optimize.Result, oerr error) (*Result, error) {
	if ores == nil {
		return nil, oerr
	}
	res := &Result{
		Method:      method,
		Stakes:      stakes,
		Objective:   p.Objective.Evaluate(stakes),
		Status:      ores.Status.String(),
		Converged:   oerr == nil && converged(ores.Status),
		Evaluations: ores.FuncEvaluations,
		Runtime:     ores.Runtime,
	}
	if !res.Converged {
		if oerr == nil {
			oerr = ores.Status.Err()
		}
		if oerr != nil {
			res.Warning = fmt.Errorf("%w: %w", ErrNonConvergence, oerr)
		} else {
			res.Warning = fmt.Errorf("%w: status %s", ErrNonConvergence, ores.Status)
		}
	}
	if math.IsInf(res.Objective, 1) {
		return nil, fmt.Errorf("%w: no feasible stakes found", ErrNonConvergence)
	}
	return res, nil
}

func newSource(seed uint64) rand.Source {
	if seed == 0 {
		return nil
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

func concurrency(s Settings) int {
	if s.Concurrent > 0 {
		return s.Concurrent
	}
	return runtime.GOMAXPROCS(0)
}
