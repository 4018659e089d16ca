// Package runner wires the pieces of a solve together: it builds (or
// reuses) the model, poses the problem, hands it to the solver, and
// extracts what should be bet.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/domino14/realkelly/cache"
	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/montecarlo"
	"github.com/domino14/realkelly/selection"
	"github.com/domino14/realkelly/solver"
)

type Result struct {
	Selections  []selection.Selection `json:"selections" yaml:"selections"`
	MaxMultiple int                   `json:"max_multiple" yaml:"max_multiple"`
	Threshold   float64               `json:"threshold" yaml:"threshold"`
	NumBets     int                   `json:"num_bets" yaml:"num_bets"`
	Allocations []kelly.Allocation    `json:"allocations" yaml:"allocations"`
	Summary     kelly.Summary         `json:"summary" yaml:"summary"`
	Solve       *solver.Result        `json:"solve" yaml:"solve"`
	// Runtime covers the whole run, model building included.
	Runtime time.Duration `json:"runtime" yaml:"runtime"`

	obj kelly.Objective
}

// Objective is the objective the stakes were solved against.
func (r *Result) Objective() kelly.Objective {
	return r.obj
}

// Run solves for the growth-optimal stakes on the selections. A solver
// that stops early is not an error: its best stakes are used, and
// Solve.Warning says so.
func Run(ctx context.Context, sels []selection.Selection, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	opts.SetDefaults()
	tstart := time.Now()

	if err := kelly.CheckBankroll(opts.Bankroll); err != nil {
		return nil, err
	}
	model, err := cache.Model(sels, opts.MaxMultiple, kelly.WithMemoryFraction(opts.MemoryFraction))
	if err != nil {
		return nil, err
	}
	obj, err := kelly.NewObjective(model, opts.Bankroll)
	if err != nil {
		return nil, err
	}
	// The population search needs a box to sample from; the gradient
	// search doesn't.
	problem := kelly.NewProblem(obj, opts.Solver.Method == solver.Global)

	logger.Debug().Int("selections", len(sels)).Int("bets", model.NumBets()).
		Str("method", string(opts.Solver.Method)).Float64("bankroll", opts.Bankroll).Msg("solving")

	sres, err := solver.Solve(problem, opts.Solver)
	if err != nil {
		return nil, fmt.Errorf("solving: %w", err)
	}
	if sres.Warning != nil {
		logger.Warn().Err(sres.Warning).Msg("reporting best stakes found")
	}

	res := &Result{
		Selections:  model.Selections(),
		MaxMultiple: opts.MaxMultiple,
		Threshold:   opts.Threshold,
		NumBets:     model.NumBets(),
		Allocations: model.Extract(sres.Stakes, opts.Threshold, opts.Separator),
		Summary:     kelly.Summarize(obj, sres.Stakes),
		Solve:       sres,
		Runtime:     time.Since(tstart),
		obj:         obj,
	}
	logger.Info().Dur("runtime", res.Runtime).Int("allocations", len(res.Allocations)).
		Float64("objective", res.Summary.Objective).Msg("run-done")
	return res, nil
}

// Simulate plays the solved stakes forward.
func Simulate(ctx context.Context, res *Result, settings montecarlo.Settings) (*montecarlo.Result, error) {
	sim, err := montecarlo.NewSimulator(res.obj, res.Solve.Stakes)
	if err != nil {
		return nil, err
	}
	return sim.Simulate(ctx, settings)
}
