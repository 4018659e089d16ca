package runner

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/realkelly/config"
	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/montecarlo"
	"github.com/domino14/realkelly/solver"
)

var ErrBadOption = errors.New("bad option")

// Options are everything a run needs besides the selections.
type Options struct {
	Bankroll       float64
	MaxMultiple    int
	Threshold      float64
	Separator      string
	MemoryFraction float64
	Solver         solver.Settings
	Sim            montecarlo.Settings
}

func (opts *Options) SetDefaults() {
	if opts.MaxMultiple == 0 {
		opts.MaxMultiple = 1
	}
	if opts.Separator == "" {
		opts.Separator = kelly.DefaultSeparator
	}
	if opts.MemoryFraction == 0 {
		opts.MemoryFraction = kelly.DefaultMemoryFraction
	}
	if opts.Solver.Method == "" {
		opts.Solver.Method = solver.Local
		log.Debug().Msgf("using default solver method %v", opts.Solver.Method)
	}
	if opts.Sim.Iterations == 0 {
		opts.Sim = montecarlo.DefaultSettings()
	}
}

// OptionsFromConfig reads run options out of a loaded config.
func OptionsFromConfig(cfg *config.Config) (*Options, error) {
	method, err := solver.ParseMethod(cfg.GetString(config.ConfigMethod))
	if err != nil {
		return nil, err
	}
	stop, err := montecarlo.ParseStoppingCondition(cfg.GetString(config.ConfigSimStop))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
	}
	opts := &Options{
		Bankroll:       cfg.GetFloat64(config.ConfigBankroll),
		MaxMultiple:    cfg.GetInt(config.ConfigMaxMultiple),
		Threshold:      cfg.GetFloat64(config.ConfigReportThreshold),
		Separator:      cfg.GetString(config.ConfigSeparator),
		MemoryFraction: cfg.GetFloat64(config.ConfigMemoryFraction),
		Solver: solver.Settings{
			Method:         method,
			MaxEvaluations: cfg.GetInt(config.ConfigMaxEvaluations),
			MaxRuntime:     cfg.GetDuration(config.ConfigMaxRuntime),
			Seed:           cfg.GetUint64(config.ConfigSolverSeed),
		},
		Sim: montecarlo.Settings{
			Iterations:        cfg.GetInt(config.ConfigSimIterations),
			Threads:           cfg.GetInt(config.ConfigSimThreads),
			Seed:              cfg.GetUint64(config.ConfigSimSeed),
			StoppingCondition: stop,
			Tolerance:         cfg.GetFloat64(config.ConfigSimTolerance),
			CheckInterval:     montecarlo.DefaultCheckInterval,
		},
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("%w: report threshold must not be negative", ErrBadOption)
	}
	if opts.MemoryFraction <= 0 || opts.MemoryFraction > 1 {
		return nil, fmt.Errorf("%w: memory fraction must be in (0, 1]", ErrBadOption)
	}
	if opts.Sim.Iterations <= 0 {
		return nil, fmt.Errorf("%w: sim iterations must be positive", ErrBadOption)
	}
	return opts, nil
}
