package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/realkelly/config"
	"github.com/domino14/realkelly/montecarlo"
	"github.com/domino14/realkelly/report"
	"github.com/domino14/realkelly/runner"
	"github.com/domino14/realkelly/selection"
	"github.com/domino14/realkelly/solver"
)

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Float(key string) (float64, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.ParseFloat(v, 64)
}

func msg(message string) *Response {
	return &Response{message: message}
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func (sc *ShellController) add(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 3 {
		return nil, errors.New("usage: add <name> <fair odds> <book odds>")
	}
	fair, err := strconv.ParseFloat(cmd.args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("fair odds: %w", err)
	}
	book, err := strconv.ParseFloat(cmd.args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("book odds: %w", err)
	}
	s := selection.Selection{Name: cmd.args[0], OddsFair: fair, OddsBook: book}
	if err := selection.ValidateAll(append(sc.selections[:len(sc.selections):len(sc.selections)], s)); err != nil {
		return nil, err
	}
	sc.selections = append(sc.selections, s)
	sc.lastRun, sc.lastSim = nil, nil
	return msg(fmt.Sprintf("added %v", s)), nil
}

func (sc *ShellController) remove(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: remove <name>")
	}
	_, idx, found := lo.FindIndexOf(sc.selections, func(s selection.Selection) bool {
		return s.Name == cmd.args[0]
	})
	if !found {
		return nil, fmt.Errorf("no selection named %q", cmd.args[0])
	}
	sc.selections = append(sc.selections[:idx:idx], sc.selections[idx+1:]...)
	sc.lastRun, sc.lastSim = nil, nil
	return msg("removed " + cmd.args[0]), nil
}

func (sc *ShellController) list(cmd *shellcmd) (*Response, error) {
	if len(sc.selections) == 0 {
		return msg("no selections; use add or load"), nil
	}
	var sb strings.Builder
	for i, s := range sc.selections {
		fmt.Fprintf(&sb, "%2d. %-30s fair %7.3f  book %7.3f  p %6.2f%%  edge %+6.2f%%\n",
			i+1, s.Name, s.OddsFair, s.OddsBook, 100*s.Probability(), 100*s.Edge())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) clear(cmd *shellcmd) (*Response, error) {
	sc.selections = nil
	sc.lastRun, sc.lastSim = nil, nil
	return msg("cleared selections"), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file.yaml|file.json>")
	}
	sels, err := selection.LoadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.selections = sels
	sc.lastRun, sc.lastSim = nil, nil
	return msg(fmt.Sprintf("loaded %d selections from %s", len(sels), cmd.args[0])), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(strings.TrimRight(sc.config.ToDisplayText(), "\n")), nil
	}
	key := cmd.args[0]
	if !lo.Contains(sc.config.AllKeys(), key) {
		return nil, fmt.Errorf("unknown setting %q", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s = %v", key, sc.config.Get(key))), nil
	}
	value := strings.Join(cmd.args[1:], " ")
	sc.config.Lock()
	sc.config.Set(key, value)
	sc.config.Unlock()
	return msg("set " + key + " to " + value), nil
}

// runOptions reads run options from the config, then applies any
// per-command overrides.
func (sc *ShellController) runOptions(cmd *shellcmd) (*runner.Options, error) {
	sc.config.Lock()
	opts, err := runner.OptionsFromConfig(sc.config)
	sc.config.Unlock()
	if err != nil {
		return nil, err
	}
	o := cmd.options
	if o.Has("method") {
		if opts.Solver.Method, err = solver.ParseMethod(o.String("method")); err != nil {
			return nil, err
		}
	}
	if o.Has("bankroll") {
		if opts.Bankroll, err = o.Float("bankroll"); err != nil {
			return nil, err
		}
	}
	if o.Has("max-multiple") {
		if opts.MaxMultiple, err = o.Int("max-multiple"); err != nil {
			return nil, err
		}
	}
	if o.Has("threshold") {
		if opts.Threshold, err = o.Float("threshold"); err != nil {
			return nil, err
		}
	}
	if o.Has("seed") {
		seed, err := strconv.ParseUint(o.String("seed"), 10, 64)
		if err != nil {
			return nil, err
		}
		opts.Solver.Seed = seed
		opts.Sim.Seed = seed
	}
	if o.Has("iterations") {
		if opts.Sim.Iterations, err = o.Int("iterations"); err != nil {
			return nil, err
		}
	}
	if o.Has("threads") {
		if opts.Sim.Threads, err = o.Int("threads"); err != nil {
			return nil, err
		}
	}
	if o.Has("stop") {
		if opts.Sim.StoppingCondition, err = montecarlo.ParseStoppingCondition(o.String("stop")); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func (sc *ShellController) outputFormat(cmd *shellcmd) (report.Format, error) {
	if cmd.options.Has("output") {
		return report.ParseFormat(cmd.options.String("output"))
	}
	return report.ParseFormat(sc.config.GetString(config.ConfigOutput))
}

func (sc *ShellController) solve(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(sc.selections) == 0 {
		return nil, errors.New("no selections; use add or load first")
	}
	opts, err := sc.runOptions(cmd)
	if err != nil {
		return nil, err
	}
	format, err := sc.outputFormat(cmd)
	if err != nil {
		return nil, err
	}
	res, err := runner.Run(ctx, sc.selections, *opts)
	if err != nil {
		return nil, err
	}
	sc.lastRun, sc.lastSim = res, nil

	var sb strings.Builder
	if err := report.Write(&sb, res, format); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) sim(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.lastRun == nil {
		return nil, errors.New("nothing to simulate; run solve first")
	}
	opts, err := sc.runOptions(cmd)
	if err != nil {
		return nil, err
	}
	format, err := sc.outputFormat(cmd)
	if err != nil {
		return nil, err
	}
	res, err := runner.Simulate(ctx, sc.lastRun, opts.Sim)
	if err != nil {
		return nil, err
	}
	sc.lastSim = res

	var sb strings.Builder
	if err := report.WriteSimulation(&sb, res, format); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
