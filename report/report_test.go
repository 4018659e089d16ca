package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/montecarlo"
	"github.com/domino14/realkelly/runner"
	"github.com/domino14/realkelly/selection"
	"github.com/domino14/realkelly/solver"
)

func sampleResult(method solver.Method) *runner.Result {
	return &runner.Result{
		Selections: []selection.Selection{
			{Name: "Haiti", OddsFair: 1.9, OddsBook: 2.1},
			{Name: "Cap", OddsFair: 3.2, OddsBook: 3.6},
		},
		MaxMultiple: 2,
		NumBets:     3,
		Allocations: []kelly.Allocation{
			{Index: 0, Label: "Haiti", Legs: []string{"Haiti"}, Odds: 2.1, Stake: 1234.5678},
			{Index: 2, Label: "Haiti / Cap", Legs: []string{"Haiti", "Cap"}, Odds: 7.56, Stake: 12.3449},
		},
		Summary: kelly.Summary{
			Bankroll:            10000,
			Objective:           -9.2,
			CertaintyEquivalent: 9897.1,
			Growth:              0.98971,
			ExpectedBankroll:    10120,
			ExpectedProfit:      120,
			TotalStaked:         1246.9127,
			WorstCase:           8753.09,
		},
		Solve: &solver.Result{
			Method:      method,
			Converged:   true,
			Status:      "FunctionConvergence",
			Evaluations: 4321,
		},
		Runtime: 5 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)
	for in, want := range map[string]Format{"": Text, "TEXT": Text, "yml": YAML, "yaml": YAML, "json": JSON} {
		f, err := ParseFormat(in)
		is.NoErr(err)
		is.Equal(f, want)
	}
	_, err := ParseFormat("xml")
	is.True(errors.Is(err, ErrUnknownFormat))
}

func TestMoney(t *testing.T) {
	is := is.New(t)
	is.Equal(Money(1234567.891, 2), "1,234,567.89")
	is.Equal(Money(1234.5, 0), "1,235")
	is.Equal(Money(0.125, 2), "0.13")
	is.Equal(StakePlaces(solver.Global), int32(0))
	is.Equal(StakePlaces(solver.Local), int32(2))
}

func TestWriteTextLocal(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, sampleResult(solver.Local), Text))
	out := buf.String()
	is.True(strings.Contains(out, "Bankroll 10,000.00"))
	is.True(strings.Contains(out, "Haiti / Cap"))
	is.True(strings.Contains(out, "@7.560"))
	is.True(strings.Contains(out, "1,234.57"))
	is.True(strings.Contains(out, "12.34"))
	is.True(strings.Contains(out, "4,321 evaluations"))
	is.True(strings.Contains(out, "converged"))
}

func TestWriteTextGlobalRoundsToUnits(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(WriteText(&buf, sampleResult(solver.Global)))
	out := buf.String()
	is.True(strings.Contains(out, "1,235"))
	is.True(!strings.Contains(out, "1,234.57"))
}

func TestWriteTextNothingToBet(t *testing.T) {
	is := is.New(t)
	res := sampleResult(solver.Local)
	res.Allocations = nil
	res.Solve.Converged = false
	var buf bytes.Buffer
	is.NoErr(WriteText(&buf, res))
	is.True(strings.Contains(buf.String(), "No bet has a stake above the threshold."))
	is.True(strings.Contains(buf.String(), "stopped early"))
}

func TestWriteYAML(t *testing.T) {
	is := is.New(t)
	res := sampleResult(solver.Local)
	res.Solve.Warning = fmt.Errorf("%w: budget", solver.ErrNonConvergence)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, res, YAML))

	var got runView
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &got))
	is.Equal(got.Method, solver.Local)
	is.Equal(len(got.Allocations), 2)
	is.Equal(got.Allocations[0].Stake, 1234.57)
	is.Equal(got.Allocations[1].Legs, []string{"Haiti", "Cap"})
	is.Equal(got.Allocations[1].Odds, 7.56)
	is.True(strings.Contains(got.Warning, "did not converge"))
}

func TestWriteJSON(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, sampleResult(solver.Global), JSON))

	var got runView
	is.NoErr(json.Unmarshal(buf.Bytes(), &got))
	is.Equal(got.Allocations[0].Stake, 1235.0)
	is.Equal(got.Allocations[1].Stake, 12.0)
	is.Equal(got.Summary.Bankroll, 10000.0)
	is.Equal(got.Warning, "")
}

func TestWriteSimulation(t *testing.T) {
	is := is.New(t)
	sels := []selection.Selection{{Name: "coin", OddsFair: 2.0, OddsBook: 2.5}}
	res, err := runner.Run(context.Background(), sels, runner.Options{Bankroll: 1000})
	is.NoErr(err)
	s := montecarlo.DefaultSettings()
	s.Iterations = 2000
	s.Seed = 9
	sim, err := runner.Simulate(context.Background(), res, s)
	is.NoErr(err)

	var buf bytes.Buffer
	is.NoErr(WriteSimulation(&buf, sim, Text))
	out := buf.String()
	is.True(strings.Contains(out, "Iterations"))
	is.True(strings.Contains(out, "2,000"))
	is.True(strings.Contains(out, "End bankroll distribution:"))

	buf.Reset()
	is.NoErr(WriteSimulation(&buf, sim, JSON))
	var got montecarlo.Result
	is.NoErr(json.Unmarshal(buf.Bytes(), &got))
	is.Equal(got.Iterations, 2000)

	is.True(errors.Is(WriteSimulation(&buf, sim, "xml"), ErrUnknownFormat))
}
