package montecarlo

import (
	"context"
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/selection"
)

func objectiveFor(t *testing.T, sels []selection.Selection, maxMultiple int, bankroll float64) kelly.Objective {
	m, err := kelly.NewModel(sels, maxMultiple)
	require.NoError(t, err)
	obj, err := kelly.NewObjective(m, bankroll)
	require.NoError(t, err)
	return obj
}

var coin = []selection.Selection{{Name: "coin", OddsFair: 2.0, OddsBook: 2.5}}

func TestSettleMatchesObjective(t *testing.T) {
	sels := []selection.Selection{
		{Name: "a", OddsFair: 2.0, OddsBook: 2.2},
		{Name: "b", OddsFair: 3.0, OddsBook: 3.1},
		{Name: "c", OddsFair: 1.5, OddsBook: 1.6},
	}
	obj := objectiveFor(t, sels, 2, 1000)
	stakes := []float64{10, 0, 30, 4, 5, 0}
	sim, err := NewSimulator(obj, stakes)
	require.NoError(t, err)

	want := obj.EndBankrolls(stakes)
	outcomes := obj.Model().Outcomes()
	for o := range outcomes.Len() {
		assert.InDelta(t, want[o], sim.Settle(outcomes.Mask(o)), 1e-9, "outcome %d", o)
	}
}

func TestSimulateCoin(t *testing.T) {
	obj := objectiveFor(t, coin, 1, 1000)
	stake := 1000.0 / 6
	sim, err := NewSimulator(obj, []float64{stake})
	require.NoError(t, err)

	s := DefaultSettings()
	s.Iterations = 200000
	s.Threads = 4
	s.Seed = 42
	res, err := sim.Simulate(context.Background(), s)
	require.NoError(t, err)

	expected := -obj.Evaluate([]float64{stake}) - math.Log(1000)
	assert.Equal(t, 200000, res.Iterations)
	assert.False(t, res.StoppedEarly)
	assert.InDelta(t, expected, res.MeanLogGrowth, 0.003)
	assert.Less(t, res.CILow, res.MeanLogGrowth)
	assert.Greater(t, res.CIHigh, res.MeanLogGrowth)
	assert.InDelta(t, 0.5, res.LossProbability, 0.01)
	assert.InDelta(t, 1000-stake, res.MinBankroll, 1e-9)
	assert.InDelta(t, 1000+1.5*stake, res.MaxBankroll, 1e-9)
	assert.InDelta(t, obj.ExpectedBankroll([]float64{stake}), res.MeanBankroll, 3)

	h := res.Histogram(10)
	assert.Equal(t, MaxHistogramSamples, h.Count)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	is := is.New(t)
	obj := objectiveFor(t, coin, 1, 1000)
	sim, err := NewSimulator(obj, []float64{100})
	is.NoErr(err)

	s := DefaultSettings()
	s.Iterations = 5000
	s.CheckInterval = 500
	s.Seed = 7

	s.Threads = 1
	one, err := sim.Simulate(context.Background(), s)
	is.NoErr(err)
	s.Threads = 3
	three, err := sim.Simulate(context.Background(), s)
	is.NoErr(err)

	is.Equal(one.Iterations, three.Iterations)
	is.Equal(one.LossProbability, three.LossProbability)
	assert.InDelta(t, one.MeanLogGrowth, three.MeanLogGrowth, 1e-12)
}

func TestStoppingCondition(t *testing.T) {
	is := is.New(t)
	obj := objectiveFor(t, coin, 1, 1000)
	sim, err := NewSimulator(obj, []float64{1000.0 / 6})
	is.NoErr(err)

	s := DefaultSettings()
	s.Iterations = 1000000
	s.Threads = 1
	s.Seed = 3
	s.StoppingCondition = Stop95
	s.Tolerance = 0.01
	res, err := sim.Simulate(context.Background(), s)
	is.NoErr(err)
	is.True(res.StoppedEarly)
	is.True(res.Iterations <= 3000)
	is.True(res.CIHigh-res.MeanLogGrowth < 0.01)
}

func TestNoStakesNoRisk(t *testing.T) {
	is := is.New(t)
	obj := objectiveFor(t, coin, 1, 1000)
	sim, err := NewSimulator(obj, []float64{0})
	is.NoErr(err)
	s := DefaultSettings()
	s.Iterations = 2000
	res, err := sim.Simulate(context.Background(), s)
	is.NoErr(err)
	is.Equal(res.MeanLogGrowth, 0.0)
	is.Equal(res.LossProbability, 0.0)
	is.Equal(res.MinBankroll, 1000.0)
	is.Equal(res.MaxBankroll, 1000.0)
}

func TestCanceledBeforeStart(t *testing.T) {
	is := is.New(t)
	obj := objectiveFor(t, coin, 1, 1000)
	sim, err := NewSimulator(obj, []float64{50})
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Simulate(ctx, DefaultSettings())
	is.True(err != nil)
}

func TestBadStakes(t *testing.T) {
	is := is.New(t)
	obj := objectiveFor(t, coin, 1, 1000)
	_, err := NewSimulator(obj, []float64{-1})
	is.True(err != nil)
	_, err = NewSimulator(obj, []float64{1, 2})
	is.True(err != nil)
}

func TestParseStoppingCondition(t *testing.T) {
	is := is.New(t)
	for in, want := range map[string]StoppingCondition{
		"": StopNone, "none": StopNone, "90": Stop90, "95%": Stop95, "98": Stop98, "99": Stop99,
	} {
		sc, err := ParseStoppingCondition(in)
		is.NoErr(err)
		is.Equal(sc, want)
	}
	_, err := ParseStoppingCondition("97")
	is.True(err != nil)
	is.Equal(Stop99.String(), "99%")
	is.Equal(StopNone.String(), "none")
}
