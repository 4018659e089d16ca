// Package montecarlo plays a stake vector forward against randomly drawn
// results, as a check on what the closed-form objective promises. Each
// selection is drawn independently with its fair probability, and every
// bet is settled against the draw.
package montecarlo

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/realkelly/combos"
	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/stats"
)

const (
	DefaultIterations    = 10000
	DefaultCheckInterval = 1000
	DefaultTolerance     = 1e-3
	// MaxHistogramSamples caps how many end bankrolls are kept around for
	// plotting.
	MaxHistogramSamples = 100000
)

type Settings struct {
	// Iterations is the most draws that will be made.
	Iterations int
	// Threads defaults to the number of CPUs.
	Threads int
	// Seed makes the draws reproducible. Zero seeds from system entropy.
	Seed uint64
	// The simulation stops early once the confidence interval on the mean
	// log growth is narrower than Tolerance on each side.
	StoppingCondition StoppingCondition
	Tolerance         float64
	// CheckInterval is the number of draws in a batch. Stopping is only
	// checked between batches.
	CheckInterval int
}

func DefaultSettings() Settings {
	return Settings{
		Iterations:    DefaultIterations,
		Threads:       runtime.NumCPU(),
		Tolerance:     DefaultTolerance,
		CheckInterval: DefaultCheckInterval,
	}
}

type Result struct {
	Iterations int `json:"iterations" yaml:"iterations"`
	// LogGrowth is ln(end / start) per draw.
	MeanLogGrowth  float64 `json:"mean_log_growth" yaml:"mean_log_growth"`
	StdevLogGrowth float64 `json:"stdev_log_growth" yaml:"stdev_log_growth"`
	StandardError  float64 `json:"standard_error" yaml:"standard_error"`
	// CILow and CIHigh bound the mean log growth at 95%.
	CILow  float64 `json:"ci_low" yaml:"ci_low"`
	CIHigh float64 `json:"ci_high" yaml:"ci_high"`

	MeanBankroll  float64 `json:"mean_bankroll" yaml:"mean_bankroll"`
	StdevBankroll float64 `json:"stdev_bankroll" yaml:"stdev_bankroll"`
	MinBankroll   float64 `json:"min_bankroll" yaml:"min_bankroll"`
	MaxBankroll   float64 `json:"max_bankroll" yaml:"max_bankroll"`
	// LossProbability is the share of draws ending below the start.
	LossProbability float64 `json:"loss_probability" yaml:"loss_probability"`

	StoppedEarly bool          `json:"stopped_early" yaml:"stopped_early"`
	Runtime      time.Duration `json:"runtime" yaml:"runtime"`

	samples []float64
}

// Histogram buckets the end bankrolls of (up to MaxHistogramSamples of)
// the draws.
func (r *Result) Histogram(bins int) histogram.Histogram {
	return histogram.Hist(bins, r.samples)
}

type Simulator struct {
	bankroll float64
	staked   float64
	probs    []float64
	// Only bets with a positive stake are kept.
	legs    []combos.Mask
	payouts []float64
}

func NewSimulator(obj kelly.Objective, stakes []float64) (*Simulator, error) {
	m := obj.Model()
	if len(stakes) != m.NumBets() {
		return nil, errors.New("stake vector does not match the bets")
	}
	s := &Simulator{bankroll: obj.Bankroll()}
	for _, sel := range m.Selections() {
		s.probs = append(s.probs, sel.Probability())
	}
	bets := m.Bets()
	for i, stake := range stakes {
		if stake < 0 || math.IsNaN(stake) {
			return nil, errors.New("stakes must be non-negative")
		}
		if stake == 0 {
			continue
		}
		s.staked += stake
		s.legs = append(s.legs, bets.Mask(i))
		s.payouts = append(s.payouts, stake*bets.Odds(i))
	}
	return s, nil
}

// Settle returns the end bankroll when exactly the selections in winners
// come in.
func (s *Simulator) Settle(winners combos.Mask) float64 {
	end := s.bankroll - s.staked
	for i, legs := range s.legs {
		if legs.SubsetOf(winners) {
			end += s.payouts[i]
		}
	}
	return end
}

func (s *Simulator) draw(rng *frand.RNG) combos.Mask {
	var m combos.Mask
	for i, p := range s.probs {
		if rng.Float64() < p {
			m |= 1 << i
		}
	}
	return m
}

// batch accumulates the draws of one batch before they are merged.
type batch struct {
	growth   stats.Statistic
	bankroll stats.Statistic
	losses   int
	samples  []float64
}

func (s *Simulator) runBatch(rng *frand.RNG, n int, keep int) *batch {
	b := &batch{}
	if keep > 0 {
		b.samples = make([]float64, 0, min(n, keep))
	}
	for range n {
		end := s.Settle(s.draw(rng))
		b.growth.Push(math.Log(end / s.bankroll))
		b.bankroll.Push(end)
		if end < s.bankroll {
			b.losses++
		}
		if len(b.samples) < keep {
			b.samples = append(b.samples, end)
		}
	}
	return b
}

// batchRNG gives every batch its own stream, so a seeded run draws the
// same values no matter how batches are spread over threads.
func batchRNG(seed uint64, idx int) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key[0:], seed)
	binary.LittleEndian.PutUint64(key[8:], uint64(idx))
	binary.LittleEndian.PutUint64(key[16:], 0x7265616c6b656c6c)
	return frand.NewCustom(key, 1024, 12)
}

// Simulate draws results until the iteration budget is spent, the
// stopping condition is met, or ctx is done. Cancellation is not an
// error; the draws made so far are summarized.
func (s *Simulator) Simulate(ctx context.Context, settings Settings) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if settings.Iterations <= 0 {
		return nil, errors.New("iterations must be positive")
	}
	threads := max(1, settings.Threads)
	interval := settings.CheckInterval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	tolerance := settings.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	nbatches := (settings.Iterations + interval - 1) / interval

	var (
		mu       sync.Mutex
		growth   stats.Statistic
		bankroll stats.Statistic
		losses   int
		samples  []float64
		next     atomic.Int64
		stop     atomic.Bool
	)

	logger.Debug().Int("threads", threads).Int("iterations", settings.Iterations).
		Str("stopping-condition", settings.StoppingCondition.String()).Msg("sim-starting")
	tstart := time.Now()

	g := errgroup.Group{}
	for t := range threads {
		g.Go(func() error {
			defer func() {
				logger.Debug().Int("thread", t).Msg("sim-thread-exiting")
			}()
			for !stop.Load() && ctx.Err() == nil {
				idx := int(next.Add(1) - 1)
				if idx >= nbatches {
					return nil
				}
				n := min(interval, settings.Iterations-idx*interval)

				mu.Lock()
				keep := MaxHistogramSamples - len(samples)
				mu.Unlock()

				b := s.runBatch(batchRNG(settings.Seed, idx), n, keep)

				mu.Lock()
				growth.Merge(&b.growth)
				bankroll.Merge(&b.bankroll)
				losses += b.losses
				samples = append(samples, b.samples[:min(len(b.samples), MaxHistogramSamples-len(samples))]...)
				if shouldStop(&growth, settings.StoppingCondition, tolerance, interval) {
					if !stop.Swap(true) {
						logger.Info().Int("iterations", growth.Iterations()).Msg("reached stopping condition")
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug().AnErr("ctxErr", ctxErr).Msg("sim-interrupted")
	}
	if growth.Iterations() == 0 {
		return nil, errors.New("simulation was stopped before any draws were made")
	}

	z := stats.ZVal(95)
	res := &Result{
		Iterations:      growth.Iterations(),
		MeanLogGrowth:   growth.Mean(),
		StdevLogGrowth:  growth.Stdev(),
		StandardError:   growth.StandardError(),
		CILow:           growth.Mean() - z*growth.StandardError(),
		CIHigh:          growth.Mean() + z*growth.StandardError(),
		MeanBankroll:    bankroll.Mean(),
		StdevBankroll:   bankroll.Stdev(),
		MinBankroll:     bankroll.Min(),
		MaxBankroll:     bankroll.Max(),
		LossProbability: float64(losses) / float64(growth.Iterations()),
		StoppedEarly:    stop.Load(),
		Runtime:         time.Since(tstart),
		samples:         samples,
	}
	logger.Info().Int("iterations", res.Iterations).Float64("mean-log-growth", res.MeanLogGrowth).
		Dur("runtime", res.Runtime).Msg("sim-ended")
	return res, nil
}
