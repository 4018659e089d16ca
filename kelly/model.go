// Package kelly builds the combinatorial model behind a simultaneous Kelly
// allocation (outcome space, bet universe and their win relation) and the
// expected log-growth objective evaluated over it.
package kelly

import (
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/realkelly/combos"
	"github.com/domino14/realkelly/selection"
)

// DefaultMemoryFraction is the share of physical memory a model may use.
const DefaultMemoryFraction = 0.5

// Model is the read-only structure shared by every objective evaluation.
type Model struct {
	selections []selection.Selection
	outcomes   *Outcomes
	bets       *Bets
	incidence  *Incidence
}

type modelOptions struct {
	memoryFraction float64
}

type ModelOption func(*modelOptions)

// WithMemoryFraction caps the estimated model size at a fraction of total
// physical memory. A fraction <= 0 disables the check.
func WithMemoryFraction(f float64) ModelOption {
	return func(o *modelOptions) {
		o.memoryFraction = f
	}
}

// EstimateBytes is a rough size of the model for n selections.
func EstimateBytes(n, maxMultiple int) uint64 {
	nOutcomes := uint64(1) << uint(n)
	nBets := uint64(combos.Count(n, 1, maxMultiple))
	var winPairs uint64
	for k := 1; k <= maxMultiple; k++ {
		winPairs += uint64(combos.Count(n, k, k)) << uint(n-k)
	}
	// mask + prob per outcome, mask + odds + offset per bet, int32 per win.
	return nOutcomes*16 + nBets*24 + winPairs*4
}

// CheckMemory returns ErrModelTooLarge if the model for n selections would
// not fit in the given fraction of physical memory.
func CheckMemory(n, maxMultiple int, fraction float64) error {
	if fraction <= 0 {
		return nil
	}
	total := memory.TotalMemory()
	if total == 0 {
		// Unknown platform; nothing to compare against.
		return nil
	}
	need := EstimateBytes(n, maxMultiple)
	allowed := uint64(fraction * float64(total))
	if need > allowed {
		return configErr(ErrModelTooLarge, "need ~%d bytes, allowed %d", need, allowed)
	}
	return nil
}

// NewModel validates the run parameters and builds the outcome space, the
// bet universe and the incidence index. The two enumerations are
// independent and run concurrently.
func NewModel(sels []selection.Selection, maxMultiple int, opts ...ModelOption) (*Model, error) {
	mo := &modelOptions{memoryFraction: DefaultMemoryFraction}
	for _, opt := range opts {
		opt(mo)
	}
	if err := validateSelections(sels); err != nil {
		return nil, err
	}
	if err := checkMaxMultiple(len(sels), maxMultiple); err != nil {
		return nil, err
	}
	if err := CheckMemory(len(sels), maxMultiple, mo.memoryFraction); err != nil {
		return nil, err
	}
	start := time.Now()
	m := &Model{selections: append([]selection.Selection(nil), sels...)}

	g := errgroup.Group{}
	g.Go(func() error {
		var err error
		m.outcomes, err = BuildOutcomes(m.selections)
		return err
	})
	g.Go(func() error {
		var err error
		m.bets, err = BuildBets(m.selections, maxMultiple)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.incidence = BuildIncidence(m.outcomes, m.bets)

	log.Debug().
		Int("selections", len(sels)).
		Int("max-multiple", maxMultiple).
		Int("outcomes", m.outcomes.Len()).
		Int("bets", m.bets.Len()).
		Int("win-pairs", m.incidence.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("built-model")
	return m, nil
}

func (m *Model) Selections() []selection.Selection {
	return m.selections
}

func (m *Model) Outcomes() *Outcomes {
	return m.outcomes
}

func (m *Model) Bets() *Bets {
	return m.bets
}

func (m *Model) Incidence() *Incidence {
	return m.incidence
}

// NumBets is the dimension of a stake vector for this model.
func (m *Model) NumBets() int {
	return m.bets.Len()
}

func (m *Model) MaxMultiple() int {
	return m.bets.maxMultiple
}
