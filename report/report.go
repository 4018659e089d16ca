// Package report renders run and simulation results for people (text) and
// for other programs (yaml, json).
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/runner"
	"github.com/domino14/realkelly/solver"
)

type Format string

const (
	Text Format = "text"
	YAML Format = "yaml"
	JSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, YAML, JSON:
		return f, nil
	case "yml":
		return YAML, nil
	case "":
		return Text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

const oddsPlaces = 3

var printer = message.NewPrinter(language.English)

// StakePlaces is how many decimals a stake is shown with. A population
// search doesn't pin stakes down finer than whole units.
func StakePlaces(m solver.Method) int32 {
	if m == solver.Global {
		return 0
	}
	return 2
}

func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// Money formats v with thousands separators and the given decimals.
func Money(v float64, places int32) string {
	f := round(v, places).InexactFloat64()
	return printer.Sprintf("%.*f", int(places), f)
}

type allocationView struct {
	Label string   `json:"label" yaml:"label"`
	Legs  []string `json:"legs" yaml:"legs,flow"`
	Odds  float64  `json:"odds" yaml:"odds"`
	Stake float64  `json:"stake" yaml:"stake"`
}

type runView struct {
	Method      solver.Method    `json:"method" yaml:"method"`
	Bankroll    float64          `json:"bankroll" yaml:"bankroll"`
	MaxMultiple int              `json:"max_multiple" yaml:"max_multiple"`
	NumBets     int              `json:"num_bets" yaml:"num_bets"`
	Allocations []allocationView `json:"allocations" yaml:"allocations"`
	Summary     kelly.Summary    `json:"summary" yaml:"summary"`
	Converged   bool             `json:"converged" yaml:"converged"`
	Status      string           `json:"status" yaml:"status"`
	Evaluations int              `json:"evaluations" yaml:"evaluations"`
	Runtime     string           `json:"runtime" yaml:"runtime"`
	Warning     string           `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func newRunView(res *runner.Result) runView {
	places := StakePlaces(res.Solve.Method)
	v := runView{
		Method:      res.Solve.Method,
		Bankroll:    res.Summary.Bankroll,
		MaxMultiple: res.MaxMultiple,
		NumBets:     res.NumBets,
		Allocations: lo.Map(res.Allocations, func(a kelly.Allocation, _ int) allocationView {
			return allocationView{
				Label: a.Label,
				Legs:  a.Legs,
				Odds:  round(a.Odds, oddsPlaces).InexactFloat64(),
				Stake: round(a.Stake, places).InexactFloat64(),
			}
		}),
		Summary:     res.Summary,
		Converged:   res.Solve.Converged,
		Status:      res.Solve.Status,
		Evaluations: res.Solve.Evaluations,
		Runtime:     res.Runtime.String(),
	}
	if res.Solve.Warning != nil {
		v.Warning = res.Solve.Warning.Error()
	}
	return v
}

// Write renders a run in the given format.
func Write(w io.Writer, res *runner.Result, f Format) error {
	switch f {
	case Text, "":
		return WriteText(w, res)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newRunView(res)); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newRunView(res))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteText renders a run as a table of bets followed by a summary.
func WriteText(w io.Writer, res *runner.Result) error {
	places := StakePlaces(res.Solve.Method)
	s := res.Summary
	var sb strings.Builder

	fmt.Fprintf(&sb, "Bankroll %s, %d selections, %d bets up to %d-fold, method %s\n\n",
		Money(s.Bankroll, 2), len(res.Selections), res.NumBets, res.MaxMultiple, res.Solve.Method)

	if len(res.Allocations) == 0 {
		sb.WriteString("No bet has a stake above the threshold.\n")
	} else {
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Bet\tOdds\tStake\t")
		for _, a := range res.Allocations {
			fmt.Fprintf(tw, "%s\t@%s\t%s\t\n", a.Label, round(a.Odds, oddsPlaces).StringFixed(oddsPlaces),
				Money(a.Stake, places))
		}
		tw.Flush()
	}
	sb.WriteString("\n")

	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total staked\t%s\n", Money(s.TotalStaked, places))
	fmt.Fprintf(tw, "Objective\t%.6f\n", s.Objective)
	fmt.Fprintf(tw, "Certainty equivalent\t%s (growth %.4fx)\n", Money(s.CertaintyEquivalent, 2), s.Growth)
	fmt.Fprintf(tw, "Expected bankroll\t%s (profit %s)\n", Money(s.ExpectedBankroll, 2), Money(s.ExpectedProfit, 2))
	fmt.Fprintf(tw, "Worst case\t%s\n", Money(s.WorstCase, 2))
	status := "converged"
	if !res.Solve.Converged {
		status = "stopped early"
	}
	fmt.Fprintf(tw, "Solver\t%s (%s), %s evaluations\n", status, res.Solve.Status,
		printer.Sprint(res.Solve.Evaluations))
	fmt.Fprintf(tw, "Runtime\t%s\n", res.Runtime)
	tw.Flush()

	_, err := io.WriteString(w, sb.String())
	return err
}
