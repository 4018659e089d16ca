package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aybabtme/uniplot/histogram"
	"gopkg.in/yaml.v3"

	"github.com/domino14/realkelly/montecarlo"
)

const (
	histogramBins  = 15
	histogramWidth = 40
)

// WriteSimulation renders a simulation result. The text form ends with a
// histogram of end bankrolls.
func WriteSimulation(w io.Writer, sim *montecarlo.Result, f Format) error {
	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sim); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sim)
	case Text, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	stopped := ""
	if sim.StoppedEarly {
		stopped = " (stopping condition met)"
	}
	fmt.Fprintf(tw, "Iterations\t%s%s\n", printer.Sprint(sim.Iterations), stopped)
	fmt.Fprintf(tw, "Mean log growth\t%.6f ± %.6f (95%% CI %.6f to %.6f)\n",
		sim.MeanLogGrowth, sim.StandardError, sim.CILow, sim.CIHigh)
	fmt.Fprintf(tw, "Stdev log growth\t%.6f\n", sim.StdevLogGrowth)
	fmt.Fprintf(tw, "End bankroll\tmean %s, stdev %s, min %s, max %s\n",
		Money(sim.MeanBankroll, 2), Money(sim.StdevBankroll, 2),
		Money(sim.MinBankroll, 2), Money(sim.MaxBankroll, 2))
	fmt.Fprintf(tw, "Chance of loss\t%.2f%%\n", 100*sim.LossProbability)
	fmt.Fprintf(tw, "Runtime\t%s\n", sim.Runtime)
	tw.Flush()

	// A single point mass has nothing to plot.
	if sim.MaxBankroll > sim.MinBankroll {
		sb.WriteString("\nEnd bankroll distribution:\n")
		err := histogram.Fprintf(&sb, sim.Histogram(histogramBins), histogram.Linear(histogramWidth),
			func(v float64) string { return Money(v, 0) })
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
