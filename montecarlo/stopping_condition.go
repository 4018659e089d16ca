package montecarlo

import (
	"fmt"
	"strings"

	"github.com/domino14/realkelly/stats"
)

type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop90
	Stop95
	Stop98
	Stop99
)

func ParseStoppingCondition(s string) (StoppingCondition, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "%") {
	case "", "none", "0":
		return StopNone, nil
	case "90":
		return Stop90, nil
	case "95":
		return Stop95, nil
	case "98":
		return Stop98, nil
	case "99":
		return Stop99, nil
	}
	return StopNone, fmt.Errorf("unknown stopping condition %q", s)
}

// Confidence is the confidence level, in percent, of the condition.
func (sc StoppingCondition) Confidence() float64 {
	switch sc {
	case Stop90:
		return 90
	case Stop95:
		return 95
	case Stop98:
		return 98
	case Stop99:
		return 99
	}
	return 0
}

func (sc StoppingCondition) String() string {
	if sc == StopNone {
		return "none"
	}
	return fmt.Sprintf("%g%%", sc.Confidence())
}

// shouldStop is true once the confidence interval around the mean log
// growth is narrower than tolerance on either side.
func shouldStop(st *stats.Statistic, sc StoppingCondition, tolerance float64, minIterations int) bool {
	if sc == StopNone || st.Iterations() < minIterations {
		return false
	}
	return st.HalfWidth(sc.Confidence()) < tolerance
}
