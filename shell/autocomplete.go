package shell

import "github.com/chzyer/readline"

var (
	methodValues = []string{"local", "global", "neldermead"}
	stopValues   = []string{"90", "95", "98", "99"}
	outputValues = []string{"text", "yaml", "json"}
)

func items(vals []string) []readline.PrefixCompleterInterface {
	out := make([]readline.PrefixCompleterInterface, len(vals))
	for i, v := range vals {
		out[i] = readline.PcItem(v)
	}
	return out
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("add"),
	readline.PcItem("remove"),
	readline.PcItem("list"),
	readline.PcItem("clear"),
	readline.PcItem("load"),
	readline.PcItem("set",
		readline.PcItem("bankroll"),
		readline.PcItem("max-multiple"),
		readline.PcItem("method", items(methodValues)...),
		readline.PcItem("report-threshold"),
		readline.PcItem("output", items(outputValues)...),
		readline.PcItem("sim-iterations"),
		readline.PcItem("sim-stop", items(stopValues)...),
	),
	readline.PcItem("solve",
		readline.PcItem("-method", items(methodValues)...),
		readline.PcItem("-output", items(outputValues)...),
	),
	readline.PcItem("sim",
		readline.PcItem("-stop", items(stopValues)...),
		readline.PcItem("-output", items(outputValues)...),
	),
	readline.PcItem("help",
		readline.PcItem("add"),
		readline.PcItem("load"),
		readline.PcItem("set"),
		readline.PcItem("solve"),
		readline.PcItem("sim"),
	),
	readline.PcItem("exit"),
)
