package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/realkelly/config"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"solve -method global",
			&shellcmd{"solve", nil, map[string]string{"method": "global"}},
			nil},
		{"list",
			&shellcmd{"list", nil, map[string]string{}},
			nil},
		{`add "FICA to beat Real du Cap" 3.2 3.6`,
			&shellcmd{"add", []string{"FICA to beat Real du Cap", "3.2", "3.6"}, map[string]string{}},
			nil},
		{"set bankroll -5 ",
			&shellcmd{"set", []string{"bankroll", "-5"}, map[string]string{}},
			nil},
		{"sim -iterations 5000 -stop",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return newController(config.DefaultConfig(), buf), buf
}

// run executes line and returns what it printed. Failed commands print
// their error, so tests check the output.
func run(t *testing.T, sc *ShellController, buf *bytes.Buffer, line string) string {
	t.Helper()
	buf.Reset()
	if err := sc.Execute(context.Background(), line); IsQuit(err) {
		t.Fatalf("%s: unexpected quit", line)
	}
	return buf.String()
}

func TestAddListRemove(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)

	out := run(t, sc, buf, `add "Haiti to win" 1.9 2.1`)
	is.True(strings.Contains(out, "added Haiti to win"))
	out = run(t, sc, buf, "add Cap 3.2 3.6")
	is.True(strings.Contains(out, "added Cap"))
	is.Equal(len(sc.selections), 2)

	out = run(t, sc, buf, "add Cap 2 2")
	is.True(strings.Contains(out, "Error: duplicate"))
	out = run(t, sc, buf, "add Bad 1 2")
	is.True(strings.HasPrefix(out, "Error:"))
	is.Equal(len(sc.selections), 2)

	out = run(t, sc, buf, "list")
	is.True(strings.Contains(out, "Haiti to win"))
	is.True(strings.Contains(out, "edge"))

	out = run(t, sc, buf, `remove "Haiti to win"`)
	is.True(strings.Contains(out, "removed"))
	is.Equal(len(sc.selections), 1)
	is.Equal(sc.selections[0].Name, "Cap")

	out = run(t, sc, buf, "remove nobody")
	is.True(strings.HasPrefix(out, "Error:"))

	run(t, sc, buf, "clear")
	is.Equal(len(sc.selections), 0)
	out = run(t, sc, buf, "list")
	is.True(strings.Contains(out, "no selections"))
}

func TestLoadSolveSim(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)

	out := run(t, sc, buf, "sim")
	is.True(strings.Contains(out, "run solve first"))

	out = run(t, sc, buf, "load ../testdata/six.json")
	is.True(strings.Contains(out, "loaded 6 selections"))

	out = run(t, sc, buf, "solve -max-multiple 2 -bankroll 2500")
	is.True(strings.Contains(out, "21 bets up to 2-fold"))
	is.True(strings.Contains(out, "Certainty equivalent"))
	is.True(sc.lastRun != nil)

	out = run(t, sc, buf, "sim -iterations 2000 -seed 4 -threads 2")
	is.True(strings.Contains(out, "Mean log growth"))
	is.True(sc.lastSim != nil)
	is.Equal(sc.lastSim.Iterations, 2000)

	out = run(t, sc, buf, "solve -output json -max-multiple 9")
	is.True(strings.Contains(out, "max_multiple exceeds selection count"))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)

	out := run(t, sc, buf, "set")
	is.True(strings.Contains(out, "bankroll"))
	out = run(t, sc, buf, "set bankroll 250")
	is.True(strings.Contains(out, "set bankroll to 250"))
	is.Equal(sc.config.GetFloat64(config.ConfigBankroll), 250.0)
	out = run(t, sc, buf, "set bankroll")
	is.True(strings.Contains(out, "bankroll = 250"))
	out = run(t, sc, buf, "set nonsense 1")
	is.True(strings.Contains(out, "unknown setting"))
}

func TestSolveNoSelections(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	out := run(t, sc, buf, "solve")
	is.True(strings.Contains(out, "no selections"))
}

func TestHelpAndExit(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	out := run(t, sc, buf, "help")
	is.True(strings.Contains(out, "Commands:"))
	out = run(t, sc, buf, "help solve")
	is.True(strings.Contains(out, "neldermead"))
	out = run(t, sc, buf, "help frobnicate")
	is.True(strings.Contains(out, "no help text"))
	out = run(t, sc, buf, "frobnicate")
	is.True(strings.Contains(out, "unknown command"))

	is.Equal(sc.Execute(context.Background(), "exit"), errQuit)
	is.True(IsQuit(sc.Execute(context.Background(), "quit")))
}

func TestExecuteReturnsCommandErrors(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	ctx := context.Background()

	err := sc.Execute(ctx, "solve")
	is.True(err != nil)
	is.True(!IsQuit(err))
	is.True(strings.Contains(buf.String(), "Error: no selections"))

	is.True(sc.Execute(ctx, "frobnicate") != nil)
	is.True(sc.Execute(ctx, "sim -iterations") == errWrongOptionSyntax)
	is.True(sc.Execute(ctx, `add "unterminated 2 3`) != nil)

	is.NoErr(sc.Execute(ctx, "add coin 2 2.5"))
	is.NoErr(sc.Execute(ctx, "solve"))
	is.NoErr(sc.Execute(ctx, "   "))
}

func TestSelectionsFileLoadedOnStart(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSelectionsFile, "../testdata/haiti.yaml")
	sc := newController(cfg, &bytes.Buffer{})
	is.Equal(len(sc.selections), 7)
}
