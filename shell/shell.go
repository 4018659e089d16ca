package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/realkelly/config"
	"github.com/domino14/realkelly/montecarlo"
	"github.com/domino14/realkelly/runner"
	"github.com/domino14/realkelly/selection"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	out    io.Writer

	selections []selection.Selection
	lastRun    *runner.Result
	lastSim    *montecarlo.Result
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController sets up an interactive shell. Selections named by
// the selections-file setting are loaded right away.
func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mrealkelly>\033[0m ",
		HistoryFile:     "/tmp/realkelly-readline.tmp",
		AutoComplete:    completer,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stdout())
	sc.l = l
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	sc := &ShellController{config: cfg, out: out}
	if path := cfg.GetString(config.ConfigSelectionsFile); path != "" {
		if _, err := sc.load(&shellcmd{cmd: "load", args: []string{path}}); err != nil {
			log.Err(err).Str("path", path).Msg("could-not-load-selections")
		}
	}
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments,
// and its -key value options. Quoting works as in a POSIX shell, so
// selection names may contain spaces.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if strings.HasPrefix(f, "-") && len(f) > 1 && !isNumber(f) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[strings.TrimLeft(f, "-")] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// Execute runs a single command line and prints what it returns. A failed
// command is printed and also returned; IsQuit tells an exit request apart.
func (sc *ShellController) Execute(ctx context.Context, line string) error {
	cmd, err := extractFields(line)
	if err == errNoData {
		return nil
	}
	if err != nil {
		sc.showError(err)
		return err
	}
	resp, err := sc.dispatch(ctx, cmd)
	if err == errQuit {
		return err
	}
	if err != nil {
		sc.showError(err)
		return err
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

// IsQuit is true if err came from an exit command.
func IsQuit(err error) bool {
	return errors.Is(err, errQuit)
}

func (sc *ShellController) dispatch(ctx context.Context, cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "add":
		return sc.add(cmd)
	case "remove", "rm":
		return sc.remove(cmd)
	case "list", "ls":
		return sc.list(cmd)
	case "clear":
		return sc.clear(cmd)
	case "load":
		return sc.load(cmd)
	case "set":
		return sc.set(cmd)
	case "solve":
		return sc.solve(ctx, cmd)
	case "sim":
		return sc.sim(ctx, cmd)
	}
	log.Debug().Msgf("you said: %q", cmd.cmd)
	return nil, fmt.Errorf("unknown command %q; try help", cmd.cmd)
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.Execute(ctx, line); IsQuit(err) {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
