package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/realkelly/cache"
	"github.com/domino14/realkelly/config"
	"github.com/domino14/realkelly/shell"
)

var (
	GitVersion string
)

const modelCacheSize = 16

func main() {
	os.Exit(run())
}

// run returns the process exit status. A one-shot command that fails
// exits with 1.
func run() int {
	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
	logger.Debug().Interface("settings", cfg.SanitizedSettings()).Str("version", GitVersion).Msg("loaded-config")

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	cache.CreateGlobalModelCache(modelCacheSize)

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// Interrupt whatever is running, then shut down.
		log.Debug().Msg("got quit signal...")
		cancel()
		close(done)
	}()

	sc := shell.NewShellController(cfg)
	status := 0
	if len(args) == 0 {
		go sc.Loop(ctx, sig)
	} else {
		if err := sc.Execute(ctx, shellquote.Join(args...)); err != nil && !shell.IsQuit(err) {
			status = 1
		}
		sig <- syscall.SIGINT
	}

	<-done
	log.Debug().Int("status", status).Msg("shutting down")
	return status
}
