package config

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	ConfigDebug           = "debug"
	ConfigBankroll        = "bankroll"
	ConfigMaxMultiple     = "max-multiple"
	ConfigMethod          = "method"
	ConfigReportThreshold = "report-threshold"
	ConfigSeparator       = "separator"
	ConfigSelectionsFile  = "selections-file"
	ConfigOutput          = "output"
	ConfigSimIterations   = "sim-iterations"
	ConfigSimThreads      = "sim-threads"
	ConfigSimSeed         = "sim-seed"
	ConfigSimStop         = "sim-stop"
	ConfigSimTolerance    = "sim-tolerance"
	ConfigSolverSeed      = "solver-seed"
	ConfigMaxEvaluations  = "max-evaluations"
	ConfigMaxRuntime      = "max-runtime"
	ConfigMemoryFraction  = "memory-fraction"
	ConfigCPUProfile      = "cpu-profile"
	ConfigConfigFile      = "config-file"
)

var errBadArg = errors.New("arguments must look like --key=value or --flag")

type Config struct {
	sync.Mutex
	viper.Viper
}

// DefaultConfig returns a config with only the defaults set. Mostly useful
// in tests.
func DefaultConfig() *Config {
	c := &Config{}
	c.Viper = *viper.New()
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigBankroll, 1000.0)
	c.SetDefault(ConfigMaxMultiple, 1)
	c.SetDefault(ConfigMethod, "local")
	c.SetDefault(ConfigReportThreshold, 0.5)
	c.SetDefault(ConfigSeparator, " / ")
	c.SetDefault(ConfigSelectionsFile, "")
	c.SetDefault(ConfigOutput, "text")
	c.SetDefault(ConfigSimIterations, 10000)
	c.SetDefault(ConfigSimThreads, runtime.NumCPU())
	c.SetDefault(ConfigSimSeed, 0)
	c.SetDefault(ConfigSimStop, "none")
	c.SetDefault(ConfigSimTolerance, 1e-3)
	c.SetDefault(ConfigSolverSeed, 0)
	c.SetDefault(ConfigMaxEvaluations, 1000000)
	c.SetDefault(ConfigMaxRuntime, time.Duration(0))
	c.SetDefault(ConfigMemoryFraction, 0.5)
	c.SetDefault(ConfigCPUProfile, "")
}

// Load sets defaults, then reads (in increasing priority) an optional config
// file, REALKELLY_* environment variables, and --key=value arguments.
// Arguments that don't start with -- are returned for the caller.
func (c *Config) Load(args []string) ([]string, error) {
	c.Viper = *viper.New()
	c.setDefaults()
	c.SetEnvPrefix("realkelly")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	overrides := map[string]string{}
	var rest []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			rest = append(rest, arg)
			continue
		}
		kv := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
		if kv[0] == "" {
			return nil, errBadArg
		}
		if len(kv) == 1 {
			overrides[kv[0]] = "true"
		} else {
			overrides[kv[0]] = kv[1]
		}
	}

	cfgFile := overrides[ConfigConfigFile]
	if cfgFile == "" {
		cfgFile = c.GetString(ConfigConfigFile)
	}
	if cfgFile != "" {
		c.SetConfigFile(cfgFile)
		if err := c.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	for k, v := range overrides {
		c.Set(k, v)
	}
	return rest, nil
}

// SanitizedSettings lists all settings, sorted by key, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	out := map[string]any{}
	for _, k := range c.AllKeys() {
		out[k] = c.Get(k)
	}
	return out
}

// ToDisplayText renders the settings one per line.
func (c *Config) ToDisplayText() string {
	keys := c.AllKeys()
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-18s %v\n", k, c.Get(k))
	}
	return sb.String()
}
