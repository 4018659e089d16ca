package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetFloat64(ConfigBankroll), 1000.0)
	is.Equal(c.GetInt(ConfigMaxMultiple), 1)
	is.Equal(c.GetString(ConfigMethod), "local")
	is.Equal(c.GetFloat64(ConfigReportThreshold), 0.5)
	is.Equal(c.GetString(ConfigSeparator), " / ")
}

func TestLoadArgs(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	rest, err := c.Load([]string{"--bankroll=2500", "--max-multiple=3", "--debug",
		"--max-runtime=30s", "solve"})
	is.NoErr(err)
	is.Equal(rest, []string{"solve"})
	is.Equal(c.GetFloat64(ConfigBankroll), 2500.0)
	is.Equal(c.GetInt(ConfigMaxMultiple), 3)
	is.True(c.GetBool(ConfigDebug))
	is.Equal(c.GetDuration(ConfigMaxRuntime), 30*time.Second)
	is.Equal(c.GetString(ConfigMethod), "local")
}

func TestLoadBadArg(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	_, err := c.Load([]string{"--=3"})
	is.Equal(err, errBadArg)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("REALKELLY_REPORT_THRESHOLD", "2.5")
	c := &Config{}
	_, err := c.Load(nil)
	is.NoErr(err)
	is.Equal(c.GetFloat64(ConfigReportThreshold), 2.5)
}

func TestLoadFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "realkelly.yaml")
	is.NoErr(os.WriteFile(path, []byte("bankroll: 500\nmethod: global\n"), 0o644))

	c := &Config{}
	_, err := c.Load([]string{"--config-file=" + path, "--method=neldermead"})
	is.NoErr(err)
	is.Equal(c.GetFloat64(ConfigBankroll), 500.0)
	// Arguments win over the file.
	is.Equal(c.GetString(ConfigMethod), "neldermead")
}
