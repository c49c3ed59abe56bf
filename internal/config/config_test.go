package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rkvcore/rkv/internal/config"
)

func TestRegisterFlagsAndApplyDefaults(t *testing.T) {
	var c config.Config
	fs := flag.NewFlagSet("", flag.PanicOnError)
	c.RegisterFlagsAndApplyDefaults("", fs)

	require.Equal(t, "info", c.LogLevel)
	require.Equal(t, 10000, c.InitialKeys)
	require.Equal(t, time.Millisecond, c.RehashBudget)
}

func TestFlagOverridesDefault(t *testing.T) {
	var c config.Config
	fs := flag.NewFlagSet("", flag.PanicOnError)
	c.RegisterFlagsAndApplyDefaults("", fs)

	require.NoError(t, fs.Parse([]string{"-initial-keys", "42"}))
	require.Equal(t, 42, c.InitialKeys)
}

func TestLoadYAMLOverlaysFields(t *testing.T) {
	var c config.Config
	fs := flag.NewFlagSet("", flag.PanicOnError)
	c.RegisterFlagsAndApplyDefaults("", fs)

	dir := t.TempDir()
	path := filepath.Join(dir, "rkv-bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ninitial_keys: 7\n"), 0o644))

	require.NoError(t, config.LoadYAML(&c, path))
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, 7, c.InitialKeys)
	require.Equal(t, 8, c.WorkerPoolSize)
}
