// Package config defines rkv-bench's configuration surface in the
// same shape the rest of the stack uses: a YAML-tagged struct with a
// RegisterFlagsAndApplyDefaults method that seeds defaults and wires
// command-line overrides onto the same FlagSet, so either source (or
// both, flags winning) can supply a value.
package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the rkv-bench CLI.
type Config struct {
	LogLevel string `yaml:"log_level,omitempty"`

	InitialKeys    int           `yaml:"initial_keys,omitempty"`
	WorkerPoolSize int           `yaml:"worker_pool_size,omitempty"`
	RehashBudget   time.Duration `yaml:"rehash_budget_ms,omitempty"`

	IntSetSampleSize int `yaml:"intset_sample_size,omitempty"`

	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// RegisterFlagsAndApplyDefaults seeds c with defaults and registers a
// flag for every field on f, following the convention set elsewhere
// in the stack: defaults are applied first, then flags are registered
// against the already-defaulted field so an unset flag is a no-op.
func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	c.LogLevel = "info"
	c.InitialKeys = 10000
	c.WorkerPoolSize = 8
	c.RehashBudget = time.Millisecond
	c.IntSetSampleSize = 512
	c.MetricsAddr = ":9090"

	f.StringVar(&c.LogLevel, prefix+"log-level", c.LogLevel, "Minimum log level (debug, info, warn, error).")
	f.IntVar(&c.InitialKeys, prefix+"initial-keys", c.InitialKeys, "Number of keys to seed the demo dictionary with.")
	f.IntVar(&c.WorkerPoolSize, prefix+"worker-pool-size", c.WorkerPoolSize, "Maximum number of concurrent worker goroutines.")
	f.DurationVar(&c.RehashBudget, prefix+"rehash-budget", c.RehashBudget, "Wall-clock budget handed to RehashMilliseconds per tick.")
	f.IntVar(&c.IntSetSampleSize, prefix+"intset-sample-size", c.IntSetSampleSize, "Number of random members to seed the demo int set with.")
	f.StringVar(&c.MetricsAddr, prefix+"metrics-addr", c.MetricsAddr, "Address to serve Prometheus metrics on.")
}

// LoadYAML overlays YAML-sourced values from path onto c. Fields
// absent from the document are left untouched.
func LoadYAML(c *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}
