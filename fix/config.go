package fix

import (
	"errors"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/virfix/internal/fixes"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".virfix.yaml"

// Config represents the settings of a fix run.
type Config struct {
	// Workers bounds the number of units fixed concurrently. Zero or less
	// means one per CPU.
	Workers int `yaml:"workers"`
	// IncludeScoped also havocs variables declared inside loop bodies.
	IncludeScoped bool `yaml:"include_scoped"`
	// FailFast stops at the first defective unit instead of keeping it
	// unchanged and fixing the rest.
	FailFast bool `yaml:"fail_fast"`
}

// DefaultConfig returns the settings used when no configuration file
// exists. Workers is left at zero so that a written default file runs one
// worker per CPU on every machine.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig reads the configuration file at path. Settings missing from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// HavocOptions returns the options of the loop havoc pass.
func (c Config) HavocOptions() fixes.HavocOptions {
	return fixes.HavocOptions{IncludeScoped: c.IncludeScoped}
}
