package common

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultArrayStoreThreshold is the routine size above which array element
// loads and stores stop ending blocks.
const DefaultArrayStoreThreshold = 10000

type PrintOptions struct {
	Format       string `yaml:"option-format,omitempty" env:"NUTMEG_FORMAT"`
	Indent       int    `yaml:"option-indent,omitempty" env:"NUTMEG_INDENT"`
	IncludeLines bool   `yaml:"option-include-lines,omitempty" env:"NUTMEG_INCLUDE_LINES"`
}

// Config is shared by the command line tools. Values come from an optional
// YAML file and are then overridden by the environment.
type Config struct {
	PrintOptions        `yaml:",inline"`
	ArrayStoreThreshold int `yaml:"option-array-store-threshold,omitempty" env:"NUTMEG_ARRAY_STORE_THRESHOLD"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() *Config {
	return &Config{
		PrintOptions: PrintOptions{
			Format:       "JSON",
			Indent:       2,
			IncludeLines: true,
		},
		ArrayStoreThreshold: DefaultArrayStoreThreshold,
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty filename
// skips the file. Environment variables are applied last.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()
	if filename != "" {
		data, err := os.ReadFile(filename) // #nosec G304 - CLI tool reads user-specified config files
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filename, err)
		}
	}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}
