package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so suite files can say "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// SuiteEntry pins one module to a set of scenarios.
type SuiteEntry struct {
	Path      string   `yaml:"path"`
	Scenarios []string `yaml:"scenarios"`
	Timeout   Duration `yaml:"timeout"`
}

// Suite is a matrix of modules and scenarios, typically one per toolchain
// under test in CI.
type Suite struct {
	Modules []SuiteEntry `yaml:"modules"`
}

// LoadSuite loads a suite from a YAML file
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file %s: %w", path, err)
	}
	return LoadSuiteFromBytes(data)
}

// LoadSuiteFromBytes loads a suite from byte data
func LoadSuiteFromBytes(data []byte) (*Suite, error) {
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML suite: %w", err)
	}
	if len(suite.Modules) == 0 {
		return nil, fmt.Errorf("suite has no modules")
	}
	for i, entry := range suite.Modules {
		if entry.Path == "" {
			return nil, fmt.Errorf("suite module %d has no path", i)
		}
	}
	return &suite, nil
}
