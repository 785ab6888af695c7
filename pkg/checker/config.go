package checker

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the checker configuration
type Config struct {
	Version string      `yaml:"version"`
	Rules   RulesConfig `yaml:"rules"`
	Workers int         `yaml:"workers"`
}

// RulesConfig contains rule selection and severity overrides
type RulesConfig struct {
	// Enabled narrows the rule set to the listed rule IDs or group names.
	// Empty means every registered rule.
	Enabled []string `yaml:"enabled"`
	// Disabled removes rules or whole groups from the enabled set.
	Disabled []string `yaml:"disabled"`
	// Severity overrides a rule's default severity: rule ID -> error|warning|info.
	Severity map[string]string `yaml:"severity"`
}

// DefaultConfig returns the default checker configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "v1",
		Rules: RulesConfig{
			Severity: make(map[string]string),
		},
		Workers: 4,
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	return config, nil
}

// LoadConfigFromDir searches dir for a config file, falling back to defaults
func LoadConfigFromDir(dir string) (*Config, error) {
	names := []string{"protocheck.yaml", "protocheck.yml", ".protocheck.yaml", ".protocheck.yml"}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// SaveConfig writes configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
