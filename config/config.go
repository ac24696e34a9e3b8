// Package config loads a StrategyConfig - the on-disk description of
// an extspi director's DiscoveryStrategy roots and special-root
// overrides - from YAML, TOML, or whatever source viper composes
// (file, environment, flags), following the teacher pack's
// viper-backed config layer (see DESIGN.md).
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/extspi-go/extspi"
	"github.com/extspi-go/extspi/pkg/schema"
)

// StrategyEntry is the file representation of one extspi.DiscoveryStrategy.
type StrategyEntry struct {
	Name       string `yaml:"name" toml:"name" mapstructure:"name"`
	Root       string `yaml:"root" toml:"root" mapstructure:"root"`
	Overridden bool   `yaml:"overridden" toml:"overridden" mapstructure:"overridden"`
}

// SpecialRootEntry pins one contract's descriptor file to a fixed path,
// the file form of extspi.RegisterSpecialRoot.
type SpecialRootEntry struct {
	Contract string `yaml:"contract" toml:"contract" mapstructure:"contract"`
	Path     string `yaml:"path" toml:"path" mapstructure:"path"`
}

// StrategyConfig is the decoded shape of a strategy manifest: the
// ordered DiscoveryStrategy list plus any special-root overrides,
// loaded as data rather than hardcoded (spec section 4.1's "strategies
// are discovered via the same SPI mechanism").
type StrategyConfig struct {
	BaseDir      string             `yaml:"base_dir" toml:"base_dir" mapstructure:"base_dir"`
	Strategies   []StrategyEntry    `yaml:"strategies" toml:"strategies" mapstructure:"strategies"`
	SpecialRoots []SpecialRootEntry `yaml:"special_roots" toml:"special_roots" mapstructure:"special_roots"`
}

// strategySchema validates a decoded StrategyConfig's shape before it's
// turned into live DiscoveryStrategy values, catching a malformed
// manifest (missing or blank root, blank strategy name) before
// descriptor scanning ever starts.
var strategySchema = &schema.ObjectSchema{
	Properties: map[string]schema.Schema{
		"name": &schema.StringSchema{MinLength: 1},
		"root": &schema.StringSchema{MinLength: 1},
	},
	Required: []string{"name", "root"},
}

// Validate checks every strategy entry against strategySchema and
// rejects a config with no strategies at all, since a Director built
// from an empty strategy list can never discover anything.
func (c *StrategyConfig) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("config: strategy list is empty")
	}
	for i, entry := range c.Strategies {
		if entry.Name == "" {
			return fmt.Errorf("config: strategies[%d]: name is required", i)
		}
		if _, err := strategySchema.Validate(map[string]any{
			"name": entry.Name,
			"root": entry.Root,
		}); err != nil {
			return fmt.Errorf("config: strategies[%d]: %w", i, err)
		}
	}
	for i, root := range c.SpecialRoots {
		if root.Contract == "" || root.Path == "" {
			return fmt.Errorf("config: special_roots[%d]: contract and path are both required", i)
		}
	}
	return nil
}

// toDiscoveryStrategies converts the decoded entries into extspi.DiscoveryStrategy
// values, in file order.
func (c *StrategyConfig) toDiscoveryStrategies() []extspi.DiscoveryStrategy {
	out := make([]extspi.DiscoveryStrategy, 0, len(c.Strategies))
	for _, e := range c.Strategies {
		out = append(out, extspi.DiscoveryStrategy{Name: e.Name, Root: e.Root, Overridden: e.Overridden})
	}
	return out
}

// DecodeYAML parses a YAML strategy manifest.
func DecodeYAML(data []byte) (*StrategyConfig, error) {
	var cfg StrategyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return &cfg, cfg.Validate()
}

// DecodeTOML parses a TOML strategy manifest.
func DecodeTOML(data []byte) (*StrategyConfig, error) {
	var cfg StrategyConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode toml: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Decode dispatches to DecodeYAML or DecodeTOML by file extension.
func Decode(path string, data []byte) (*StrategyConfig, error) {
	switch {
	case strings.HasSuffix(path, ".toml"):
		return DecodeTOML(data)
	default:
		return DecodeYAML(data)
	}
}

// Load reads a strategy manifest through viper, so it can come from a
// file, environment variables (prefixed EXTSPI_), or both, and returns
// the live DiscoveryStrategy list. Special roots are not returned:
// RegisterSpecialRoot is invoked for each of them as a side effect,
// matching the package-level registration surface every other extspi
// component uses.
func Load(path string) ([]extspi.DiscoveryStrategy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("EXTSPI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg StrategyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, root := range cfg.SpecialRoots {
		extspi.RegisterSpecialRootByName(root.Contract, root.Path)
	}

	return cfg.toDiscoveryStrategies(), nil
}
