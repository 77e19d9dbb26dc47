// Package bindings handles the bindings.toml configuration that selects
// which types the generator exposes and how.
package bindings

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is a parsed bindings.toml. Types preserve the document order of
// their [[types]] tables; that order is the output order of the run.
type Config struct {
	APIName    string `toml:"api_name"`
	OutputFile string `toml:"output_file"`

	// Free-text blocks re-emitted verbatim.
	Imports          string `toml:"imports"`
	Other            string `toml:"other"`
	ProviderDefaults string `toml:"provider_defaults"`

	Primitives  []string     `toml:"primitives"`
	Types       []TypeConfig `toml:"types"`
	ManualTypes []ManualType `toml:"manual_types"`

	index      map[string]int
	primitives map[string]bool
}

// TypeConfig configures one managed type.
type TypeConfig struct {
	Type             string            `toml:"type"`
	Source           string            `toml:"source"` // declaring module name
	Doc              *string           `toml:"doc"`    // overrides the graph-sourced doc when set
	ImportPath       string            `toml:"import_path"`
	RequiredFeatures []string          `toml:"required_features"`
	DeriveFlags      []string          `toml:"derive_flags"`
	ManualMethods    []string          `toml:"manual_methods"`
	Interfaces       []InterfaceConfig `toml:"interfaces"`
}

// InterfaceConfig names one accepted interface and where to import it from.
type InterfaceConfig struct {
	Name   string `toml:"name"`
	Import string `toml:"import"`
}

// ManualType declares an externally wrapped type that the generator did
// not produce but must still register.
type ManualType struct {
	Name                  string `toml:"name"`
	ProxyName             string `toml:"proxy_name"`
	IncludeGlobalInstance bool   `toml:"include_global_instance"`
	UseDummyProxy         bool   `toml:"use_dummy_proxy"`
	SkipDocs              bool   `toml:"skip_docs"`
}

// AcceptsInterface reports whether the named interface is on this
// type's allow-list.
func (tc *TypeConfig) AcceptsInterface(name string) bool {
	for _, ic := range tc.Interfaces {
		if ic.Name == name {
			return true
		}
	}
	return false
}

// Load parses a bindings.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := c.finish(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return &c, nil
}

// finish builds the lookup tables after decoding.
func (c *Config) finish() error {
	c.index = make(map[string]int, len(c.Types))
	for i := range c.Types {
		tc := &c.Types[i]
		if tc.Type == "" {
			return fmt.Errorf("types entry %d is missing a type name", i)
		}
		if _, dup := c.index[tc.Type]; dup {
			return fmt.Errorf("type %q is configured twice", tc.Type)
		}
		c.index[tc.Type] = i
	}

	c.primitives = make(map[string]bool, len(c.Primitives))
	for _, p := range c.Primitives {
		c.primitives[p] = true
	}
	return nil
}

// Type looks up the configuration for a managed type name.
func (c *Config) Type(name string) (*TypeConfig, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.Types[i], true
}

// TypeIndex returns the position of a managed type in the configured
// order, or -1. Output ordering is always driven by this index, never by
// graph iteration order.
func (c *Config) TypeIndex(name string) int {
	i, ok := c.index[name]
	if !ok {
		return -1
	}
	return i
}

// IsPrimitive reports membership in the global primitive-name table.
func (c *Config) IsPrimitive(name string) bool {
	return c.primitives[name]
}

// IsWrapped reports whether the name belongs to a configured managed
// type (the wrapped-type table).
func (c *Config) IsWrapped(name string) bool {
	_, ok := c.index[name]
	return ok
}
