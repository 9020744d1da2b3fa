// Package config loads the optional YAML build manifest.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KrishKyada/LLVMShield/internal/toolchain"
)

// Manifest models llvmshield.yml: a reproducible description of one build.
// Explicit command-line flags override manifest values.
type Manifest struct {
	Inputs     []string `yaml:"inputs"`
	PassLib    string   `yaml:"pass_lib"`
	Out        string   `yaml:"out"`
	XORKey     *int     `yaml:"xor_key"`
	BogusCount *int     `yaml:"bogus_count"`
	Cycles     *int     `yaml:"cycles"`
	Target     string   `yaml:"target"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses manifest bytes.
func FromYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the closed-set fields. The numeric knobs are forwarded to
// the pass verbatim, so no range is imposed on them here.
func (m *Manifest) Validate() error {
	if m.Target != "" {
		if _, err := toolchain.ParseTarget(m.Target); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
	}
	return nil
}
